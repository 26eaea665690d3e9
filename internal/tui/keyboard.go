package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		// Any key returns to the list
		m.State = StateBrowsing
		return m, nil

	case StateConfirmReset:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			m.setLoading(true)
			m.Exhausted = false
			m.List.SetExhausted(false)
			return m, ResetCmd(m.Controller)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil

	case StateRenaming:
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			name := strings.TrimSpace(m.InputModal.Value())
			id := m.renameID
			m.InputModal.Hide()
			m.State = StateBrowsing
			m.renameID = ""
			return m, RenameCmd(m.Controller, id, name)
		}
		if !m.InputModal.IsVisible() {
			m.State = StateBrowsing
			m.renameID = ""
		}
		return m, cmd
	}

	// The filter input swallows every key while focused
	if m.List.IsFiltering() {
		cmd, _ := m.List.Update(msg)
		m.syncInspector()
		return m, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Enter):
		rec := m.List.Selected()
		if rec == nil || m.Enricher == nil {
			return m, nil
		}
		m.Inspector.SetRecord(rec)
		m.Inspector.SetDescribing()
		return m, DescribeCmd(m.Enricher, *rec)

	case key.Matches(msg, Keys.Rename):
		rec := m.List.Selected()
		if rec == nil {
			return m, nil
		}
		m.State = StateRenaming
		m.renameID = rec.ID
		return m, m.InputModal.Show("Rename "+rec.GetTitle(), rec.GetTitle())

	case key.Matches(msg, Keys.Delete):
		rec := m.List.Selected()
		if rec == nil {
			return m, nil
		}
		return m, DeleteCmd(m.Controller, rec.ID, rec.GetTitle())

	case key.Matches(msg, Keys.Reset):
		if m.Loading {
			return m.setStatus("Wait for the current page to finish", true)
		}
		m.State = StateConfirmReset
		return m, nil

	case key.Matches(msg, Keys.LoadMore):
		if m.Loading {
			return m, nil
		}
		if m.Exhausted {
			return m.setStatus("End of list", false)
		}
		m.setLoading(true)
		return m, LoadMoreCmd(m.Controller)

	case key.Matches(msg, Keys.Open):
		rec := m.List.Selected()
		if rec == nil {
			return m, nil
		}
		if m.Viewer == nil || rec.ImageURL == "" {
			return m.setStatus("No avatar to open", true)
		}
		return m, OpenImageCmd(m.Viewer, rec.ImageURL, rec.GetTitle())

	case key.Matches(msg, Keys.ScrollUp):
		m.Inspector.ScrollBy(-1)
		return m, nil

	case key.Matches(msg, Keys.ScrollDown):
		m.Inspector.ScrollBy(1)
		return m, nil
	}

	// Navigation and filter activation
	cmd, handled := m.List.Update(msg)
	if !handled {
		return m, nil
	}
	m.syncInspector()
	return m, tea.Batch(cmd, m.maybeLoadMore())
}
