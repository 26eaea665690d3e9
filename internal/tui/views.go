package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/rickdex/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	// Handle modal states
	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmReset:
		return m.renderResetConfirmation()
	case StateRenaming:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.List.View(),
		m.Inspector.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())
}

// renderFooter renders the single status line
func (m Model) renderFooter() string {
	// Left side: spinner while fetching, otherwise the status message
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.Loading:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Fetching characters...")
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	case m.Exhausted:
		left = styles.DimStyle.Render("End of list")
	}

	// Center: action hints
	center := hint("enter", "episodes") + "  " + hint("/", "filter") + "  " +
		hint("e", "rename") + "  " + hint("d", "delete")

	// Right side: "? help" hint
	right := hint("?", "help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space, just left + right
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	// Center the hints in available space
	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func hint(k, desc string) string {
	return styles.AccentStyle.Render(k) + styles.DimStyle.Render(" "+desc)
}

// renderHelp renders the help screen from the live key bindings
func (m Model) renderHelp() string {
	nav := helpSection("NAVIGATION",
		Keys.List.Up, Keys.List.Down, Keys.List.Home, Keys.List.End,
		Keys.List.HalfUp, Keys.List.HalfDown, Keys.ScrollUp, Keys.ScrollDown)
	filter := helpSection("FILTER", Keys.List.Filter, Keys.List.Escape, Keys.List.Enter)
	chars := helpSection("CHARACTERS",
		Keys.Enter, Keys.Rename, Keys.Delete, Keys.LoadMore, Keys.Reset, Keys.Open)
	other := helpSection("OTHER", Keys.Quit, Keys.Help)

	left := lipgloss.JoinVertical(lipgloss.Left, nav, "", filter)
	right := lipgloss.JoinVertical(lipgloss.Left, chars, "", other)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	help := body + "\n\n" + styles.DimStyle.Render("Press any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// helpSection renders a titled column of key bindings
func helpSection(title string, bindings ...key.Binding) string {
	lines := []string{styles.TitleStyle.Render(title)}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, "  "+styles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", h.Key))+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(lines, "\n")
}

// renderResetConfirmation renders the reset confirmation modal
func (m Model) renderResetConfirmation() string {
	modal := `
           Reset Cache?

  This deletes every stored character,
  including renames, and fetches the
  first page again.

        [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
