package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/library"
	"github.com/mmcdole/rickdex/internal/tui/components"
	"github.com/mmcdole/rickdex/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateRenaming
	StateConfirmReset
	StateHelp
)

// Layout proportions
const (
	ListColumnPercent = 45
	MinColumnWidth    = 20

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Model is the main Bubble Tea model for the application.
// Update is the only place list state changes, so it runs on a single goroutine.
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Controller *library.Controller
	Enricher   *library.Enricher
	Viewer     ImageOpener
	snapshots  <-chan []domain.CharacterRecord

	// UI Components
	List       *components.CharacterList
	Inspector  components.Inspector
	InputModal components.InputModal
	Spinner    spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Loading     bool // A page fetch is outstanding
	Exhausted   bool

	// ID of the record being renamed
	renameID string
}

// ImageOpener shows an avatar outside the terminal
type ImageOpener interface {
	Open(target string) error
}

// NewModel creates a new application model. snapshots must be the channel
// behind the controller's ChannelObserver. viewer may be nil.
func NewModel(
	ctrl *library.Controller,
	enricher *library.Enricher,
	viewer ImageOpener,
	snapshots <-chan []domain.CharacterRecord,
) Model {
	return Model{
		State:      StateBrowsing,
		Controller: ctrl,
		Enricher:   enricher,
		Viewer:     viewer,
		snapshots:  snapshots,
		List:       components.NewCharacterList(),
		Inspector:  components.NewInspector(),
		InputModal: components.NewInputModal(),
		Spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(styles.SpinnerStyle),
		),
		Loading: true,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForSnapshotCmd(m.snapshots),
		GetInitialCmd(m.Controller),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.List.SetSpinnerView(m.Spinner.View())
		m.Inspector.SetSpinnerView(m.Spinner.View())
		return m, cmd

	case SnapshotMsg:
		m.List.SetRecords(msg.Records)
		m.syncInspector()
		return m, WaitForSnapshotCmd(m.snapshots)

	case InitialLoadedMsg:
		m.setLoading(false)
		m.Exhausted = !m.Controller.HasMoreData()
		m.List.SetExhausted(m.Exhausted)
		slog.Debug("initial list ready", "count", msg.Count, "exhausted", m.Exhausted)
		return m, nil

	case PageLoadedMsg:
		m.setLoading(false)
		m.Exhausted = !m.Controller.HasMoreData()
		m.List.SetExhausted(m.Exhausted)
		// The user may have kept scrolling while the page was in flight
		return m, m.maybeLoadMore()

	case FetchBusyMsg:
		// The fetch holding the guard reports through its own message
		m.setLoading(false)
		return m, nil

	case ExhaustedMsg:
		m.setLoading(false)
		m.Exhausted = true
		m.List.SetExhausted(true)
		return m.setStatus("End of list", false)

	case ResetDoneMsg:
		m.setLoading(false)
		m.Exhausted = !m.Controller.HasMoreData()
		m.List.SetExhausted(m.Exhausted)
		m.List.SetSelectedIndex(0)
		m.syncInspector()
		return m.setStatus(fmt.Sprintf("Cache reset: %d characters", msg.Count), false)

	case RenamedMsg:
		return m.setStatus("Renamed to "+msg.Name, false)

	case DeletedMsg:
		return m.setStatus("Deleted "+msg.Title, false)

	case DescriptionLoadedMsg:
		// Ignore results for a record no longer shown
		if msg.ID == m.Inspector.RecordID() {
			m.Inspector.SetDescription(msg.Text, msg.Err)
		}
		return m, nil

	case ErrMsg:
		m.setLoading(false)
		slog.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Forward anything else (cursor blink) to the active text input
	if m.State == StateRenaming {
		var cmd tea.Cmd
		m.InputModal, cmd, _ = m.InputModal.Update(msg)
		return m, cmd
	}
	cmd, _ := m.List.Update(msg)
	return m, cmd
}

// --- Private helpers ---

func (m *Model) setLoading(loading bool) {
	m.Loading = loading
	m.List.SetLoadingMore(loading)
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	delay := 3 * time.Second
	if isErr {
		delay = 5 * time.Second
	}
	return m, ClearStatusCmd(delay)
}

// syncInspector points the inspector at the current selection
func (m *Model) syncInspector() {
	m.Inspector.SetRecord(m.List.Selected())
}

// maybeLoadMore issues LoadMore when the selection is near the end of the
// unfiltered list and nothing is in flight.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.Loading || m.Exhausted || m.List.IsFiltered() {
		return nil
	}
	if !m.Controller.ShouldLoadMore(m.List.SelectedIndex(), m.List.ItemCount()) {
		return nil
	}
	m.setLoading(true)
	return LoadMoreCmd(m.Controller)
}
