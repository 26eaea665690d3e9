package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/library"
	"github.com/mmcdole/rickdex/internal/log"
	"github.com/mmcdole/rickdex/internal/store"
)

const (
	page1URL = "https://rickandmortyapi.com/api/character"
	page2URL = "https://rickandmortyapi.com/api/character?page=2"
)

type fakeRepo struct {
	pages map[string]domain.Page

	// When set, page 2 signals entered and waits on gate
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeRepo) FetchPage(_ context.Context, cursor string) (domain.Page, error) {
	if cursor == page2URL && f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	page, ok := f.pages[cursor]
	if !ok {
		return domain.Page{}, domain.ErrNoData
	}
	return page, nil
}

func (f *fakeRepo) FetchEpisode(_ context.Context, u string) (domain.Episode, error) {
	switch u {
	case "https://rickandmortyapi.com/api/episode/1":
		return domain.Episode{Name: "Pilot", Code: "S01E01"}, nil
	case "https://rickandmortyapi.com/api/episode/2":
		return domain.Episode{Name: "Lawnmower Dog", Code: "S01E02"}, nil
	}
	return domain.Episode{}, domain.ErrNoData
}

func makeChars(prefix string, n int) []domain.Character {
	out := make([]domain.Character, n)
	for i := range out {
		out[i] = domain.Character{
			Name:     fmt.Sprintf("%s %d", prefix, i+1),
			Status:   "Alive",
			Species:  "Human",
			ImageURL: fmt.Sprintf("https://rickandmortyapi.com/api/character/avatar/%d.jpeg", i+3),
			Episodes: []string{"https://rickandmortyapi.com/api/episode/1", "https://rickandmortyapi.com/api/episode/2"},
		}
	}
	return out
}

type fakeViewer struct {
	opened []string
}

func (v *fakeViewer) Open(target string) error {
	v.opened = append(v.opened, target)
	return nil
}

type harness struct {
	t         *testing.T
	model     Model
	snapshots chan []domain.CharacterRecord
	viewer    *fakeViewer
	repo      *fakeRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := &fakeRepo{pages: map[string]domain.Page{
		page1URL: {Characters: append([]domain.Character{{Name: "Rick Sanchez", Status: "Alive"}, {Name: "Morty Smith", Status: "Alive"}}, makeChars("Citizen", 8)...), Next: page2URL},
		page2URL: {Characters: makeChars("Council Rick", 5)},
	}}
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "rickdex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ch := NewSnapshotChannel()
	ctrl := library.NewController(repo, st, page1URL, log.NullLogger(),
		library.WithObserver(NewChannelObserver(ch)),
		library.WithPrefetchThreshold(2),
	)
	enricher := library.NewEnricher(repo, 2, log.NullLogger())
	viewer := &fakeViewer{}

	h := &harness{t: t, model: NewModel(ctrl, enricher, viewer, ch), snapshots: ch, viewer: viewer, repo: repo}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	// Bootstrap
	h.run(GetInitialCmd(ctrl))
	h.drainSnapshot()
	return h
}

// send applies msg and returns the resulting command
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.model.Update(msg)
	m, ok := next.(Model)
	require.True(h.t, ok)
	h.model = m
	return cmd
}

func (h *harness) press(keys ...string) tea.Cmd {
	h.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyMsg(k))
	}
	return cmd
}

// run executes cmd (expanding batches) and feeds every result back into the model
func (h *harness) run(cmd tea.Cmd) []tea.Msg {
	h.t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, h.run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	h.send(msg)
	return []tea.Msg{msg}
}

// drainSnapshot delivers the pending controller snapshot
func (h *harness) drainSnapshot() {
	h.t.Helper()
	select {
	case records := <-h.snapshots:
		h.send(SnapshotMsg{Records: records})
	case <-time.After(2 * time.Second):
		h.t.Fatal("no snapshot published")
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func hasMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestModel_InitialLoad(t *testing.T) {
	h := newHarness(t)

	assert.False(t, h.model.Loading)
	assert.False(t, h.model.Exhausted)
	assert.Equal(t, 10, h.model.List.ItemCount())
	require.NotNil(t, h.model.List.Selected())
	assert.Equal(t, "Rick Sanchez", h.model.List.Selected().GetTitle())
	assert.Equal(t, h.model.List.Selected().ID, h.model.Inspector.RecordID())
	assert.Contains(t, h.model.View(), "Characters (10)")
}

func TestModel_ScrollingNearEndLoadsMore(t *testing.T) {
	h := newHarness(t)

	// Threshold 2 of 10 rows: index 7 is the first trigger
	h.press("j", "j", "j", "j", "j", "j")
	assert.False(t, h.model.Loading)

	cmd := h.press("j")
	assert.True(t, h.model.Loading)
	require.NotNil(t, cmd)

	msgs := h.run(cmd)
	loaded, ok := hasMsg[PageLoadedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, 15, loaded.Count)

	h.drainSnapshot()
	assert.Equal(t, 15, h.model.List.ItemCount())
	assert.False(t, h.model.Loading)
	assert.True(t, h.model.Exhausted)
	assert.Equal(t, 7, h.model.List.SelectedIndex())

	// Nothing left to fetch
	cmd = h.press("G")
	assert.False(t, h.model.Loading)
	assert.Nil(t, cmd)
}

func TestModel_LoadMoreWhileLoadingIsIgnored(t *testing.T) {
	h := newHarness(t)

	first := h.press("m")
	require.NotNil(t, first)
	assert.True(t, h.model.Loading)

	assert.Nil(t, h.press("m"))
	assert.Nil(t, h.press("G"))

	h.run(first)
	h.drainSnapshot()
	assert.Equal(t, 15, h.model.List.ItemCount())
}

func TestLoadMoreCmd_BusyClearsLoading(t *testing.T) {
	h := newHarness(t)
	h.repo.gate = make(chan struct{})
	h.repo.entered = make(chan struct{})

	done := make(chan tea.Msg, 1)
	go func() { done <- LoadMoreCmd(h.model.Controller)() }()
	<-h.repo.entered

	// A second command while the first holds the guard
	h.model.setLoading(true)
	msg := LoadMoreCmd(h.model.Controller)()
	require.IsType(t, FetchBusyMsg{}, msg)
	h.send(msg)
	assert.False(t, h.model.Loading)

	close(h.repo.gate)
	first := <-done
	loaded, ok := first.(PageLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 15, loaded.Count)
}

func TestModel_FilterNarrowsListAndSuppressesPrefetch(t *testing.T) {
	h := newHarness(t)

	h.press("/")
	assert.True(t, h.model.List.IsFiltering())
	h.press("m", "o", "r", "t", "y")

	assert.True(t, h.model.List.IsFiltered())
	assert.Equal(t, 1, h.model.List.ItemCount())
	assert.Equal(t, "Morty Smith", h.model.List.Selected().GetTitle())
	assert.Equal(t, h.model.List.Selected().ID, h.model.Inspector.RecordID())

	// Accept the filter and navigate: the last filtered row never triggers a page fetch
	h.press("enter")
	assert.False(t, h.model.List.IsFiltering())
	assert.Nil(t, h.press("G"))
	assert.False(t, h.model.Loading)

	h.press("esc")
	assert.False(t, h.model.List.IsFiltered())
	assert.Equal(t, 10, h.model.List.ItemCount())
	assert.Equal(t, "Morty Smith", h.model.List.Selected().GetTitle())
}

func TestModel_HelpListsBindings(t *testing.T) {
	h := newHarness(t)
	h.press("?")
	require.Equal(t, StateHelp, h.model.State)

	view := h.model.View()
	for _, b := range []key.Binding{Keys.List.Filter, Keys.List.HalfDown, Keys.LoadMore, Keys.Reset} {
		assert.Contains(t, view, b.Help().Desc)
	}
}

func TestModel_Rename(t *testing.T) {
	h := newHarness(t)

	h.press("e")
	assert.Equal(t, StateRenaming, h.model.State)
	assert.Equal(t, "Rick Sanchez", h.model.InputModal.Value())

	h.press(" ", "C", "-", "1", "3", "7")
	cmd := h.press("enter")
	assert.Equal(t, StateBrowsing, h.model.State)

	msgs := h.run(cmd)
	renamed, ok := hasMsg[RenamedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "Rick Sanchez C-137", renamed.Name)

	h.drainSnapshot()
	assert.Equal(t, "Rick Sanchez C-137", h.model.List.Selected().GetTitle())
	assert.Equal(t, "Renamed to Rick Sanchez C-137", h.model.StatusMsg)
}

func TestModel_RenameCancelled(t *testing.T) {
	h := newHarness(t)

	h.press("e")
	h.press("esc")
	assert.Equal(t, StateBrowsing, h.model.State)
	assert.Equal(t, "Rick Sanchez", h.model.List.Selected().GetTitle())
}

func TestModel_Delete(t *testing.T) {
	h := newHarness(t)

	h.press("j")
	msgs := h.run(h.press("d"))
	deleted, ok := hasMsg[DeletedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "Morty Smith", deleted.Title)

	h.drainSnapshot()
	assert.Equal(t, 9, h.model.List.ItemCount())
	// Cursor stays at the same row, which now holds the next record
	assert.Equal(t, "Citizen 1", h.model.List.Selected().GetTitle())
}

func TestModel_DescribeSelected(t *testing.T) {
	h := newHarness(t)

	h.press("j", "j")
	cmd := h.press("enter")
	assert.True(t, h.model.Inspector.IsDescribing())

	msgs := h.run(cmd)
	desc, ok := hasMsg[DescriptionLoadedMsg](msgs)
	require.True(t, ok)
	require.NoError(t, desc.Err)

	assert.False(t, h.model.Inspector.IsDescribing())
	assert.Contains(t, h.model.Inspector.Description(), "S01E01: Pilot")
	assert.Contains(t, h.model.Inspector.Description(), "S01E02: Lawnmower Dog")
}

func TestModel_StaleDescriptionIgnored(t *testing.T) {
	h := newHarness(t)

	cmd := h.press("enter")
	// Selection moves before the description arrives
	h.press("j")
	h.run(cmd)

	assert.Empty(t, h.model.Inspector.Description())
	assert.Equal(t, "Morty Smith", h.model.List.Selected().GetTitle())
}

func TestModel_ResetRequiresConfirmation(t *testing.T) {
	h := newHarness(t)

	h.press("e")
	h.press(" ", "X")
	h.run(h.press("enter"))
	h.drainSnapshot()

	h.press("r")
	assert.Equal(t, StateConfirmReset, h.model.State)
	assert.Nil(t, h.press("n"))
	assert.Equal(t, StateBrowsing, h.model.State)

	h.press("r")
	cmd := h.press("y")
	require.NotNil(t, cmd)
	assert.True(t, h.model.Loading)

	msgs := h.run(cmd)
	done, ok := hasMsg[ResetDoneMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, 10, done.Count)

	h.drainSnapshot()
	assert.False(t, h.model.Loading)
	assert.Equal(t, "Rick Sanchez", h.model.List.Selected().GetTitle())
}

func TestModel_ErrorShowsStatus(t *testing.T) {
	h := newHarness(t)

	h.send(ErrMsg{Err: domain.ErrNoData, Context: "loading more characters"})
	assert.True(t, h.model.StatusIsErr)
	assert.Equal(t, "loading more characters: no data in response", h.model.StatusMsg)
	assert.Contains(t, h.model.View(), "no data in response")
}

func TestModel_OpenAvatar(t *testing.T) {
	h := newHarness(t)

	// Rick has no avatar URL in this fixture
	h.press("o")
	assert.True(t, h.model.StatusIsErr)
	assert.Empty(t, h.viewer.opened)

	h.press("j", "j")
	msgs := h.run(h.press("o"))
	status, ok := hasMsg[StatusMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "Opened avatar of Citizen 1", status.Message)
	assert.Equal(t, []string{"https://rickandmortyapi.com/api/character/avatar/3.jpeg"}, h.viewer.opened)
}

func TestChannelObserver_KeepsLatestSnapshot(t *testing.T) {
	ch := NewSnapshotChannel()
	obs := NewChannelObserver(ch)

	obs.OnSnapshot([]domain.CharacterRecord{{ID: "a"}})
	obs.OnSnapshot([]domain.CharacterRecord{{ID: "a"}, {ID: "b"}})

	got := <-ch
	assert.Len(t, got, 2)
	select {
	case <-ch:
		t.Fatal("stale snapshot was queued")
	default:
	}
}
