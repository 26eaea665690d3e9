package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/library"
)

// Command factories for async operations

// Timeouts for network-backed commands
const (
	pageTimeout     = 30 * time.Second
	describeTimeout = 60 * time.Second // One request per episode
)

// WaitForSnapshotCmd blocks until the controller publishes the next list
func WaitForSnapshotCmd(ch <-chan []domain.CharacterRecord) tea.Cmd {
	return func() tea.Msg {
		records, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Records: records}
	}
}

// GetInitialCmd serves the cached list or bootstraps page 1
func GetInitialCmd(ctrl *library.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		records, err := ctrl.GetInitial(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading characters"}
		}
		return InitialLoadedMsg{Count: len(records)}
	}
}

// LoadMoreCmd fetches the next page
func LoadMoreCmd(ctrl *library.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		records, err := ctrl.LoadMore(ctx)
		switch {
		case errors.Is(err, domain.ErrExhausted):
			return ExhaustedMsg{}
		case errors.Is(err, domain.ErrFetchInFlight):
			return FetchBusyMsg{}
		case err != nil:
			return ErrMsg{Err: err, Context: "loading more characters"}
		}
		return PageLoadedMsg{Count: len(records)}
	}
}

// ResetCmd clears the local cache and fetches page 1 again
func ResetCmd(ctrl *library.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		records, err := ctrl.Reset(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "resetting cache"}
		}
		return ResetDoneMsg{Count: len(records)}
	}
}

// RenameCmd changes a record's display name
func RenameCmd(ctrl *library.Controller, id, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.Rename(id, name); err != nil {
			return ErrMsg{Err: err, Context: "renaming"}
		}
		return RenamedMsg{ID: id, Name: name}
	}
}

// DeleteCmd removes a record
func DeleteCmd(ctrl *library.Controller, id, title string) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.Delete(id); err != nil {
			return ErrMsg{Err: err, Context: "deleting"}
		}
		return DeletedMsg{ID: id, Title: title}
	}
}

// DescribeCmd resolves a record's episodes into its description
func DescribeCmd(enricher *library.Enricher, rec domain.CharacterRecord) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), describeTimeout)
		defer cancel()

		text, err := enricher.Describe(ctx, rec)
		return DescriptionLoadedMsg{ID: rec.ID, Text: text, Err: err}
	}
}

// OpenImageCmd opens an avatar in the external viewer
func OpenImageCmd(viewer ImageOpener, imageURL, title string) tea.Cmd {
	return func() tea.Msg {
		if err := viewer.Open(imageURL); err != nil {
			return ErrMsg{Err: err, Context: "opening avatar"}
		}
		return StatusMsg{Message: "Opened avatar of " + title}
	}
}

// ClearStatusCmd clears the status after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
