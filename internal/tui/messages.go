package tui

import (
	"github.com/mmcdole/rickdex/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SnapshotMsg carries the complete stored list after a controller operation
type SnapshotMsg struct {
	Records []domain.CharacterRecord
}

// FetchBusyMsg signals that LoadMore was skipped because another fetch holds the guard
type FetchBusyMsg struct{}

// InitialLoadedMsg signals that the first list (cached or bootstrapped) is ready
type InitialLoadedMsg struct {
	Count int
}

// PageLoadedMsg signals that LoadMore appended a page
type PageLoadedMsg struct {
	Count int // Total records after the page
}

// ExhaustedMsg signals that there are no more pages to fetch
type ExhaustedMsg struct{}

// ResetDoneMsg signals that the cache was cleared and page 1 fetched again
type ResetDoneMsg struct {
	Count int
}

// RenamedMsg signals that a record's display name changed
type RenamedMsg struct {
	ID   string
	Name string
}

// DeletedMsg signals that a record was removed
type DeletedMsg struct {
	ID    string
	Title string
}

// DescriptionLoadedMsg carries the episode description for a record
type DescriptionLoadedMsg struct {
	ID   string
	Text string
	Err  error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
