package domain

// SnapshotObserver receives the complete stored list after every successful
// controller operation. It never receives incremental diffs.
type SnapshotObserver interface {
	OnSnapshot(records []CharacterRecord)
}

// NoOpObserver discards snapshots (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnSnapshot([]CharacterRecord) {}

// ObserverFunc adapts a function to SnapshotObserver.
type ObserverFunc func(records []CharacterRecord)

func (f ObserverFunc) OnSnapshot(records []CharacterRecord) { f(records) }
