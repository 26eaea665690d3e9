package tui

import "github.com/mmcdole/rickdex/internal/domain"

// ChannelObserver adapts domain.SnapshotObserver to a channel for Bubble Tea.
// Only the newest snapshot matters, so a pending one is replaced rather than queued.
type ChannelObserver struct {
	ch chan []domain.CharacterRecord
}

// NewChannelObserver creates a new channel-based observer. ch must be buffered.
func NewChannelObserver(ch chan []domain.CharacterRecord) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnSnapshot sends records to the channel without blocking.
func (o *ChannelObserver) OnSnapshot(records []domain.CharacterRecord) {
	for {
		select {
		case o.ch <- records:
			return
		default:
		}
		// Channel full: drop the stale snapshot and retry
		select {
		case <-o.ch:
		default:
		}
	}
}

// NewSnapshotChannel returns a channel sized for ChannelObserver.
func NewSnapshotChannel() chan []domain.CharacterRecord {
	return make(chan []domain.CharacterRecord, 1)
}
