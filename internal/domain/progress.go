package domain

// ProgressFunc reports sync progress: pages fetched so far and records stored.
type ProgressFunc func(pages, records int)

// SyncResult summarizes what happened during a sync operation.
type SyncResult struct {
	Pages     int  // Pages fetched from the network
	Count     int  // Total records stored after sync
	Exhausted bool // true if the remote listing has no more pages
}
