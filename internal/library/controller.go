package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/rickdex/internal/domain"
)

// State is the controller's position in the paging lifecycle.
type State int

const (
	StateIdle State = iota
	StateBootstrapping
	StateFetchingPage
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBootstrapping:
		return "bootstrapping"
	case StateFetchingPage:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// busy reports whether a page fetch is outstanding
func (s State) busy() bool {
	return s == StateBootstrapping || s == StateFetchingPage
}

const defaultPrefetchThreshold = 5

// Controller pages through the remote listing and keeps the local store in step.
// At most one page fetch is in flight at any time.
type Controller struct {
	repo         domain.CharacterRepository
	store        domain.Store
	firstPageURL string
	observer     domain.SnapshotObserver
	threshold    int
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.Mutex // Protects state
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers the snapshot observer.
func WithObserver(o domain.SnapshotObserver) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithPrefetchThreshold sets how many rows from the end trigger a load-more.
func WithPrefetchThreshold(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.threshold = n
		}
	}
}

// WithClock overrides the cursor timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller over repo and store.
// firstPageURL seeds the cursor when nothing has been fetched yet.
func NewController(
	repo domain.CharacterRepository,
	store domain.Store,
	firstPageURL string,
	logger *slog.Logger,
	opts ...Option,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		repo:         repo,
		store:        store,
		firstPageURL: firstPageURL,
		observer:     domain.NoOpObserver{},
		threshold:    defaultPrefetchThreshold,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasMoreData reports whether the persisted cursor points at another page.
func (c *Controller) HasMoreData() bool {
	cursor, ok, err := c.store.ReadCursor()
	if err != nil {
		c.logger.Error("failed to read cursor", "error", err)
		return false
	}
	return ok && cursor.HasMore()
}

// ShouldLoadMore reports whether a selection at index out of total rows is close
// enough to the end to request the next page.
func (c *Controller) ShouldLoadMore(index, total int) bool {
	if total <= 0 || index < 0 {
		return false
	}
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state.busy() || state == StateExhausted {
		return false
	}
	return index >= total-1-c.threshold
}

// GetInitial serves the stored list, bootstrapping page 1 if nothing was ever fetched.
func (c *Controller) GetInitial(ctx context.Context) ([]domain.CharacterRecord, error) {
	cursor, ok, err := c.store.ReadCursor()
	if err != nil {
		c.logger.Error("failed to read cursor", "error", err)
		return nil, err
	}
	if ok {
		c.mu.Lock()
		if !c.state.busy() {
			c.state = stateFor(cursor)
		}
		c.mu.Unlock()
		return c.snapshot()
	}

	if err := c.acquire(StateBootstrapping); err != nil {
		return nil, err
	}
	final := StateIdle
	defer func() { c.release(final) }()

	// Another caller may have bootstrapped while we waited for the guard
	cursor, ok, err = c.store.ReadCursor()
	if err != nil {
		return nil, err
	}
	if ok {
		final = stateFor(cursor)
		return c.snapshot()
	}

	var records []domain.CharacterRecord
	records, final, err = c.bootstrap(ctx)
	return records, err
}

// LoadMore fetches the page at the persisted cursor and appends it.
// Returns ErrFetchInFlight or ErrExhausted without touching the network when
// a fetch is outstanding or the listing has ended.
func (c *Controller) LoadMore(ctx context.Context) ([]domain.CharacterRecord, error) {
	if err := c.acquire(StateFetchingPage); err != nil {
		return nil, err
	}
	final := StateIdle
	defer func() { c.release(final) }()

	cursor, ok, err := c.store.ReadCursor()
	if err != nil {
		c.logger.Error("failed to read cursor", "error", err)
		return nil, err
	}
	if !ok {
		cursor = domain.Cursor{Next: c.firstPageURL}
	}
	if !cursor.HasMore() {
		final = StateExhausted
		return nil, domain.ErrExhausted
	}

	var records []domain.CharacterRecord
	records, final, err = c.fetchAndStore(ctx, cursor.Next)
	return records, err
}

// Reset discards every stored record and the cursor, then bootstraps again.
func (c *Controller) Reset(ctx context.Context) ([]domain.CharacterRecord, error) {
	c.mu.Lock()
	if c.state.busy() {
		c.mu.Unlock()
		return nil, domain.ErrFetchInFlight
	}
	c.state = StateBootstrapping
	c.mu.Unlock()

	final := StateIdle
	defer func() { c.release(final) }()

	if err := c.store.Clear(); err != nil {
		c.logger.Error("failed to clear store", "error", err)
		return nil, err
	}
	c.logger.Info("cleared local cache")

	var (
		records []domain.CharacterRecord
		err     error
	)
	records, final, err = c.bootstrap(ctx)
	return records, err
}

// Rename changes a record's display name and emits a fresh snapshot.
func (c *Controller) Rename(id, name string) ([]domain.CharacterRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	if err := c.store.Rename(id, name); err != nil {
		c.logger.Error("failed to rename character", "error", err, "id", id)
		return nil, err
	}
	c.logger.Debug("renamed character", "id", id, "name", name)
	return c.snapshot()
}

// Delete removes a record and emits a fresh snapshot.
func (c *Controller) Delete(id string) ([]domain.CharacterRecord, error) {
	if err := c.store.Delete(id); err != nil {
		c.logger.Error("failed to delete character", "error", err, "id", id)
		return nil, err
	}
	c.logger.Debug("deleted character", "id", id)
	return c.snapshot()
}

// Sync fetches up to maxPages pages (all remaining when maxPages <= 0),
// bootstrapping first if needed.
func (c *Controller) Sync(
	ctx context.Context,
	maxPages int,
	onProgress domain.ProgressFunc,
) (domain.SyncResult, error) {
	var result domain.SyncResult

	report := func(records []domain.CharacterRecord) {
		result.Pages++
		result.Count = len(records)
		if onProgress != nil {
			onProgress(result.Pages, result.Count)
		}
	}

	_, ok, err := c.store.ReadCursor()
	if err != nil {
		return result, err
	}
	if !ok {
		records, err := c.GetInitial(ctx)
		if err != nil {
			return result, err
		}
		report(records)
	}

	for maxPages <= 0 || result.Pages < maxPages {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		records, err := c.LoadMore(ctx)
		if errors.Is(err, domain.ErrExhausted) {
			break
		}
		if err != nil {
			return result, err
		}
		report(records)
	}

	records, err := c.store.ReadAll()
	if err != nil {
		return result, err
	}
	result.Count = len(records)
	result.Exhausted = !c.HasMoreData()
	c.logger.Info("sync finished", "pages", result.Pages, "count", result.Count, "exhausted", result.Exhausted)
	return result, nil
}

// --- Private helpers ---

// acquire sets the in-flight guard, or reports why it cannot.
func (c *Controller) acquire(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state.busy():
		return domain.ErrFetchInFlight
	case c.state == StateExhausted && to == StateFetchingPage:
		return domain.ErrExhausted
	}
	c.state = to
	return nil
}

func (c *Controller) release(final State) {
	c.mu.Lock()
	c.state = final
	c.mu.Unlock()
}

// bootstrap fetches page 1. On failure the first-page URL is persisted so a
// later LoadMore retries it. Caller holds the guard.
func (c *Controller) bootstrap(ctx context.Context) ([]domain.CharacterRecord, State, error) {
	c.logger.Info("bootstrapping character list", "url", c.firstPageURL)

	records, final, err := c.fetchAndStore(ctx, c.firstPageURL)
	if err != nil {
		seed := domain.Cursor{Next: c.firstPageURL, UpdatedAt: c.now().UTC()}
		if serr := c.store.SaveCursor(seed); serr != nil {
			c.logger.Warn("failed to seed cursor after bootstrap failure", "error", serr)
		}
		return nil, StateIdle, err
	}
	return records, final, nil
}

// fetchAndStore fetches one page and persists it with the next cursor.
func (c *Controller) fetchAndStore(ctx context.Context, pageURL string) ([]domain.CharacterRecord, State, error) {
	page, err := c.repo.FetchPage(ctx, pageURL)
	if err != nil {
		c.logger.Error("failed to fetch page", "error", err, "url", pageURL)
		return nil, StateIdle, err
	}

	next := domain.Cursor{Next: page.Next, UpdatedAt: c.now().UTC()}
	if err := c.store.AppendPage(page.Characters, next); err != nil {
		c.logger.Error("failed to store page", "error", err, "url", pageURL)
		return nil, StateIdle, err
	}
	c.logger.Debug("stored page", "url", pageURL, "count", len(page.Characters), "next", page.Next)

	final := stateFor(next)
	records, err := c.snapshot()
	return records, final, err
}

// snapshot reads the full stored list and hands it to the observer.
func (c *Controller) snapshot() ([]domain.CharacterRecord, error) {
	records, err := c.store.ReadAll()
	if err != nil {
		c.logger.Error("failed to read characters", "error", err)
		return nil, err
	}
	c.observer.OnSnapshot(records)
	return records, nil
}

func stateFor(cursor domain.Cursor) State {
	if cursor.HasMore() {
		return StateIdle
	}
	return StateExhausted
}
