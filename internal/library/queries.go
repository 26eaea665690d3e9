package library

import "github.com/mmcdole/rickdex/internal/domain"

// Queries provides synchronous, cache-only reads.
// Never touches the network.
type Queries struct {
	store domain.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) Characters() ([]domain.CharacterRecord, error) {
	return q.store.ReadAll()
}

func (q *Queries) Character(id string) (domain.CharacterRecord, error) {
	return q.store.Get(id)
}

// Cursor returns the persisted cursor; ok is false before the first bootstrap.
func (q *Queries) Cursor() (domain.Cursor, bool, error) {
	return q.store.ReadCursor()
}

// Count returns how many records are stored.
func (q *Queries) Count() (int, error) {
	records, err := q.store.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
