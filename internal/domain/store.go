package domain

// Store handles the local character cache (BoltDB or SQLite).
// Every mutation is committed durably before it returns.
// Failures are reported as *StorageError.
type Store interface {
	// === Characters ===
	ReadAll() ([]CharacterRecord, error) // Fetch order
	Get(id string) (CharacterRecord, error)

	// Upsert inserts the characters of one page. Pages are assumed disjoint,
	// so this never looks for an existing match.
	Upsert(characters []Character) error

	Rename(id, name string) error
	Delete(id string) error

	// === Cursor ===
	// ReadCursor reports ok=false when no cursor was ever persisted.
	ReadCursor() (cursor Cursor, ok bool, err error)
	SaveCursor(cursor Cursor) error

	// AppendPage stores a page's characters and the new cursor in one transaction
	AppendPage(characters []Character, cursor Cursor) error

	// Clear removes every record and the cursor
	Clear() error

	Close() error
}
