package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmcdole/rickdex/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS characters (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	name         TEXT NOT NULL,
	status       TEXT NOT NULL,
	species      TEXT NOT NULL,
	gender       TEXT NOT NULL,
	origin       TEXT NOT NULL,
	location     TEXT NOT NULL,
	image_url    TEXT NOT NULL,
	fetched_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	url          TEXT NOT NULL,
	PRIMARY KEY (character_id, position)
);

CREATE TABLE IF NOT EXISTS cursor (
	singleton  INTEGER PRIMARY KEY CHECK (singleton = 1),
	next       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore implements domain.Store on a SQLite file.
// Episodes live in their own table and cascade with their character.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the SQLite file at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.NewStorageError("open", fmt.Errorf("ensure data dir: %w", err))
	}

	// DSN pragmas apply to every connection the pool opens
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, domain.NewStorageError("open", fmt.Errorf("open sqlite: %w", err))
	}
	// Single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, domain.NewStorageError("open", fmt.Errorf("init sqlite: %w", err))
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func sqliteDSN(path string) string {
	return path + "?_foreign_keys=on&_journal_mode=WAL"
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// === Characters ===

func (s *SQLiteStore) ReadAll() ([]domain.CharacterRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, display_name, name, status, species, gender, origin, location, image_url, fetched_at
		FROM characters ORDER BY seq`)
	if err != nil {
		return nil, domain.NewStorageError("read all", err)
	}
	defer rows.Close()

	records := []domain.CharacterRecord{}
	byID := make(map[string]int)
	for rows.Next() {
		rec, err := scanCharacter(rows)
		if err != nil {
			return nil, domain.NewStorageError("read all", err)
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("read all", err)
	}

	eps, err := s.db.Query(`SELECT character_id, url FROM episodes ORDER BY character_id, position`)
	if err != nil {
		return nil, domain.NewStorageError("read all", err)
	}
	defer eps.Close()

	for eps.Next() {
		var id, u string
		if err := eps.Scan(&id, &u); err != nil {
			return nil, domain.NewStorageError("read all", err)
		}
		if i, ok := byID[id]; ok {
			records[i].Episodes = append(records[i].Episodes, domain.EpisodeRecord{URL: u})
		}
	}
	if err := eps.Err(); err != nil {
		return nil, domain.NewStorageError("read all", err)
	}

	for i := range records {
		if records[i].Episodes == nil {
			records[i].Episodes = []domain.EpisodeRecord{}
		}
	}
	return records, nil
}

func (s *SQLiteStore) Get(id string) (domain.CharacterRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, display_name, name, status, species, gender, origin, location, image_url, fetched_at
		FROM characters WHERE id = ?`, id)
	rec, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CharacterRecord{}, domain.NewStorageError("get", domain.ErrCharacterNotFound)
	}
	if err != nil {
		return domain.CharacterRecord{}, domain.NewStorageError("get", err)
	}

	rows, err := s.db.Query(`SELECT url FROM episodes WHERE character_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.CharacterRecord{}, domain.NewStorageError("get", err)
	}
	defer rows.Close()

	rec.Episodes = []domain.EpisodeRecord{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return domain.CharacterRecord{}, domain.NewStorageError("get", err)
		}
		rec.Episodes = append(rec.Episodes, domain.EpisodeRecord{URL: u})
	}
	if err := rows.Err(); err != nil {
		return domain.CharacterRecord{}, domain.NewStorageError("get", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Upsert(characters []domain.Character) error {
	return s.inTx("upsert", func(tx *sql.Tx) error {
		return s.insertCharacters(tx, characters)
	})
}

func (s *SQLiteStore) Rename(id, name string) error {
	res, err := s.db.Exec(`UPDATE characters SET display_name = ? WHERE id = ?`, name, id)
	if err != nil {
		return domain.NewStorageError("rename", err)
	}
	return domain.NewStorageError("rename", requireAffected(res))
}

func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return domain.NewStorageError("delete", err)
	}
	return domain.NewStorageError("delete", requireAffected(res))
}

// === Cursor ===

func (s *SQLiteStore) ReadCursor() (domain.Cursor, bool, error) {
	var cursor domain.Cursor
	err := s.db.QueryRow(`SELECT next, updated_at FROM cursor WHERE singleton = 1`).
		Scan(&cursor.Next, &cursor.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cursor{}, false, nil
	}
	if err != nil {
		return domain.Cursor{}, false, domain.NewStorageError("read cursor", err)
	}
	return cursor, true, nil
}

func (s *SQLiteStore) SaveCursor(cursor domain.Cursor) error {
	return s.inTx("save cursor", func(tx *sql.Tx) error {
		return putSQLiteCursor(tx, cursor)
	})
}

func (s *SQLiteStore) AppendPage(characters []domain.Character, cursor domain.Cursor) error {
	return s.inTx("append page", func(tx *sql.Tx) error {
		if err := s.insertCharacters(tx, characters); err != nil {
			return err
		}
		return putSQLiteCursor(tx, cursor)
	})
}

func (s *SQLiteStore) Clear() error {
	return s.inTx("clear", func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM episodes`, `DELETE FROM characters`, `DELETE FROM cursor`} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Helpers ===

func (s *SQLiteStore) inTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return domain.NewStorageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, err)
	}
	return nil
}

func (s *SQLiteStore) insertCharacters(tx *sql.Tx, characters []domain.Character) error {
	fetchedAt := s.now().UTC()
	for _, c := range characters {
		rec := domain.NewCharacterRecord(uuid.NewString(), c, fetchedAt)
		_, err := tx.Exec(`
			INSERT INTO characters (id, display_name, name, status, species, gender, origin, location, image_url, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.DisplayName, rec.Name, rec.Status, rec.Species, rec.Gender,
			rec.Origin, rec.Location, rec.ImageURL, rec.FetchedAt)
		if err != nil {
			return fmt.Errorf("insert character: %w", err)
		}
		for i, ep := range rec.Episodes {
			if _, err := tx.Exec(`INSERT INTO episodes (character_id, position, url) VALUES (?, ?, ?)`,
				rec.ID, i, ep.URL); err != nil {
				return fmt.Errorf("insert episode: %w", err)
			}
		}
	}
	return nil
}

func putSQLiteCursor(tx *sql.Tx, cursor domain.Cursor) error {
	_, err := tx.Exec(`
		INSERT INTO cursor (singleton, next, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET next = excluded.next, updated_at = excluded.updated_at`,
		cursor.Next, cursor.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (domain.CharacterRecord, error) {
	var rec domain.CharacterRecord
	err := row.Scan(&rec.ID, &rec.DisplayName, &rec.Name, &rec.Status, &rec.Species,
		&rec.Gender, &rec.Origin, &rec.Location, &rec.ImageURL, &rec.FetchedAt)
	return rec, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCharacterNotFound
	}
	return nil
}
