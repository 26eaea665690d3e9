package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/rickdex/internal/config"
	"github.com/mmcdole/rickdex/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCharacters = []byte("characters") // seq (big-endian) -> CharacterRecord JSON
	bucketIndex      = []byte("index")      // record ID -> seq
	bucketMeta       = []byte("meta")       // singleton values

	keyCursor = []byte("cursor")
)

// BoltStore implements domain.Store using BoltDB.
// Character keys are bucket sequence numbers, so a cursor scan yields fetch order.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time

	mu sync.RWMutex // Protects snapshot and gen

	// Hot-path cache of ReadAll, dropped on every write
	snapshot []domain.CharacterRecord
	gen      uint64
}

// Open opens (or creates) the store backend selected by cfg.
func Open(cfg config.StoreConfig) (domain.Store, error) {
	path, err := config.ExpandHome(cfg.Path)
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreDriverBolt, "":
		s, err := NewBoltStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// NewBoltStore opens the BoltDB file at path, creating parent directories.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, domain.NewStorageError("open", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, domain.NewStorageError("open", fmt.Errorf("failed to open bolt db: %w", err))
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCharacters, bucketIndex, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, domain.NewStorageError("open", err)
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// === Characters ===

func (s *BoltStore) ReadAll() ([]domain.CharacterRecord, error) {
	s.mu.RLock()
	if s.snapshot != nil {
		out := cloneRecords(s.snapshot)
		s.mu.RUnlock()
		return out, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	records := []domain.CharacterRecord{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCharacters).ForEach(func(_, v []byte) error {
			var rec domain.CharacterRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, domain.NewStorageError("read all", err)
	}

	// Promote to memory cache unless a write landed meanwhile
	s.mu.Lock()
	if s.gen == gen {
		s.snapshot = records
	}
	s.mu.Unlock()

	return cloneRecords(records), nil
}

func (s *BoltStore) Get(id string) (domain.CharacterRecord, error) {
	var rec domain.CharacterRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(bucketIndex).Get([]byte(id))
		if key == nil {
			return domain.ErrCharacterNotFound
		}
		v := tx.Bucket(bucketCharacters).Get(key)
		if v == nil {
			return domain.ErrCharacterNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return domain.CharacterRecord{}, domain.NewStorageError("get", err)
	}
	return rec, nil
}

func (s *BoltStore) Upsert(characters []domain.Character) error {
	return s.update("upsert", func(tx *bolt.Tx) error {
		return s.insertCharacters(tx, characters)
	})
}

func (s *BoltStore) Rename(id, name string) error {
	return s.update("rename", func(tx *bolt.Tx) error {
		return s.modify(tx, id, func(rec *domain.CharacterRecord) {
			rec.DisplayName = name
		})
	})
}

func (s *BoltStore) Delete(id string) error {
	return s.update("delete", func(tx *bolt.Tx) error {
		index := tx.Bucket(bucketIndex)
		key := copyBytes(index.Get([]byte(id)))
		if key == nil {
			return domain.ErrCharacterNotFound
		}
		if err := tx.Bucket(bucketCharacters).Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(id))
	})
}

// === Cursor ===

func (s *BoltStore) ReadCursor() (domain.Cursor, bool, error) {
	var (
		cursor domain.Cursor
		ok     bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyCursor)
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &cursor)
	})
	if err != nil {
		return domain.Cursor{}, false, domain.NewStorageError("read cursor", err)
	}
	return cursor, ok, nil
}

func (s *BoltStore) SaveCursor(cursor domain.Cursor) error {
	return s.update("save cursor", func(tx *bolt.Tx) error {
		return putCursor(tx, cursor)
	})
}

func (s *BoltStore) AppendPage(characters []domain.Character, cursor domain.Cursor) error {
	return s.update("append page", func(tx *bolt.Tx) error {
		if err := s.insertCharacters(tx, characters); err != nil {
			return err
		}
		return putCursor(tx, cursor)
	})
}

// Clear wipes every bucket
func (s *BoltStore) Clear() error {
	return s.update("clear", func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCharacters, bucketIndex, bucketMeta} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Helpers ===

// update runs fn in a write transaction and drops the read cache.
func (s *BoltStore) update(op string, fn func(tx *bolt.Tx) error) error {
	err := s.db.Update(fn)

	s.mu.Lock()
	s.snapshot = nil
	s.gen++
	s.mu.Unlock()

	if err != nil {
		return domain.NewStorageError(op, err)
	}
	return nil
}

func (s *BoltStore) insertCharacters(tx *bolt.Tx, characters []domain.Character) error {
	chars := tx.Bucket(bucketCharacters)
	index := tx.Bucket(bucketIndex)
	fetchedAt := s.now().UTC()

	for _, c := range characters {
		seq, err := chars.NextSequence()
		if err != nil {
			return err
		}
		rec := domain.NewCharacterRecord(uuid.NewString(), c, fetchedAt)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		key := seqKey(seq)
		if err := chars.Put(key, data); err != nil {
			return err
		}
		if err := index.Put([]byte(rec.ID), key); err != nil {
			return err
		}
	}
	return nil
}

func (s *BoltStore) modify(tx *bolt.Tx, id string, fn func(rec *domain.CharacterRecord)) error {
	key := copyBytes(tx.Bucket(bucketIndex).Get([]byte(id)))
	if key == nil {
		return domain.ErrCharacterNotFound
	}
	chars := tx.Bucket(bucketCharacters)
	v := chars.Get(key)
	if v == nil {
		return domain.ErrCharacterNotFound
	}

	var rec domain.CharacterRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return err
	}
	fn(&rec)
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return chars.Put(key, data)
}

func putCursor(tx *bolt.Tx, cursor domain.Cursor) error {
	data, err := json.Marshal(cursor)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketMeta).Put(keyCursor, data)
}

// copyBytes detaches a value from the transaction's mmap
func copyBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// cloneRecords copies the slice so callers cannot mutate the cache
func cloneRecords(records []domain.CharacterRecord) []domain.CharacterRecord {
	out := make([]domain.CharacterRecord, len(records))
	copy(out, records)
	return out
}
