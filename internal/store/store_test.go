package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rickdex/internal/config"
	"github.com/mmcdole/rickdex/internal/domain"
)

type backend struct {
	name string
	open func(path string) (domain.Store, error)
}

var backends = []backend{
	{"bolt", func(path string) (domain.Store, error) { return NewBoltStore(path) }},
	{"sqlite", func(path string) (domain.Store, error) { return NewSQLiteStore(path) }},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, open func() domain.Store)) {
	t.Helper()
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data", "rickdex.db")
			var current domain.Store
			open := func() domain.Store {
				if current != nil {
					require.NoError(t, current.Close())
				}
				s, err := b.open(path)
				require.NoError(t, err)
				current = s
				return s
			}
			t.Cleanup(func() {
				if current != nil {
					_ = current.Close()
				}
			})
			fn(t, open)
		})
	}
}

func character(name string, episodes ...string) domain.Character {
	return domain.Character{
		Name:     name,
		Status:   "Alive",
		Species:  "Human",
		Gender:   "Male",
		Origin:   "Earth (C-137)",
		Location: "Citadel of Ricks",
		ImageURL: "https://rickandmortyapi.com/api/character/avatar/1.jpeg",
		Episodes: episodes,
	}
}

func names(records []domain.CharacterRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.GetTitle()
	}
	return out
}

func TestStore_EmptyOnOpen(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()

		records, err := s.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, records)

		_, ok, err := s.ReadCursor()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_PagesAccumulateInFetchOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()

		require.NoError(t, s.AppendPage(
			[]domain.Character{character("Rick Sanchez"), character("Morty Smith")},
			domain.Cursor{Next: "https://rickandmortyapi.com/api/character?page=2"},
		))
		require.NoError(t, s.AppendPage(
			[]domain.Character{character("Summer Smith")},
			domain.Cursor{Next: ""},
		))

		records, err := s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Rick Sanchez", "Morty Smith", "Summer Smith"}, names(records))

		ids := make(map[string]bool)
		for _, r := range records {
			assert.NotEmpty(t, r.ID)
			assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
			ids[r.ID] = true
		}

		cursor, ok, err := s.ReadCursor()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, cursor.HasMore())
	})
}

func TestStore_EpisodesRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()

		eps := []string{
			"https://rickandmortyapi.com/api/episode/1",
			"https://rickandmortyapi.com/api/episode/2",
			"https://rickandmortyapi.com/api/episode/3",
		}
		require.NoError(t, s.Upsert([]domain.Character{character("Rick Sanchez", eps...), character("Jerry Smith")}))

		records, err := s.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, eps, records[0].EpisodeURLs())
		assert.Empty(t, records[1].Episodes)

		got, err := s.Get(records[0].ID)
		require.NoError(t, err)
		assert.Equal(t, eps, got.EpisodeURLs())
		assert.Equal(t, "Earth (C-137)", got.Origin)
		assert.Equal(t, "Citadel of Ricks", got.Location)
		assert.False(t, got.FetchedAt.IsZero())
	})
}

func TestStore_RenameAndDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()
		require.NoError(t, s.Upsert([]domain.Character{character("Rick Sanchez"), character("Morty Smith")}))

		records, err := s.ReadAll()
		require.NoError(t, err)
		rick, morty := records[0], records[1]

		require.NoError(t, s.Rename(rick.ID, "Pickle Rick"))
		got, err := s.Get(rick.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pickle Rick", got.DisplayName)
		assert.Equal(t, "Rick Sanchez", got.Name)

		require.NoError(t, s.Delete(morty.ID))
		records, err = s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Pickle Rick"}, names(records))
	})
}

func TestStore_UnknownID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()

		_, err := s.Get("missing")
		assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
		assert.ErrorIs(t, err, domain.ErrStorage)

		err = s.Rename("missing", "x")
		assert.ErrorIs(t, err, domain.ErrCharacterNotFound)

		err = s.Delete("missing")
		assert.ErrorIs(t, err, domain.ErrCharacterNotFound)

		var se *domain.StorageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "delete", se.Op)
	})
}

func TestStore_ClearRemovesRecordsAndCursor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()
		require.NoError(t, s.AppendPage([]domain.Character{character("Rick Sanchez", "https://rickandmortyapi.com/api/episode/1")},
			domain.Cursor{Next: "https://rickandmortyapi.com/api/character?page=2"}))

		require.NoError(t, s.Clear())

		records, err := s.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, records)

		_, ok, err := s.ReadCursor()
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Upsert([]domain.Character{character("Beth Smith")}))
		records, err = s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Beth Smith"}, names(records))
	})
}

func TestStore_SurvivesReopen(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func() domain.Store) {
		s := open()
		updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, s.AppendPage(
			[]domain.Character{character("Rick Sanchez"), character("Morty Smith")},
			domain.Cursor{Next: "https://rickandmortyapi.com/api/character?page=2", UpdatedAt: updated},
		))
		records, err := s.ReadAll()
		require.NoError(t, err)
		require.NoError(t, s.Rename(records[1].ID, "Mortimer"))

		s = open()

		records, err = s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Rick Sanchez", "Mortimer"}, names(records))

		cursor, ok, err := s.ReadCursor()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "https://rickandmortyapi.com/api/character?page=2", cursor.Next)
		assert.True(t, cursor.UpdatedAt.Equal(updated))
	})
}

func TestBoltStore_ReadAllCacheInvalidatedByWrites(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "rickdex.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert([]domain.Character{character("Rick Sanchez")}))

	first, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutating the returned slice must not leak into the cache
	first[0].DisplayName = "tampered"

	again, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Rick Sanchez", again[0].DisplayName)

	require.NoError(t, s.Upsert([]domain.Character{character("Morty Smith")}))
	after, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Rick Sanchez", "Morty Smith"}, names(after))
}

func TestOpen_SelectsDriver(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StoreConfig{Driver: config.StoreDriverSQLite, Path: filepath.Join(dir, "a.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(config.StoreConfig{Driver: config.StoreDriverBolt, Path: filepath.Join(dir, "b.db")})
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StoreConfig{Driver: "postgres", Path: filepath.Join(dir, "c.db")})
	assert.Error(t, err)
}

func TestSQLiteStore_PragmasApplyToEveryConnection(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rickdex.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	// Every statement below runs on a freshly opened connection
	s.db.SetMaxIdleConns(0)

	var fk int
	require.NoError(t, s.db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	require.NoError(t, s.Upsert([]domain.Character{character("Rick Sanchez",
		"https://rickandmortyapi.com/api/episode/1", "https://rickandmortyapi.com/api/episode/2")}))
	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, s.Delete(records[0].ID))

	var orphans int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM episodes`).Scan(&orphans))
	assert.Zero(t, orphans)
}
