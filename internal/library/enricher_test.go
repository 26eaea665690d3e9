package library

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/log"
)

const episodeBase = "https://rickandmortyapi.com/api/episode/"

type fakeEpisodes struct {
	episodes map[string]domain.Episode
	delay    time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *fakeEpisodes) FetchEpisode(ctx context.Context, u string) (domain.Episode, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.Episode{}, ctx.Err()
		}
	}
	ep, ok := f.episodes[u]
	if !ok {
		return domain.Episode{}, domain.ErrNoData
	}
	return ep, nil
}

func recordWithEpisodes(urls ...string) domain.CharacterRecord {
	c := domain.Character{
		Name:     "Rick Sanchez",
		Status:   "Alive",
		Origin:   "Earth (C-137)",
		Location: "Citadel of Ricks",
		Episodes: urls,
	}
	return domain.NewCharacterRecord("rec-1", c, time.Now())
}

func TestSummarize_OmitsFailedEpisode(t *testing.T) {
	repo := &fakeEpisodes{episodes: map[string]domain.Episode{
		episodeBase + "1": {Name: "Pilot", Code: "S01E01"},
		episodeBase + "3": {Name: "Anatomy Park", Code: "S01E03"},
	}}
	e := NewEnricher(repo, 4, log.NullLogger())

	summary, err := e.Summarize(context.Background(),
		recordWithEpisodes(episodeBase+"1", episodeBase+"2", episodeBase+"3"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.Episode{
		{Name: "Pilot", Code: "S01E01"},
		{Name: "Anatomy Park", Code: "S01E03"},
	}, summary.Episodes)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, int32(3), repo.calls.Load())
}

func TestSummarize_NoEpisodesReturnsImmediately(t *testing.T) {
	repo := &fakeEpisodes{}
	e := NewEnricher(repo, 4, log.NullLogger())

	summary, err := e.Summarize(context.Background(), recordWithEpisodes())
	require.NoError(t, err)
	assert.Empty(t, summary.Episodes)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, repo.calls.Load())
}

func TestSummarize_RespectsConcurrencyLimit(t *testing.T) {
	repo := &fakeEpisodes{episodes: map[string]domain.Episode{}, delay: 20 * time.Millisecond}
	var urls []string
	for i := range 10 {
		u := episodeBase + string(rune('a'+i))
		urls = append(urls, u)
		repo.episodes[u] = domain.Episode{Name: u, Code: u}
	}
	e := NewEnricher(repo, 2, log.NullLogger())

	summary, err := e.Summarize(context.Background(), recordWithEpisodes(urls...))
	require.NoError(t, err)
	assert.Len(t, summary.Episodes, 10)
	assert.LessOrEqual(t, repo.peak.Load(), int32(2))
}

func TestSummarize_CancelledContext(t *testing.T) {
	repo := &fakeEpisodes{
		episodes: map[string]domain.Episode{episodeBase + "1": {Name: "Pilot", Code: "S01E01"}},
		delay:    time.Minute,
	}
	e := NewEnricher(repo, 2, log.NullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = e.Summarize(ctx, recordWithEpisodes(episodeBase+"1", episodeBase+"2"))
	}()
	cancel()
	wg.Wait()

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe(t *testing.T) {
	repo := &fakeEpisodes{episodes: map[string]domain.Episode{
		episodeBase + "2": {Name: "Lawnmower Dog", Code: "S01E02"},
		episodeBase + "1": {Name: "Pilot", Code: "S01E01"},
	}}
	e := NewEnricher(repo, 2, log.NullLogger())

	got, err := e.Describe(context.Background(),
		recordWithEpisodes(episodeBase+"2", episodeBase+"1", episodeBase+"9"))
	require.NoError(t, err)

	want := "Status: Alive\n\n" +
		"Origin: Earth (C-137)\n" +
		"Location: Citadel of Ricks\n\n" +
		"Episodes:\n" +
		"S01E01: Pilot\n" +
		"S01E02: Lawnmower Dog\n"
	assert.Equal(t, want, got)
}
