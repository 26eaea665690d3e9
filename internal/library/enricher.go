package library

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/rickdex/internal/domain"
)

const defaultEnrichConcurrency = 8

// EpisodeFetcher fetches the detail of one episode.
type EpisodeFetcher interface {
	FetchEpisode(ctx context.Context, episodeURL string) (domain.Episode, error)
}

// EpisodeSummary collects the episodes that resolved for one character.
// Episodes are in completion order.
type EpisodeSummary struct {
	Episodes []domain.Episode
	Failed   int
}

// Enricher resolves a record's episode URLs concurrently.
type Enricher struct {
	repo        EpisodeFetcher
	concurrency int
	logger      *slog.Logger
}

// NewEnricher creates an enricher running at most concurrency fetches at once.
func NewEnricher(repo EpisodeFetcher, concurrency int, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &Enricher{repo: repo, concurrency: concurrency, logger: logger}
}

// Summarize fetches every episode of rec. A failed episode is logged and left
// out; only context cancellation fails the whole call.
func (e *Enricher) Summarize(ctx context.Context, rec domain.CharacterRecord) (EpisodeSummary, error) {
	urls := rec.EpisodeURLs()
	summary := EpisodeSummary{Episodes: make([]domain.Episode, 0, len(urls))}
	if len(urls) == 0 {
		return summary, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.concurrency)

	for _, u := range urls {
		g.Go(func() error {
			ep, err := e.repo.FetchEpisode(ctx, u)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("failed to fetch episode", "error", err, "url", u, "character", rec.ID)
				summary.Failed++
				return nil
			}
			summary.Episodes = append(summary.Episodes, ep)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return EpisodeSummary{}, err
	}
	e.logger.Debug("summarized episodes", "character", rec.ID, "ok", len(summary.Episodes), "failed", summary.Failed)
	return summary, nil
}

// Describe renders the character detail text with its resolved episodes.
func (e *Enricher) Describe(ctx context.Context, rec domain.CharacterRecord) (string, error) {
	summary, err := e.Summarize(ctx, rec)
	if err != nil {
		return "", err
	}
	return FormatDescription(rec, summary), nil
}

// FormatDescription renders rec and summary. Episodes are listed by code.
func FormatDescription(rec domain.CharacterRecord, summary EpisodeSummary) string {
	episodes := make([]domain.Episode, len(summary.Episodes))
	copy(episodes, summary.Episodes)
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].Code < episodes[j].Code
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n\n", rec.Status)
	fmt.Fprintf(&b, "Origin: %s\n", rec.Origin)
	fmt.Fprintf(&b, "Location: %s\n\n", rec.Location)
	b.WriteString("Episodes:\n")
	for _, ep := range episodes {
		fmt.Fprintf(&b, "%s: %s\n", ep.Code, ep.Name)
	}
	return b.String()
}
