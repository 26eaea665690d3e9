package main

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/rickdex/internal/config"
	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/library"
	"github.com/mmcdole/rickdex/internal/log"
	"github.com/mmcdole/rickdex/internal/source"
	"github.com/mmcdole/rickdex/internal/store"
	"github.com/mmcdole/rickdex/internal/viewer"
)

// app holds the wired services shared by every command
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    domain.Store
	client   *source.Client
	ctrl     *library.Controller
	queries  *library.Queries
	enricher *library.Enricher
	viewer   *viewer.Viewer
}

// newApp loads configuration and wires the services. observer may be nil.
func newApp(configFile string, observer domain.SnapshotObserver) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting rickdex", "version", Version, "store", cfg.Store.Driver)

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client := source.NewClient(cfg.API.BaseURL, logger,
		source.WithTimeout(cfg.API.Timeout),
		source.WithUserAgent(cfg.API.UserAgent),
	)

	opts := []library.Option{library.WithPrefetchThreshold(cfg.UI.PrefetchThreshold)}
	if observer != nil {
		opts = append(opts, library.WithObserver(observer))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   client,
		ctrl:     library.NewController(client, st, client.FirstPageURL(), logger, opts...),
		queries:  library.NewQueries(st),
		enricher: library.NewEnricher(client, cfg.Enricher.Concurrency, logger),
		viewer:   viewer.NewViewer(cfg.Viewer.Command, cfg.Viewer.Args, logger),
	}, nil
}

// Close releases the store
func (a *app) Close() error {
	a.logger.Info("shutting down")
	return a.store.Close()
}
