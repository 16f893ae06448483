package app

import (
	"context"
	"fmt"

	"gtdash/adapters/excel"
	"gtdash/adapters/postgres"
	"gtdash/internal"
	"gtdash/internal/chatbot"
	"gtdash/internal/cleaning"
	"gtdash/internal/config"
	"gtdash/internal/dashboard"
	"gtdash/internal/errors"
	"gtdash/internal/snapshot"
	"gtdash/ports"
)

// Runtime owns the long-lived pieces shared by the server and the CLI
type Runtime struct {
	Config   *config.Config
	Logger   *internal.Logger
	Snapshot *snapshot.Provider
	Charts   *dashboard.Service

	closers []func() error
}

// OpenSource builds the incident source selected by DATA_SOURCE. The
// returned closer releases any connection it opened.
func OpenSource(ctx context.Context, cfg *config.Config) (ports.IncidentSourcePort, func() error, error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			appErr := errors.DatabaseError("failed to open incident database")
			appErr.Cause = err
			return nil, nil, appErr
		}
		source, err := postgres.NewIncidentSource(db, cfg.Data.Table)
		if err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "invalid incident table")
		}
		return source, db.Close, nil
	default:
		fileConfig := excel.DefaultExcelConfig()
		if cfg.Data.FilePath != "" {
			fileConfig.FilePath = cfg.Data.FilePath
		}
		fileConfig.Sheet = cfg.Data.Sheet
		return fileConfig.NewReader(), func() error { return nil }, nil
	}
}

// NewRuntime opens the configured source and builds the dataset. Load
// failures are returned so startup can abort.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Runtime, error) {
	source, closer, err := OpenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Snapshot: snapshot.NewProvider(source, cleaning.NewCleaner(cleaning.WithLogger(logger))),
		closers:  []func() error{closer},
	}

	if _, err := rt.Snapshot.Dataset(ctx); err != nil {
		rt.Close()
		return nil, errors.Wrapf(err, "failed to load incidents from %s", source.Describe())
	}

	rt.Charts, err = dashboard.NewService(rt.Snapshot, cfg.Dashboard.CacheSize,
		dashboard.WithSampling(cfg.Dashboard.SampleSize, cfg.Dashboard.SampleSeed),
		dashboard.WithLogger(logger),
	)
	if err != nil {
		rt.Close()
		return nil, errors.Wrap(err, "failed to create chart service")
	}
	return rt, nil
}

// Matcher builds the question matcher over the loaded dataset
func (r *Runtime) Matcher(ctx context.Context) (*chatbot.Matcher, error) {
	ds, err := r.Snapshot.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return chatbot.New(ds), nil
}

// Close releases the source connection, if any
func (r *Runtime) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close source: %w", err)
		}
	}
	r.closers = nil
	return firstErr
}
