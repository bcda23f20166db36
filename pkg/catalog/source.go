// Package catalog loads region records from the supported stores and builds
// the immutable catalog and term index from them.
//
// Supported sources are a tab-separated text file, a msgpack snapshot, a
// bbolt database and a Postgres table. Text files are for hand-maintained
// lists; snapshots and bbolt stores are produced by `addrctl catalog import`.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/bastiangx/addrserve/internal/logger"
	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/bastiangx/addrserve/pkg/index"
	"github.com/bastiangx/addrserve/pkg/region"
)

var (
	ErrUnknownFormat = errors.New("unknown catalog format")
	ErrEmptySource   = errors.New("catalog source has no records")
	ErrNoSource      = errors.New("no catalog source configured")
)

var catalogLog = logger.New("catalog")

// Source yields the flat region records of a catalog.
type Source interface {
	Load(ctx context.Context) ([]region.Record, error)
}

// OpenFile returns the source for a catalog file, detected by extension.
func OpenFile(path string) (Source, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatTSV:
		return &TSVSource{Path: path}, nil
	case FormatSnapshot:
		return &SnapshotSource{Path: path}, nil
	case FormatBolt:
		return &BoltSource{Path: path}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Build loads src and builds the catalog and its index. Every failure wraps
// index.ErrCatalogNotInitialized so callers can treat it as fatal.
func Build(ctx context.Context, src Source, stopWords []string) (*region.Catalog, *index.TermIndex, error) {
	if src == nil {
		return nil, nil, fmt.Errorf("%w: %w", index.ErrCatalogNotInitialized, ErrNoSource)
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", index.ErrCatalogNotInitialized, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %w", index.ErrCatalogNotInitialized, ErrEmptySource)
	}

	cat, err := region.NewCatalog(records)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", index.ErrCatalogNotInitialized, err)
	}
	idx, err := index.Build(cat, stopWords)
	if err != nil {
		return nil, nil, err
	}
	stats := idx.Stats()
	catalogLog.Infof("Catalog ready: %d regions, %d terms", cat.Len(), stats.Terms)
	return cat, idx, nil
}

// Open builds the catalog described by cfg. File paths are resolved against
// the working directory, the binary and the config directory.
func Open(ctx context.Context, cfg config.CatalogConfig, stopWords []string) (*region.Catalog, *index.TermIndex, error) {
	src, closeFn, err := sourceFor(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", index.ErrCatalogNotInitialized, err)
	}
	defer closeFn()
	return Build(ctx, src, stopWords)
}

func sourceFor(ctx context.Context, cfg config.CatalogConfig) (Source, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case config.SourcePostgres:
		if cfg.DSN == "" {
			return nil, noop, fmt.Errorf("%w: postgres source without dsn", ErrNoSource)
		}
		db, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return &PostgresSource{DB: db, Table: cfg.Table}, func() { db.Close() }, nil
	case config.SourceFile, "":
		if cfg.Path == "" {
			return nil, noop, ErrNoSource
		}
		path := cfg.Path
		if pr, err := utils.NewPathResolver(); err == nil {
			path = pr.ResolveCatalog(path)
		}
		src, err := OpenFile(path)
		return src, noop, err
	}
	return nil, noop, fmt.Errorf("%w: source %q", ErrUnknownFormat, cfg.Source)
}
