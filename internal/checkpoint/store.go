package checkpoint

import (
	"context"
	"log/slog"

	"github.com/wgamage/actextract/internal/common"
)

// ChunkID identifies one chunk result. It is a pure function of the
// document name and the chunk file's stem, so it is stable across runs:
// resuming skips exactly the chunks already completed.
type ChunkID struct {
	Document string
	Stem     string
}

func (id ChunkID) String() string {
	return id.Document + "/" + id.Stem
}

// Store persists per-chunk extraction results. Put must be atomic from
// the caller's point of view: a crash never leaves a half-written
// record observable as present. Get returns common.ErrNotFound for a
// chunk with no result.
type Store interface {
	Has(ctx context.Context, id ChunkID) (bool, error)
	Put(ctx context.Context, id ChunkID, payload []byte) error
	Get(ctx context.Context, id ChunkID) ([]byte, error)
	// List returns the stems with results for a document, sorted
	// lexicographically. Assembly uses it to find what actually
	// succeeded, independent of the original enumeration.
	List(ctx context.Context, document string) ([]string, error)
	Close() error
}

// Open builds the store named by cfg.Backend. ext (with dot) is the
// checkpoint file extension used by the dir backend.
func Open(ctx context.Context, cfg common.CheckpointConfig, ext string, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case common.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	case common.BackendPostgres:
		return NewPostgresStore(ctx, PostgresConfig{DSN: cfg.DatabaseURL}, logger)
	default:
		return NewDirStore(cfg.Dir, ext, logger), nil
	}
}
