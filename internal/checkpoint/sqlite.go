package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/wgamage/actextract/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	document   TEXT NOT NULL,
	stem       TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (document, stem)
);`

// SQLiteStore keeps checkpoints in a single local database file. Useful
// when the chunk count is large enough that one file per chunk gets
// unwieldy, while still needing no external service.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// ensures the checkpoints table exists.
func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The driver is in-process; a single connection avoids writer lock
	// contention across the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}

	logger.Info("sqlite checkpoint store ready", "path", path)
	return &SQLiteStore{db: db, log: logger}, nil
}

func (s *SQLiteStore) Has(ctx context.Context, id ChunkID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM checkpoints WHERE document = ? AND stem = ?`,
		id.Document, id.Stem,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("query checkpoint: %w", err)
}

func (s *SQLiteStore) Put(ctx context.Context, id ChunkID, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (document, stem, payload) VALUES (?, ?, ?)
		 ON CONFLICT (document, stem) DO UPDATE SET payload = excluded.payload, created_at = CURRENT_TIMESTAMP`,
		id.Document, id.Stem, payload,
	)
	if err != nil {
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	s.log.Info("checkpoint written", "chunk", id.String(), "bytes", len(payload))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id ChunkID) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM checkpoints WHERE document = ? AND stem = ?`,
		id.Document, id.Stem,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return payload, nil
}

func (s *SQLiteStore) List(ctx context.Context, document string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stem FROM checkpoints WHERE document = ? ORDER BY stem`,
		document,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var stems []string
	for rows.Next() {
		var stem string
		if err := rows.Scan(&stem); err != nil {
			return nil, fmt.Errorf("scan checkpoint row: %w", err)
		}
		stems = append(stems, stem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint rows: %w", err)
	}
	return stems, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
