package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wgamage/actextract/internal/common"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	document   TEXT NOT NULL,
	stem       TEXT NOT NULL,
	payload    BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (document, stem)
);`

// PostgresConfig tunes the checkpoint connection pool.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresStore keeps checkpoints in a shared database, so several
// hosts can resume the same corpus without sharing a filesystem.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresStore connects a pgx pool, verifies it with a ping, and
// ensures the checkpoints table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "actextract"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, log: logger}, nil
}

func (s *PostgresStore) Has(ctx context.Context, id ChunkID) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM checkpoints WHERE document = $1 AND stem = $2`,
		id.Document, id.Stem,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("query checkpoint: %w", err)
}

func (s *PostgresStore) Put(ctx context.Context, id ChunkID, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checkpoints (document, stem, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (document, stem) DO UPDATE SET payload = EXCLUDED.payload, created_at = now()`,
		id.Document, id.Stem, payload,
	)
	if err != nil {
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	s.log.Info("checkpoint written", "chunk", id.String(), "bytes", len(payload))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id ChunkID) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM checkpoints WHERE document = $1 AND stem = $2`,
		id.Document, id.Stem,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return payload, nil
}

func (s *PostgresStore) List(ctx context.Context, document string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT stem FROM checkpoints WHERE document = $1 ORDER BY stem`,
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

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
