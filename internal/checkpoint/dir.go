package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wgamage/actextract/internal/common"
)

// DirStore keeps one file per chunk under <dir>/<document>/<stem><ext>.
// This is the default backend and matches the on-disk layout a resumed
// run inherits from earlier runs.
type DirStore struct {
	dir string
	ext string
	log *slog.Logger
}

// NewDirStore builds a directory-backed store. ext (with dot) is the
// checkpoint file extension for the run's mode.
func NewDirStore(dir, ext string, logger *slog.Logger) *DirStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirStore{dir: dir, ext: ext, log: logger}
}

func (s *DirStore) path(id ChunkID) string {
	return filepath.Join(s.dir, id.Document, id.Stem+s.ext)
}

func (s *DirStore) Has(_ context.Context, id ChunkID) (bool, error) {
	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat checkpoint: %w", err)
}

// Put writes to a temp file in the target directory and renames it into
// place, so a partial write is never observable under the final name.
func (s *DirStore) Put(_ context.Context, id ChunkID, payload []byte) error {
	dir := filepath.Join(s.dir, id.Document)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, id.Stem+".tmp-*")
	if err != nil {
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Error("checkpoint put failed", "chunk", id.String(), "err", err)
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	s.log.Info("checkpoint written", "chunk", id.String(), "bytes", len(payload))
	return nil
}

func (s *DirStore) Get(_ context.Context, id ChunkID) ([]byte, error) {
	payload, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return payload, nil
}

func (s *DirStore) List(_ context.Context, document string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, document))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	var stems []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.ext) {
			continue
		}
		stems = append(stems, strings.TrimSuffix(entry.Name(), s.ext))
	}
	return stems, nil
}

func (s *DirStore) Close() error { return nil }
