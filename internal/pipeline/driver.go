package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/checkpoint"
	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/ingest"
)

// RunStats aggregates the outcome of one pipeline run.
type RunStats struct {
	Documents       int
	DocsSkipped     int
	DocsAssembled   int
	DocsEmpty       int
	DocsFailed      int
	ChunksExtracted int
	ChunksSkipped   int
	ChunksFailed    int
}

// DocumentResult is the outcome of processing a single document.
type DocumentResult struct {
	Status          constants.DocumentStatus
	ChunksExtracted int
	ChunksSkipped   int
	ChunksFailed    int
}

func (s *RunStats) add(r DocumentResult) {
	s.ChunksExtracted += r.ChunksExtracted
	s.ChunksSkipped += r.ChunksSkipped
	s.ChunksFailed += r.ChunksFailed
	switch r.Status {
	case constants.DocumentSkipped:
		s.DocsSkipped++
	case constants.DocumentAssembled:
		s.DocsAssembled++
	case constants.DocumentEmpty:
		s.DocsEmpty++
	}
}

// Driver walks documents through DISCOVER, PROCESS and ASSEMBLE, one
// chunk at a time. Processing is deliberately sequential: the remote
// service's rate limit is respected purely through the processor's
// fixed pauses on this single execution path, so nothing here may run
// calls in parallel.
type Driver struct {
	processor *Processor
	assembler *Assembler
	store     checkpoint.Store
	outputDir string
	mode      constants.Mode
	log       *slog.Logger
}

func NewDriver(processor *Processor, assembler *Assembler, store checkpoint.Store, outputDir string, mode constants.Mode, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		processor: processor,
		assembler: assembler,
		store:     store,
		outputDir: outputDir,
		mode:      mode,
		log:       logger,
	}
}

// ArtifactPath returns where the final artifact for a document lives.
func (d *Driver) ArtifactPath(document string) string {
	return filepath.Join(d.outputDir, document+d.mode.Ext())
}

// Run processes every document in order. A failed chunk or document is
// logged and counted, never fatal; only context cancellation stops the
// run early.
func (d *Driver) Run(ctx context.Context, docs []ingest.Document) (RunStats, error) {
	runID := uuid.New().String()
	log := d.log.With("run_id", runID)
	start := time.Now()
	stats := RunStats{Documents: len(docs)}

	log.Info("pipeline.run.start", "documents", len(docs), "mode", string(d.mode), "output_dir", d.outputDir)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		res, err := d.ProcessDocument(ctx, doc)
		stats.add(res)
		if err != nil {
			if ctx.Err() != nil {
				return stats, err
			}
			log.Error("pipeline.document.failed", "document", doc.Name, "err", err)
			stats.DocsFailed++
		}
	}

	log.Info("pipeline.run.ok",
		"documents", stats.Documents,
		"docs_assembled", stats.DocsAssembled,
		"docs_skipped", stats.DocsSkipped,
		"docs_empty", stats.DocsEmpty,
		"docs_failed", stats.DocsFailed,
		"chunks_extracted", stats.ChunksExtracted,
		"chunks_skipped", stats.ChunksSkipped,
		"chunks_failed", stats.ChunksFailed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

// ProcessDocument runs the per-document state machine. Two terminal
// shortcuts apply before any remote work: an artifact already on disk
// means the whole document is done from a previous run, and a document
// with no chunks has nothing to do.
func (d *Driver) ProcessDocument(ctx context.Context, doc ingest.Document) (DocumentResult, error) {
	var res DocumentResult
	log := d.log.With("document", doc.Name)

	artifact := d.ArtifactPath(doc.Name)
	if _, err := os.Stat(artifact); err == nil {
		res.Status = constants.DocumentSkipped
		log.Info("pipeline.document.skip", "artifact", artifact)
		return res, nil
	}

	if len(doc.Chunks) == 0 {
		res.Status = constants.DocumentEmpty
		log.Info("pipeline.document.no_chunks")
		return res, nil
	}

	log.Info("pipeline.document.start", "chunks", len(doc.Chunks))
	for _, chunk := range doc.Chunks {
		status, err := d.processor.ProcessChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return res, err
			}
			log.Error("pipeline.chunk.error", "chunk", chunk.Stem, "err", err)
			res.ChunksFailed++
			continue
		}
		switch status {
		case constants.ChunkExtracted:
			res.ChunksExtracted++
		case constants.ChunkSkipped:
			res.ChunksSkipped++
		default:
			res.ChunksFailed++
		}
	}

	status, err := d.AssembleDocument(ctx, doc)
	if err != nil {
		return res, err
	}
	res.Status = status
	return res, nil
}

// AssembleDocument merges whatever checkpoints exist for the document,
// in canonical chunk order, and writes the final artifact. Missing or
// unreadable checkpoints are omitted; when nothing usable remains, no
// artifact is written. Unlike ProcessDocument it never skips on an
// existing artifact, so it can regenerate outputs from checkpoints.
func (d *Driver) AssembleDocument(ctx context.Context, doc ingest.Document) (constants.DocumentStatus, error) {
	start := time.Now()

	payloads := make([]ChunkPayload, 0, len(doc.Chunks))
	for _, chunk := range doc.Chunks {
		payload, err := d.store.Get(ctx, checkpoint.ChunkID{Document: doc.Name, Stem: chunk.Stem})
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			d.log.Warn("assemble.checkpoint.unreadable", "document", doc.Name, "stem", chunk.Stem, "err", err)
			continue
		}
		payloads = append(payloads, ChunkPayload{Stem: chunk.Stem, Payload: payload})
	}

	artifact, err := d.assembler.Assemble(doc.Name, payloads)
	if err != nil {
		return "", err
	}
	if artifact == nil {
		d.log.Info("pipeline.document.empty", "document", doc.Name)
		return constants.DocumentEmpty, nil
	}

	path := d.ArtifactPath(doc.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, artifact, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	d.log.Info("pipeline.document.ok",
		"document", doc.Name,
		"artifact", path,
		"chunks_present", len(payloads),
		"bytes", len(artifact),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return constants.DocumentAssembled, nil
}
