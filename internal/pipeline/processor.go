package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/checkpoint"
	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/gemini"
	"github.com/wgamage/actextract/internal/ingest"
)

// Extractor turns one chunk file into its extracted payload.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) ([]byte, error)
}

// ProcessorConfig holds the retry and pacing policy for chunk extraction.
type ProcessorConfig struct {
	MaxRetries        int           // attempts per chunk, default 3
	RetryCooldown     time.Duration // pause after a generic failure
	RateLimitCooldown time.Duration // pause after a rate-limit failure
	ProactiveDelay    time.Duration // pause after every successful extraction
}

// Processor drives the extractor for one chunk at a time with bounded
// retries, writing each success into the checkpoint store. Failures are
// contained here: the caller only ever sees a status, never a remote
// error, so one bad chunk cannot take down a document or a run.
type Processor struct {
	extractor Extractor
	store     checkpoint.Store
	validate  func([]byte) error
	cfg       ProcessorConfig
	sleep     func(ctx context.Context, d time.Duration)
	log       *slog.Logger
}

// NewProcessor builds a chunk processor. validate may be nil (text mode
// has no payload schema); a non-nil validator runs before the checkpoint
// write, so an invalid payload counts as a failed attempt and is never
// persisted.
func NewProcessor(extractor Extractor, store checkpoint.Store, validate func([]byte) error, cfg ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Processor{
		extractor: extractor,
		store:     store,
		validate:  validate,
		cfg:       cfg,
		sleep:     sleepCtx,
		log:       logger,
	}
}

// ProcessChunk extracts and checkpoints a single chunk.
//
// A chunk with an existing checkpoint is skipped outright, with no
// remote call and no pause. Otherwise up to MaxRetries attempts are
// made; a rate-limit failure cools down longer than a generic one
// before the next attempt. Every success is followed by the proactive
// pacing pause, charged once per successful call. An exhausted attempt
// budget returns ChunkFailed with a nil error.
func (p *Processor) ProcessChunk(ctx context.Context, chunk ingest.Chunk) (constants.ChunkStatus, error) {
	id := checkpoint.ChunkID{Document: chunk.Document, Stem: chunk.Stem}

	ok, err := p.store.Has(ctx, id)
	if err != nil {
		return constants.ChunkFailed, fmt.Errorf("check checkpoint: %w", err)
	}
	if ok {
		p.log.Info("chunk.skip", "chunk", id.String())
		return constants.ChunkSkipped, nil
	}

	// One request id per chunk, so all retry attempts correlate in logs.
	ctx = common.WithRequestID(ctx, uuid.New().String())

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return constants.ChunkFailed, err
		}

		start := time.Now()
		err := p.attempt(ctx, id, chunk)
		if err == nil {
			p.log.Info("chunk.extract.ok",
				"chunk", id.String(),
				"attempt", attempt,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			p.sleep(ctx, p.cfg.ProactiveDelay)
			return constants.ChunkExtracted, nil
		}

		lastErr = err
		rateLimited := gemini.IsRateLimited(err)
		p.log.Warn("chunk.extract.failed",
			"chunk", id.String(),
			"attempt", attempt,
			"max_retries", p.cfg.MaxRetries,
			"rate_limited", rateLimited,
			"err", err,
		)
		if attempt < p.cfg.MaxRetries {
			if rateLimited {
				p.sleep(ctx, p.cfg.RateLimitCooldown)
			} else {
				p.sleep(ctx, p.cfg.RetryCooldown)
			}
		}
	}

	p.log.Error("chunk.extract.permanent_failure",
		"chunk", id.String(),
		"attempts", p.cfg.MaxRetries,
		"err", lastErr,
	)
	return constants.ChunkFailed, nil
}

// attempt performs one extract-validate-persist cycle. Any error here
// counts against the chunk's attempt budget.
func (p *Processor) attempt(ctx context.Context, id checkpoint.ChunkID, chunk ingest.Chunk) error {
	data, err := os.ReadFile(chunk.Path)
	if err != nil {
		return fmt.Errorf("read chunk: %w", err)
	}

	payload, err := p.extractor.Extract(ctx, chunk.Filename, data)
	if err != nil {
		return err
	}

	if p.validate != nil {
		if err := p.validate(payload); err != nil {
			return fmt.Errorf("payload failed validation: %w", err)
		}
	}

	if err := p.store.Put(ctx, id, payload); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// sleepCtx blocks for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
