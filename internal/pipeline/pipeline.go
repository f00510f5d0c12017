package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/couchcryptid/storm-track-verification/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one raw verification request into a serialized result.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-verify-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// verification result.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any results yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled. Extract and
// load failures are retried with exponential backoff; messages that cannot
// be verified are logged, counted and committed.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := backoff{current: initialBackoff}
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if !p.processBatch(ctx, &b) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// processBatch runs one extract-verify-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, b *backoff) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return b.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	b.reset()

	outBatch, verified := p.verifyAll(ctx, rawBatch)
	if len(outBatch) == 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		return true
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch))
		return b.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(outBatch)))

	for _, raw := range verified {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// verifyAll transforms each message of the batch. Poison messages are
// committed immediately so they cannot block the partition; the rest are
// returned with their source messages for commit after a successful load.
func (p *Pipeline) verifyAll(ctx context.Context, rawBatch []domain.RawEvent) ([]domain.OutputEvent, []domain.RawEvent) {
	out := make([]domain.OutputEvent, 0, len(rawBatch))
	verified := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("verification failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.VerificationErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		out = append(out, event)
		verified = append(verified, raw)
	}
	return out, verified
}

// commit commits the message offset if a commit function is available.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff doubles the retry delay after every failure, up to maxBackoff.
type backoff struct {
	current time.Duration
}

func (b *backoff) reset() {
	b.current = initialBackoff
}

// wait sleeps for the current delay and advances it. Returns false if the
// context was cancelled first.
func (b *backoff) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, b.current) {
		return false
	}
	b.advance()
	return true
}

func (b *backoff) advance() {
	b.current = retry.NextBackoff(b.current, maxBackoff)
}
