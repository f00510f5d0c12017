package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/couchcryptid/storm-track-verification/internal/observability"
	"github.com/couchcryptid/storm-track-verification/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

// mockExtractor returns one queued batch (or error) per call, then blocks
// until the context is cancelled.
type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.RawEvent
	errs    []error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	m.mu.Lock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		m.mu.Unlock()
		return nil, err
	}
	if len(m.batches) > 0 {
		batch := m.batches[0]
		m.batches = m.batches[1:]
		m.mu.Unlock()
		return batch, nil
	}
	m.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.failKeys[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad data")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// committed records which offsets were committed.
type committed struct {
	mu      sync.Mutex
	offsets []int64
}

func (c *committed) track(raw domain.RawEvent) domain.RawEvent {
	raw.Commit = func(_ context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.offsets = append(c.offsets, raw.Offset)
		return nil
	}
	return raw
}

func (c *committed) list() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.offsets...)
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var c committed
	batch := []domain.RawEvent{
		c.track(makeRawEvent(t, "AU202324-07", 1)),
		c.track(makeRawEvent(t, "AU202324-08", 2)),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)

	require.Error(t, p.CheckReadiness(context.Background()))

	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, uint64(1), batchDurationSamples(t, metrics))
	assert.Equal(t, batch[0].Value, ldr.loaded[0].Value)
	assert.Equal(t, []int64{1, 2}, c.list())
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesConsumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesProduced))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_PoisonMessageIsCommittedAndSkipped(t *testing.T) {
	var c committed
	batch := []domain.RawEvent{
		c.track(makeRawEvent(t, "poison", 7)),
		c.track(makeRawEvent(t, "AU202324-07", 8)),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{failKeys: map[string]bool{"poison": true}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, []byte("AU202324-07"), ldr.loaded[0].Key)
	assert.Equal(t, []int64{7, 8}, c.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.VerificationErrors))
}

func TestPipeline_Run_AllInvalidIsNotReady(t *testing.T) {
	var c committed
	ext := &mockExtractor{batches: [][]domain.RawEvent{{c.track(makeRawEvent(t, "poison", 3))}}}
	tfm := &mockTransformer{failKeys: map[string]bool{"poison": true}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.Equal(t, []int64{3}, c.list())
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, uint64(1), batchDurationSamples(t, metrics), "an all-poison batch is still timed")
}

func batchDurationSamples(t *testing.T, metrics *observability.Metrics) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.BatchProcessingDuration.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	var c committed
	ext := &mockExtractor{batches: [][]domain.RawEvent{{c.track(makeRawEvent(t, "AU202324-07", 1))}}}
	ldr := &mockLoader{err: errors.New("broker unavailable")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	runFor(t, p, 100*time.Millisecond)

	assert.Empty(t, c.list())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RetriesAfterExtractError(t *testing.T) {
	ext := &mockExtractor{
		errs:    []error{errors.New("leader not available")},
		batches: [][]domain.RawEvent{{makeRawEvent(t, "AU202324-07", 1)}},
	}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	// First retry waits 200ms.
	runFor(t, p, time.Second)

	assert.Len(t, ldr.loaded, 1)
}

func TestTrackVerifier_Transform(t *testing.T) {
	fixed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	metrics := newTestMetrics()
	tfm := pipeline.NewVerifier(nil, 12*time.Hour, slog.Default(), metrics)

	out, err := tfm.Transform(context.Background(), makeRawEvent(t, "AU202324-07", 0))
	require.NoError(t, err)
	assert.Equal(t, "AU202324-07", out.Headers["storm_id"])
	assert.Equal(t, "2024-01-15T00:00:00Z", out.Headers["processed_at"])

	var result domain.VerificationResult
	require.NoError(t, json.Unmarshal(out.Value, &result))

	type pointSummary struct {
		Along, Across float64
		PressureError float64
	}
	var got []pointSummary
	for _, p := range result.Points {
		got = append(got, pointSummary{Along: p.AlongTrackNM, Across: p.AcrossTrackNM, PressureError: *p.PressureError})
	}
	want := []pointSummary{
		{Along: 0, Across: -30, PressureError: 5},
		{Along: 15, Across: 0, PressureError: -5},
	}

	approx := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("point errors mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PointsVerified))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PointsSkipped))
}

func TestTrackVerifier_Transform_Invalid(t *testing.T) {
	tfm := pipeline.NewVerifier(nil, 0, slog.Default(), newTestMetrics())

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"storm_id":"AU202324-07","observed":[]}`)})
	assert.ErrorIs(t, err, domain.ErrInsufficientTrack)
}

// --- helpers ---

var trackStart = time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)

// makeRawEvent builds a request for a storm moving due east along the
// equator at ten knots, with two verifiable forecasts and one beyond the
// observed track.
func makeRawEvent(t *testing.T, stormID string, offset int64) domain.RawEvent {
	t.Helper()

	obs := func(h int, lat, lon, pressure float64) domain.RawObservation {
		return domain.RawObservation{
			Time:            trackStart.Add(time.Duration(h) * time.Hour).Format(time.RFC3339),
			Latitude:        domain.Float(lat),
			Longitude:       domain.Float(lon),
			PressureCentral: domain.Float(pressure),
		}
	}

	data, err := json.Marshal(domain.VerificationRequest{
		StormID:    stormID,
		ForecastID: "fc-" + stormID,
		Observed:   []domain.RawObservation{obs(0, 0, 0, 990), obs(12, 0, 2, 970)},
		Forecast:   []domain.RawObservation{obs(6, 0.5, 1, 985), obs(9, 0, 1.75, 970), obs(18, 0, 3, 960)},
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:    []byte(stormID),
		Value:  data,
		Offset: offset,
	}
}
