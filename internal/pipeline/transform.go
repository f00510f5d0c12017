package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/couchcryptid/storm-track-verification/internal/observability"
)

// TrackVerifier implements Transformer: it verifies one request per message
// and optionally names the place nearest each observed position.
type TrackVerifier struct {
	geocoder domain.Geocoder
	maxGap   time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewVerifier creates a TrackVerifier. Pass a nil geocoder to disable
// geocoding enrichment.
func NewVerifier(geocoder domain.Geocoder, maxGap time.Duration, logger *slog.Logger, metrics *observability.Metrics) *TrackVerifier {
	return &TrackVerifier{
		geocoder: geocoder,
		maxGap:   maxGap,
		logger:   logger,
		metrics:  metrics,
	}
}

// Verify runs verification and enrichment for a decoded request.
func (v *TrackVerifier) Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error) {
	result, err := domain.Verify(req, v.maxGap)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	v.metrics.PointsVerified.Add(float64(len(result.Points)))
	v.metrics.PointsSkipped.Add(float64(result.Skipped))
	for _, p := range result.Points {
		v.metrics.PositionError.Observe(p.DirectNM)
	}

	if result.Skipped > 0 {
		v.logger.Debug("forecast fixes skipped",
			"storm_id", result.StormID,
			"forecast_id", result.ForecastID,
			"skipped", result.Skipped,
		)
	}

	return domain.EnrichWithGeocoding(ctx, result, v.geocoder, v.logger), nil
}

func (v *TrackVerifier) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result, err := v.Verify(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	return domain.SerializeResult(result)
}
