package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding names the place nearest each verified observed
// position. If geocoder is nil the result is returned untouched; lookup
// failures mark the point and move on (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, result VerificationResult, geocoder Geocoder, logger *slog.Logger) VerificationResult {
	if geocoder == nil {
		return result
	}

	for i := range result.Points {
		p := &result.Points[i]
		if p.Observed == nil || !p.Observed.hasPosition() {
			p.GeoSource = "original"
			continue
		}

		lat, lon := *p.Observed.latitude, *p.Observed.longitude
		geo, err := geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"result_id", result.ID,
				"lat", lat,
				"lon", lon,
				"error", err,
			)
			p.GeoSource = "failed"
			continue
		}
		if geo.FormattedAddress == "" {
			// Open ocean usually has no named place.
			p.GeoSource = "original"
			continue
		}

		p.FormattedAddress = geo.FormattedAddress
		p.PlaceName = geo.PlaceName
		p.GeoConfidence = geo.Confidence
		p.GeoSource = "reverse"
	}

	return result
}
