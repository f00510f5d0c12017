package domain

import (
	"context"
	"time"
)

// VerificationRequest is the JSON payload on the source topic: the observed
// track of one storm and one forecast of that storm.
type VerificationRequest struct {
	StormID    string           `json:"storm_id"`
	ForecastID string           `json:"forecast_id"`
	Observed   []RawObservation `json:"observed"`
	Forecast   []RawObservation `json:"forecast"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// PointError compares one forecast fix with the observed track interpolated
// to the forecast's valid time. Distances are in nautical miles; intensity
// errors are forecast minus observed and are omitted when either side is
// unknown.
type PointError struct {
	ValidTime time.Time `json:"valid_time"`
	Observed  *Fix      `json:"observed"`
	Forecast  *Fix      `json:"forecast"`

	AlongTrackNM  float64 `json:"along_track_nm"`
	AcrossTrackNM float64 `json:"across_track_nm"`
	DirectNM      float64 `json:"direct_nm"`
	DirectKM      float64 `json:"direct_km"`
	// Great-circle errors; cross-track is positive left of track.
	GreatCircleATENM float64 `json:"great_circle_ate_nm"`
	GreatCircleCTENM float64 `json:"great_circle_cte_nm"`

	PressureError *float64 `json:"pressure_error,omitempty"`
	MeanWindError *float64 `json:"mean_wind_error,omitempty"`
	CategoryError *int     `json:"category_error,omitempty"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"
}

// VerificationResult is the domain-rich representation after verification.
type VerificationResult struct {
	ID          string       `json:"id"`
	StormID     string       `json:"storm_id"`
	ForecastID  string       `json:"forecast_id"`
	Points      []PointError `json:"points"`
	Skipped     int          `json:"skipped"`
	ProcessedAt time.Time    `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
