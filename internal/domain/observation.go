package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawObservation is a track point as published by the upstream best-track
// collector. Numeric fields are null when the agency did not report them.
type RawObservation struct {
	Time            string   `json:"time"` // RFC 3339
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	PressureCentral *float64 `json:"pressure_central"`
	WindSpd         *float64 `json:"wind_spd"`
	WindGust        *float64 `json:"wind_gust"`
	Category        *float64 `json:"category"`
}

// FixFromObservation converts a raw observation field by field. Raw
// observations have no direction of travel, so the along-track vector is left
// unset. An empty time string gives a fix with no time.
func FixFromObservation(obs RawObservation) (*Fix, error) {
	var t *time.Time
	if s := strings.TrimSpace(obs.Time); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("parse observation time %q: %w", obs.Time, err)
		}
		t = &parsed
	}

	return NewFix(t,
		obs.Latitude,
		obs.Longitude,
		obs.PressureCentral,
		obs.WindSpd,
		obs.WindGust,
		obs.Category,
	), nil
}

// ObservationFromFix is the inverse of FixFromObservation; the along-track
// vector is dropped.
func ObservationFromFix(f *Fix) RawObservation {
	obs := RawObservation{
		Latitude:        f.Latitude(),
		Longitude:       f.Longitude(),
		PressureCentral: f.Pressure(),
		WindSpd:         f.MeanWind(),
		WindGust:        f.WindGust(),
		Category:        f.RawCategory(),
	}
	if t := f.Time(); t != nil {
		obs.Time = t.UTC().Format(time.RFC3339)
	}
	return obs
}
