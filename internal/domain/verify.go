package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/geomath"
)

// ErrInsufficientTrack is returned when a request has fewer than two usable
// observations, so no direction of travel can be derived.
var ErrInsufficientTrack = errors.New("observed track needs at least two timed, positioned fixes")

// trackReferenceDegrees is how far back along the direction of travel the
// reference point for great-circle errors is placed.
const trackReferenceDegrees = 1.0

// Verify interpolates the observed track to each forecast valid time and
// measures the forecast against it. Observations further apart than maxGap
// are not interpolated across; a maxGap of zero or less disables the check.
func Verify(req VerificationRequest, maxGap time.Duration) (VerificationResult, error) {
	track, err := buildTrack(req.Observed)
	if err != nil {
		return VerificationResult{}, err
	}

	result := VerificationResult{
		ID:         generateID(req.StormID, req.ForecastID),
		StormID:    req.StormID,
		ForecastID: req.ForecastID,
		Points:     make([]PointError, 0, len(req.Forecast)),
	}

	for i, raw := range req.Forecast {
		forecast, err := FixFromObservation(raw)
		if err != nil {
			return VerificationResult{}, fmt.Errorf("forecast fix %d: %w", i, err)
		}
		if forecast.time == nil || !forecast.hasPosition() {
			result.Skipped++
			continue
		}

		observed, ok := interpolateTrack(track, *forecast.time, maxGap)
		if !ok {
			result.Skipped++
			continue
		}

		point, err := measure(observed, forecast)
		if err != nil {
			return VerificationResult{}, fmt.Errorf("forecast fix %d: %w", i, err)
		}
		result.Points = append(result.Points, point)
	}

	result.ProcessedAt = clock.Now()
	return result, nil
}

// buildTrack converts, filters and time-orders the observations, then assigns
// each one the direction towards its successor. The final fix keeps the
// direction of the segment leading into it.
func buildTrack(observed []RawObservation) ([]*Fix, error) {
	track := make([]*Fix, 0, len(observed))
	for i, raw := range observed {
		f, err := FixFromObservation(raw)
		if err != nil {
			return nil, fmt.Errorf("observed fix %d: %w", i, err)
		}
		if f.time == nil || !f.hasPosition() {
			continue
		}
		track = append(track, f)
	}
	if len(track) < 2 {
		return nil, ErrInsufficientTrack
	}

	sort.SliceStable(track, func(i, j int) bool {
		return track[i].time.Before(*track[j].time)
	})

	for i := 0; i < len(track)-1; i++ {
		angle, err := track[i].AngleToFix(track[i+1])
		if err != nil {
			return nil, err
		}
		track[i].SetAlongTrackVector(&angle)
	}
	track[len(track)-1].SetAlongTrackVector(track[len(track)-2].AlongTrackVector())

	return track, nil
}

// interpolateTrack returns the observed fix at t, or false when t falls
// outside the track or inside a gap longer than maxGap.
func interpolateTrack(track []*Fix, t time.Time, maxGap time.Duration) (*Fix, bool) {
	for i := 0; i < len(track)-1; i++ {
		start, end := *track[i].time, *track[i+1].time
		if t.Before(start) || t.After(end) {
			continue
		}

		// A forecast at a shared observation time may still fall in the
		// next segment when this one is too long.
		gap := end.Sub(start)
		if maxGap > 0 && gap > maxGap {
			continue
		}

		amount := 0.0
		if gap > 0 {
			amount = float64(t.Sub(start)) / float64(gap)
		}
		f, err := track[i].InterpolateFix(track[i+1], amount)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func measure(observed, forecast *Fix) (PointError, error) {
	along, err := observed.AlongTrackDistanceTo(forecast)
	if err != nil {
		return PointError{}, err
	}
	across, err := observed.AcrossTrackDistanceTo(forecast)
	if err != nil {
		return PointError{}, err
	}

	vector := *observed.alongTrackVector
	reference := observed.DisplacedBy(-trackReferenceDegrees*math.Cos(vector), -trackReferenceDegrees*math.Sin(vector))
	ate, cte := geomath.AlongCrossTrackErrors(position(reference), position(observed), position(forecast))
	direct := geomath.MetresToNauticalMiles(geomath.GreatCircleDistance(position(observed), position(forecast)))

	point := PointError{
		ValidTime:        *forecast.time,
		Observed:         observed,
		Forecast:         forecast,
		AlongTrackNM:     along,
		AcrossTrackNM:    across,
		DirectNM:         direct,
		DirectKM:         geomath.NauticalMilesToKilometres(direct),
		GreatCircleATENM: ate,
		GreatCircleCTENM: cte,
		PressureError:    difference(forecast.pressureCentral, observed.pressureCentral),
		MeanWindError:    difference(forecast.windSpd, observed.windSpd),
	}

	fc, fcErr := forecast.RoundedCategory()
	ob, obErr := observed.RoundedCategory()
	if fcErr == nil && obErr == nil {
		diff := fc - ob
		point.CategoryError = &diff
	}

	return point, nil
}

func position(f *Fix) geomath.Point {
	return geomath.Point{Lat: *f.latitude, Lon: *f.longitude}
}

func difference(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}
