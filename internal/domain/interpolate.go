package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/geomath"
)

// InterpolateFix returns a new fix that is a linear blend of f and other.
// An amount of 0 reproduces f, an amount of 1 reproduces other.
//
// An attribute missing from either fix is missing from the result.
// Longitudes blend along the shorter way round the globe and the
// along-track vector along the shorter arc.
func (f *Fix) InterpolateFix(other *Fix, amount float64) (*Fix, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: interpolating towards a nil fix", ErrInvalidArgument)
	}
	if amount < 0 || amount > 1 || math.IsNaN(amount) {
		return nil, fmt.Errorf("%w: interpolation amount %v outside [0, 1]", ErrInvalidArgument, amount)
	}

	return &Fix{
		time:             interpolateTime(f.time, other.time, amount),
		latitude:         interpolateFloat(f.latitude, other.latitude, amount),
		longitude:        interpolateLongitude(f.longitude, other.longitude, amount),
		category:         interpolateFloat(f.category, other.category, amount),
		pressureCentral:  interpolateFloat(f.pressureCentral, other.pressureCentral, amount),
		windSpd:          interpolateFloat(f.windSpd, other.windSpd, amount),
		windGust:         interpolateFloat(f.windGust, other.windGust, amount),
		alongTrackVector: InterpolateAngle(f.alongTrackVector, other.alongTrackVector, amount),
	}, nil
}

// interpolateTime blends the offset between start and end, truncating to
// whole nanoseconds. Offsets beyond 2^53ns (about 104 days) lose precision.
func interpolateTime(start, end *time.Time, amount float64) *time.Time {
	if start == nil || end == nil {
		return nil
	}
	offset := time.Duration(amount * float64(end.Sub(*start)))
	t := start.Add(offset)
	return &t
}

// interpolateFloat blends linearly. The two-term form returns the end points
// exactly at amounts 0 and 1.
func interpolateFloat(start, end *float64, amount float64) *float64 {
	if start == nil || end == nil {
		return nil
	}
	a, b := *start, *end
	v := (1-amount)*a + amount*b
	return &v
}

func interpolateLongitude(start, end *float64, amount float64) *float64 {
	if start == nil || end == nil {
		return nil
	}
	diff := geomath.LongitudeDifference(*start, *end)
	v := geomath.Range180(*start + amount*diff)
	return &v
}

// InterpolateAngle blends two directions in radians along the shorter of the
// two arcs between them. When the arcs are equal (a half turn) the positive
// arc is taken. The result lies in [0, 2π); nil if either input is nil.
func InterpolateAngle(start, end *float64, amount float64) *float64 {
	if start == nil || end == nil {
		return nil
	}

	between := geomath.NormalizeAngle(geomath.NormalizeAngle(*end) - geomath.NormalizeAngle(*start))
	if alt := between - 2*math.Pi; math.Abs(alt) < math.Abs(between) {
		between = alt
	}

	v := geomath.NormalizeAngle(*start + amount*between)
	return &v
}
