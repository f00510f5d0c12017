package domain

import (
	"fmt"
	"math"

	"github.com/couchcryptid/storm-track-verification/internal/geomath"
)

// AngleToFix returns the direction in radians of a line from f to other,
// 0 = east, increasing counter-clockwise.
//
// Only angles below the x axis are shifted by 2π, so a fix due west gives
// exactly π and the result never reaches 2π.
func (f *Fix) AngleToFix(other *Fix) (float64, error) {
	if other == nil || !f.hasPosition() || !other.hasPosition() {
		return 0, fmt.Errorf("%w: bearing needs both fixes positioned", ErrPreconditionViolation)
	}

	dx := geomath.LongitudeDifference(*f.longitude, *other.longitude)
	dy := *other.latitude - *f.latitude
	angle := math.Atan2(dy, dx)
	if dy < 0 {
		angle += 2 * math.Pi
	}
	return angle, nil
}

// DisplacedBy returns a copy of f moved by lon and lat degrees. The new
// longitude is mapped into [-180, 180]; latitude is not clamped. Missing
// coordinates stay missing.
func (f *Fix) DisplacedBy(lon, lat float64) *Fix {
	displaced := f.Clone()
	if f.longitude != nil {
		displaced.SetLongitude(Float(geomath.Range180(*f.longitude + lon)))
	}
	if f.latitude != nil {
		displaced.SetLatitude(Float(*f.latitude + lat))
	}
	return displaced
}

// AlongTrackDistanceTo returns how far other lies along f's direction of
// travel, in nautical miles, ignoring any across-track component.
func (f *Fix) AlongTrackDistanceTo(other *Fix) (float64, error) {
	if f.alongTrackVector == nil {
		return 0, fmt.Errorf("%w: along-track distance from a fix with no along-track vector", ErrPreconditionViolation)
	}
	return f.projectOnto(other, *f.alongTrackVector)
}

// AcrossTrackDistanceTo returns how far other lies across f's direction of
// travel, in nautical miles. The across-track axis points 90° clockwise from
// the along-track vector: for a storm heading north, east is positive.
func (f *Fix) AcrossTrackDistanceTo(other *Fix) (float64, error) {
	if f.alongTrackVector == nil {
		return 0, fmt.Errorf("%w: across-track distance from a fix with no along-track vector", ErrPreconditionViolation)
	}
	return f.projectOnto(other, *f.alongTrackVector-math.Pi/2)
}

// projectOnto returns the component of the displacement from f to other
// along the direction theta.
func (f *Fix) projectOnto(other *Fix, theta float64) (float64, error) {
	if other == nil || !f.hasPosition() || !other.hasPosition() {
		return 0, fmt.Errorf("%w: track distance needs both fixes positioned", ErrPreconditionViolation)
	}

	lonNM := geomath.LonDistanceNauticalMiles(*f.longitude, *f.latitude, *other.longitude, *other.latitude)
	latNM := geomath.LatDistanceNauticalMiles(*f.latitude, *other.latitude)

	return lonNM*math.Cos(theta) + latNM*math.Sin(theta), nil
}
