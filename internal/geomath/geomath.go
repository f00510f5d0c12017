// Package geomath holds the flat-earth and great-circle helpers used to place
// and compare storm track fixes.
//
// Longitudes are degrees east, latitudes degrees north. Planar distances are
// expressed in nautical miles, one nautical mile being one minute of latitude.
package geomath

import "math"

const (
	// NauticalMilesPerDegree is the length of one degree of latitude.
	NauticalMilesPerDegree = 60.0

	// KilometresPerNauticalMile is the international nautical mile.
	KilometresPerNauticalMile = 1.852

	twoPi = 2 * math.Pi
)

// LongitudeDifference returns the signed shortest angular difference from
// lonA to lonB in degrees, positive eastwards, in the range (-180, 180].
func LongitudeDifference(lonA, lonB float64) float64 {
	d := math.Mod(lonB-lonA, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

// Range180 maps a longitude into [-180, 180]. Values already in range,
// including both end points, are returned unchanged.
func Range180(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// LonDistanceNauticalMiles returns the east-west component of the
// displacement from A to B, scaled by the cosine of the mean latitude.
func LonDistanceNauticalMiles(lonA, latA, lonB, latB float64) float64 {
	meanLat := (latA + latB) / 2
	return LongitudeDifference(lonA, lonB) * NauticalMilesPerDegree * math.Cos(toRadians(meanLat))
}

// LatDistanceNauticalMiles returns the north-south component of the
// displacement from latA to latB.
func LatDistanceNauticalMiles(latA, latB float64) float64 {
	return (latB - latA) * NauticalMilesPerDegree
}

// NormalizeAngle maps an angle in radians into [0, 2π).
func NormalizeAngle(rad float64) float64 {
	n := math.Mod(rad, twoPi)
	if n == 0 {
		return 0
	}
	if n < 0 {
		n += twoPi
	}
	// n+2π can round up to exactly 2π for tiny negative inputs.
	if n >= twoPi {
		n -= twoPi
	}
	return n
}

// NauticalMilesToKilometres converts a distance in nautical miles.
func NauticalMilesToKilometres(nm float64) float64 {
	return nm * KilometresPerNauticalMile
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
