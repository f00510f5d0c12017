package geomath

import "math"

// EarthRadiusMetres is the sphere radius used for great-circle errors.
const EarthRadiusMetres = 6378137.0

const metresPerNauticalMile = 1852.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// GreatCircleDistance returns the haversine distance between a and b in metres.
func GreatCircleDistance(a, b Point) float64 {
	phi1, phi2 := toRadians(a.Lat), toRadians(b.Lat)
	dPhi := phi2 - phi1
	dLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusMetres * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// InitialBearing returns the forward azimuth from a to b in degrees clockwise
// from north, in (-180, 180].
func InitialBearing(a, b Point) float64 {
	phi1, phi2 := toRadians(a.Lat), toRadians(b.Lat)
	dLambda := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return toDegrees(math.Atan2(y, x))
}

// AlongCrossTrackErrors measures forecast position fc against the observed
// motion from ob0 to ob1, in nautical miles.
//
// The along-track error is positive when fc lies ahead of ob1 in the direction
// of motion. The cross-track error is positive to the left of the track.
func AlongCrossTrackErrors(ob0, ob1, fc Point) (ate, cte float64) {
	t10 := toRadians(InitialBearing(ob1, ob0))
	t13 := toRadians(InitialBearing(ob1, fc))
	d13 := GreatCircleDistance(ob1, fc) / EarthRadiusMetres

	cteRad := math.Asin(clampUnit(math.Sin(d13) * math.Sin(t13-t10)))
	ateRad := math.Acos(clampUnit(math.Cos(d13) / math.Cos(cteRad)))

	// t10 points back along the track, so a forecast on its side is behind ob1.
	if math.Cos(t13-t10) > 0 {
		ateRad = -ateRad
	}

	return ateRad * EarthRadiusMetres / metresPerNauticalMile,
		cteRad * EarthRadiusMetres / metresPerNauticalMile
}

// MetresToNauticalMiles converts a distance in metres.
func MetresToNauticalMiles(m float64) float64 {
	return m / metresPerNauticalMile
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
