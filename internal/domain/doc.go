// Package domain models tropical cyclone track fixes and the verification of
// forecast tracks against observed ones.
//
// # Fixes
//
// A [Fix] is one point in a storm's life: time, position, central pressure,
// mean wind, gust, category and, once known, the direction of travel (the
// along-track vector). Every attribute is optional. Missing values propagate:
// interpolating between two fixes where either lacks, say, a pressure gives a
// fix with no pressure.
//
// Angle convention:
//
//	Along-track vectors and bearings are radians, 0 = east, increasing
//	counter-clockwise, normalized into [0, 2π).
//	Great-circle bearings in geomath are degrees clockwise from north.
//
// Longitude convention:
//
//	Degrees east in [-180, 180]. Constructors and setters store whatever
//	they are given; displacement and interpolation normalize their output.
//	Interpolation between 179 and -179 crosses the antimeridian (the short
//	way) rather than passing through 0.
//
// Category:
//
//	Held as a float64. Interpolated fixes carry fractional values, e.g. 3.72.
//	[Fix.RoundedCategory] rounds halves upward (3.5 -> 4, 4.5 -> 5).
//
// # Along- and across-track distances
//
// The displacement between two fixes is split into an east-west and a
// north-south component in nautical miles (one minute of latitude; the
// east-west component shrinks with the cosine of the mean latitude) and
// projected onto the along-track vector and onto the axis 90° clockwise from
// it. For a storm heading north, a forecast to the east has a positive
// across-track distance.
//
// # Verification
//
// A [VerificationRequest] carries the observed track of one storm and one
// forecast of it. [Verify] orders the observations by time, gives each the
// direction towards its successor, interpolates the track to every forecast
// valid time and reports, per forecast fix, the along/across-track distances,
// the direct (great-circle) distance, the great-circle along/cross-track
// errors and the intensity errors. Forecast fixes outside the observed span
// are counted as skipped.
//
// # ID Generation
//
// Result IDs are deterministic SHA-256 hashes of storm|forecast. Replaying a
// request produces the same ID. See [generateID].
package domain
