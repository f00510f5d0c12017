package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positioned(lat, lon float64) *Fix {
	return NewFix(nil, Float(lat), Float(lon), nil, nil, nil, nil)
}

func TestAngleToFix(t *testing.T) {
	origin := positioned(0, 0)

	tests := []struct {
		name     string
		lat, lon float64
		expected float64
	}{
		{"east", 0, 1, 0},
		{"north", 1, 0, math.Pi / 2},
		{"west", 0, -1, math.Pi},
		{"south", -1, 0, 3 * math.Pi / 2},
		{"north east", 1, 1, math.Pi / 4},
		{"south west", -1, -1, 5 * math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := origin.AngleToFix(positioned(tt.lat, tt.lon))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, angleTolerance)
		})
	}
}

// A target due west sits on the atan2 branch cut: the result is exactly π
// and is not shifted, unlike every other angle in the lower half plane.
func TestAngleToFix_WestBoundaryIsNotShifted(t *testing.T) {
	got, err := positioned(0, 0).AngleToFix(positioned(0, -1))
	require.NoError(t, err)
	assert.Equal(t, math.Pi, got)

	same, err := positioned(0, 0).AngleToFix(positioned(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, same)
}

func TestAngleToFix_AcrossAntimeridian(t *testing.T) {
	got, err := positioned(10, 179.5).AngleToFix(positioned(10, -179.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, angleTolerance, "short way east across 180")
}

func TestAngleToFix_NeedsPositions(t *testing.T) {
	_, err := positioned(0, 0).AngleToFix(NewFix(nil, Float(1), nil, nil, nil, nil, nil))
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	_, err = (&Fix{}).AngleToFix(positioned(0, 0))
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	_, err = positioned(0, 0).AngleToFix(nil)
	assert.ErrorIs(t, err, ErrPreconditionViolation)
}

func TestDisplacedBy(t *testing.T) {
	orig := fullFix()

	moved := orig.DisplacedBy(1.5, -0.5)
	assert.InDelta(t, 95.9, *moved.Longitude(), 1e-9)
	assert.InDelta(t, -10.7, *moved.Latitude(), 1e-9)
	assert.Equal(t, *orig.Pressure(), *moved.Pressure())
	assert.Equal(t, *orig.AlongTrackVector(), *moved.AlongTrackVector())
	assert.Equal(t, *orig.Time(), *moved.Time())

	// The original is untouched.
	assert.Equal(t, 94.4, *orig.Longitude())
	assert.Equal(t, -10.2, *orig.Latitude())
}

func TestDisplacedBy_WrapsLongitudeOnly(t *testing.T) {
	moved := positioned(89, 179).DisplacedBy(3, 2)
	assert.InDelta(t, -178.0, *moved.Longitude(), 1e-9)
	assert.InDelta(t, 91.0, *moved.Latitude(), 1e-9, "latitude is not clamped")
}

func TestDisplacedBy_AbsentCoordinates(t *testing.T) {
	moved := (&Fix{}).DisplacedBy(1, 1)
	assert.Nil(t, moved.Longitude())
	assert.Nil(t, moved.Latitude())
}

func TestAlongAndAcrossTrackDistance(t *testing.T) {
	heading := func(lat, lon, vector float64) *Fix {
		f := positioned(lat, lon)
		f.SetAlongTrackVector(Float(vector))
		return f
	}

	tests := []struct {
		name           string
		from           *Fix
		to             *Fix
		expectedAlong  float64
		expectedAcross float64
	}{
		{"heading north, target north", heading(0, 0, math.Pi/2), positioned(1, 0), 60, 0},
		{"heading north, target east", heading(0, 0, math.Pi/2), positioned(0, 1), 0, 60},
		{"heading north, target west", heading(0, 0, math.Pi/2), positioned(0, -1), 0, -60},
		{"heading east, target north", heading(0, 0, 0), positioned(0.5, 0), 0, -30},
		{"heading east, target behind", heading(0, 0, 0), positioned(0, -0.25), -15, 0},
		{"heading west across 180", heading(0, -179.5, math.Pi), positioned(0, 179.5), 60, 0},
		{"high latitude shrinks east-west", heading(60, 0, 0), positioned(60, 1), 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			along, err := tt.from.AlongTrackDistanceTo(tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedAlong, along, 1e-9)

			across, err := tt.from.AcrossTrackDistanceTo(tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedAcross, across, 1e-9)
		})
	}
}

func TestTrackDistance_NeedsAlongTrackVector(t *testing.T) {
	from := positioned(0, 0)

	for _, to := range []*Fix{positioned(1, 1), positioned(0, 0), {}, nil} {
		_, err := from.AlongTrackDistanceTo(to)
		assert.ErrorIs(t, err, ErrPreconditionViolation)

		_, err = from.AcrossTrackDistanceTo(to)
		assert.ErrorIs(t, err, ErrPreconditionViolation)
	}
}

func TestTrackDistance_NeedsPositions(t *testing.T) {
	from := positioned(0, 0)
	from.SetAlongTrackVector(Float(0))

	_, err := from.AlongTrackDistanceTo(&Fix{})
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	_, err = from.AcrossTrackDistanceTo(nil)
	assert.ErrorIs(t, err, ErrPreconditionViolation)
}
