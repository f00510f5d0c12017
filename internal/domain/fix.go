package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Fix holds the data for one observed or interpolated point on a storm track.
//
// Every attribute is optional: a nil value means the attribute is unknown.
// Accessors copy values in and out, so two fixes never share state.
//
// Category is an integer scale held as a float64. Interpolated fixes carry
// fractional categories, available from RawCategory. RoundedCategory rounds
// halves upward:
//
//	3.4 -> 3
//	3.5 -> 4
//	4.0 -> 4
//	4.4 -> 4
//	4.5 -> 5
type Fix struct {
	time             *time.Time
	latitude         *float64
	longitude        *float64
	category         *float64
	pressureCentral  *float64
	windSpd          *float64
	windGust         *float64
	alongTrackVector *float64 // radians, 0 = east, counter-clockwise
}

// NewFix builds a fix from explicit values. Any argument may be nil.
// No range checks or longitude normalization are applied.
func NewFix(t *time.Time, latitude, longitude, pressure, meanWind, windGust, category *float64) *Fix {
	f := &Fix{}
	f.SetTime(t)
	f.SetLatitude(latitude)
	f.SetLongitude(longitude)
	f.SetPressure(pressure)
	f.SetMeanWind(meanWind)
	f.SetWindGust(windGust)
	f.SetCategory(category)
	return f
}

// Clone returns a deep copy of f, including its along-track vector.
func (f *Fix) Clone() *Fix {
	c := NewFix(f.Time(), f.Latitude(), f.Longitude(), f.Pressure(), f.MeanWind(), f.WindGust(), f.RawCategory())
	c.SetAlongTrackVector(f.AlongTrackVector())
	return c
}

// Float returns a pointer to a copy of v, for building fixes from literals.
func Float(v float64) *float64 { return &v }

// Instant returns a pointer to a copy of t.
func Instant(t time.Time) *time.Time { return &t }

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	t := *p
	return &t
}

func (f *Fix) Time() *time.Time     { return copyTime(f.time) }
func (f *Fix) SetTime(t *time.Time) { f.time = copyTime(t) }

func (f *Fix) Latitude() *float64       { return copyFloat(f.latitude) }
func (f *Fix) SetLatitude(lat *float64) { f.latitude = copyFloat(lat) }

func (f *Fix) Longitude() *float64       { return copyFloat(f.longitude) }
func (f *Fix) SetLongitude(lon *float64) { f.longitude = copyFloat(lon) }

// Pressure is the central pressure of the storm.
func (f *Fix) Pressure() *float64     { return copyFloat(f.pressureCentral) }
func (f *Fix) SetPressure(p *float64) { f.pressureCentral = copyFloat(p) }

// MeanWind is the mean wind speed of the storm.
func (f *Fix) MeanWind() *float64     { return copyFloat(f.windSpd) }
func (f *Fix) SetMeanWind(w *float64) { f.windSpd = copyFloat(w) }

func (f *Fix) WindGust() *float64     { return copyFloat(f.windGust) }
func (f *Fix) SetWindGust(g *float64) { f.windGust = copyFloat(g) }

// AlongTrackVector is the direction of travel in radians, 0 = east,
// increasing counter-clockwise.
func (f *Fix) AlongTrackVector() *float64     { return copyFloat(f.alongTrackVector) }
func (f *Fix) SetAlongTrackVector(v *float64) { f.alongTrackVector = copyFloat(v) }

// RawCategory returns the category as stored, possibly fractional.
func (f *Fix) RawCategory() *float64  { return copyFloat(f.category) }
func (f *Fix) SetCategory(c *float64) { f.category = copyFloat(c) }

// RoundedCategory returns the category rounded to the nearest integer, halves
// rounding towards positive infinity.
func (f *Fix) RoundedCategory() (int, error) {
	if f.category == nil {
		return 0, fmt.Errorf("%w: rounded category of a fix with no category", ErrInvalidState)
	}
	if math.IsNaN(*f.category) || math.IsInf(*f.category, 0) {
		return 0, fmt.Errorf("%w: category %v is not finite", ErrInvalidState, *f.category)
	}
	return int(math.Floor(*f.category + 0.5)), nil
}

// hasPosition reports whether both coordinates are known.
func (f *Fix) hasPosition() bool {
	return f.latitude != nil && f.longitude != nil
}

func (f *Fix) String() string {
	var b strings.Builder
	b.WriteString("Time: ")
	if f.time != nil {
		b.WriteString(f.time.UTC().Format("2006-01-02 15:04:05"))
	} else {
		b.WriteString("-")
	}
	fmt.Fprintf(&b, " Lat: %s Lon: %s Press: %s Mean wind: %s Gust: %s Category: %s AlongTrackVector: %s",
		formatOptional("%5.2f", f.latitude),
		formatOptional("%5.2f", f.longitude),
		formatOptional("%6.2f", f.pressureCentral),
		formatOptional("%6.2f", f.windSpd),
		formatOptional("%6.2f", f.windGust),
		formatOptional("%5.2f", f.category),
		formatOptional("%6.2f", f.alongTrackVector),
	)
	if f.alongTrackVector != nil {
		fmt.Fprintf(&b, " (%6.2f)", *f.alongTrackVector*180/math.Pi)
	}
	return b.String()
}

func formatOptional(format string, v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// fixJSON is the wire form of a Fix. Absent attributes are omitted.
type fixJSON struct {
	Time             *time.Time `json:"time,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Category         *float64   `json:"category,omitempty"`
	PressureCentral  *float64   `json:"pressure_central,omitempty"`
	WindSpd          *float64   `json:"wind_spd,omitempty"`
	WindGust         *float64   `json:"wind_gust,omitempty"`
	AlongTrackVector *float64   `json:"along_track_vector,omitempty"`
}

func (f *Fix) MarshalJSON() ([]byte, error) {
	return json.Marshal(fixJSON{
		Time:             f.time,
		Latitude:         f.latitude,
		Longitude:        f.longitude,
		Category:         f.category,
		PressureCentral:  f.pressureCentral,
		WindSpd:          f.windSpd,
		WindGust:         f.windGust,
		AlongTrackVector: f.alongTrackVector,
	})
}

func (f *Fix) UnmarshalJSON(data []byte) error {
	var w fixJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode fix: %w", err)
	}
	*f = Fix{
		time:             w.Time,
		latitude:         w.Latitude,
		longitude:        w.Longitude,
		category:         w.Category,
		pressureCentral:  w.PressureCentral,
		windSpd:          w.WindSpd,
		windGust:         w.WindGust,
		alongTrackVector: w.AlongTrackVector,
	}
	return nil
}
