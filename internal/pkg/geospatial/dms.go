package geospatial

import (
	"fmt"
	"math"
)

// Axis selects the hemisphere letters of a DMS value.
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// Precision selects how the fractional degree is expressed.
type Precision int

const (
	// WholeSeconds yields degrees, whole minutes and rounded seconds.
	WholeSeconds Precision = iota
	// DecimalMinutes yields degrees and minutes to one decimal place.
	DecimalMinutes
)

// DMSCoordinate is a decimal-degree value split into sexagesimal parts.
// Degrees keeps the sign of the input, truncated toward zero; the other
// components are magnitudes.
type DMSCoordinate struct {
	Degrees        int       `json:"degrees"`
	Minutes        int       `json:"minutes"`
	Seconds        int       `json:"seconds"`
	DecimalMinutes float64   `json:"decimal_minutes"`
	Hemisphere     string    `json:"hemisphere"`
	Precision      Precision `json:"-"`
}

// ToDMS converts value to degree/minute/second notation. Seconds are rounded
// independently of minutes, so a value just below a whole minute can yield
// 60 seconds.
func ToDMS(value float64, axis Axis, precision Precision) (DMSCoordinate, error) {
	var err error
	if axis == Latitude {
		err = checkLatitude(value)
	} else {
		err = checkLongitude(value)
	}
	if err != nil {
		return DMSCoordinate{}, err
	}

	deg := math.Trunc(value)
	frac := math.Abs(value) - math.Abs(deg)
	minutes := math.Floor(60 * frac)

	d := DMSCoordinate{
		Degrees:    int(deg),
		Minutes:    int(minutes),
		Hemisphere: Hemisphere(value, axis),
		Precision:  precision,
	}
	switch precision {
	case DecimalMinutes:
		d.DecimalMinutes = math.Round(600*frac) / 10
	default:
		d.Seconds = int(math.Round(3600 * (frac - minutes/60)))
	}
	return d, nil
}

// Hemisphere returns N or S for latitudes and E or W for longitudes.
// Zero counts as the positive hemisphere.
func Hemisphere(value float64, axis Axis) string {
	if axis == Latitude {
		if value >= 0 {
			return "N"
		}
		return "S"
	}
	if value >= 0 {
		return "E"
	}
	return "W"
}

// String formats d as 38°30'00"N or 77°15.0'W depending on precision.
func (d DMSCoordinate) String() string {
	deg := d.Degrees
	if deg < 0 {
		deg = -deg
	}
	if d.Precision == DecimalMinutes {
		return fmt.Sprintf("%d°%04.1f'%s", deg, d.DecimalMinutes, d.Hemisphere)
	}
	return fmt.Sprintf("%d°%02d'%02d\"%s", deg, d.Minutes, d.Seconds, d.Hemisphere)
}
