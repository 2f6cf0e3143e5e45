package geospatial

import "fmt"

// Unit is a linear unit of measure.
type Unit int

const (
	Meters Unit = iota
	Feet
	Miles
	Kilometers
	NauticalMiles
	// DecimalDegrees measures arc length along the WGS84 equator. It is only
	// meaningful for sizing extents on geographic (unprojected) maps.
	DecimalDegrees
)

var metersPer = map[Unit]float64{
	Meters:         1,
	Feet:           0.3048,
	Miles:          1609.344,
	Kilometers:     1000,
	NauticalMiles:  1852,
	DecimalDegrees: 111319.49079327357,
}

func (u Unit) String() string {
	switch u {
	case Meters:
		return "meters"
	case Feet:
		return "feet"
	case Miles:
		return "miles"
	case Kilometers:
		return "kilometers"
	case NauticalMiles:
		return "nautical_miles"
	case DecimalDegrees:
		return "degrees"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit maps a unit name or abbreviation to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "m", "meters", "metres":
		return Meters, nil
	case "ft", "feet":
		return Feet, nil
	case "mi", "miles":
		return Miles, nil
	case "km", "kilometers", "kilometres":
		return Kilometers, nil
	case "nmi", "nautical_miles":
		return NauticalMiles, nil
	case "deg", "degrees":
		return DecimalDegrees, nil
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

// Convert converts v from one unit to another.
func Convert(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return v * metersPer[from] / metersPer[to]
}

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 { return Convert(m, Meters, Miles) }

// MetersToFeet converts meters to international feet.
func MetersToFeet(m float64) float64 { return Convert(m, Meters, Feet) }
