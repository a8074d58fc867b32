package geometry

import (
	"fmt"
	"strings"
)

// Unit is a length unit for reported distances. Internally every distance is in kilometers.
type Unit string

const (
	Kilometers    Unit = "km"
	Meters        Unit = "m"
	Miles         Unit = "mi"
	NauticalMiles Unit = "nm"
)

var kilometersPer = map[Unit]float64{
	Kilometers:    1,
	Meters:        0.001,
	Miles:         1.609344,
	NauticalMiles: 1.852,
}

// ParseUnit accepts the unit symbols and a few common spellings.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "km", "kilometers", "kilometres":
		return Kilometers, nil
	case "m", "meters", "metres":
		return Meters, nil
	case "mi", "miles":
		return Miles, nil
	case "nm", "naut", "nauticalmiles", "nautical-miles":
		return NauticalMiles, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// FromKilometers converts a distance in kilometers into the unit.
func (u Unit) FromKilometers(km float64) float64 {
	factor, ok := kilometersPer[u]
	if !ok {
		panic(fmt.Sprintf("unit %q not supported", string(u)))
	}
	return km / factor
}
