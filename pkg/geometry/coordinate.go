package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// A Coordinate is a (longitude, latitude) pair in degrees.
type Coordinate struct {
	Lon float64
	Lat float64
}

// InvalidCoordinateError is returned for a longitude or latitude outside of the valid range.
type InvalidCoordinateError struct {
	Lon float64
	Lat float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate [%v, %v]: longitude must be in [-180, 180], latitude in [-90, 90]", e.Lon, e.Lat)
}

// Create a validated coordinate
func NewCoordinate(lon, lat float64) (Coordinate, error) {
	c := Coordinate{Lon: lon, Lat: lat}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Create a coordinate without validation. Only use this for trusted data.
func MakeCoordinate(lon, lat float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat}
}

func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lon: p.Lon(), Lat: p.Lat()}
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) || c.Lon < -180 || c.Lon > 180 || c.Lat < -90 || c.Lat > 90 {
		return &InvalidCoordinateError{Lon: c.Lon, Lat: c.Lat}
	}
	return nil
}

func (c Coordinate) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Great-circle distance to the other coordinate in kilometers
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return Distance(c, other)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%v, %v]", c.Lon, c.Lat)
}

// Distance returns the haversine great-circle distance between a and b in kilometers.
func Distance(a, b Coordinate) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / 1000
}
