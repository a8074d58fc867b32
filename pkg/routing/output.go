package routing

import (
	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// Property names of the GeoJSON output, consumers parse these.
const (
	PropertyLength        = "length"
	PropertyUnits         = "units"
	PropertyDurationHours = "duration_hours"
)

// DefaultSpeedKnots is the vessel speed used for the travel time.
const DefaultSpeedKnots = 24.0

// DurationHours is the travel time in hours at the given speed in knots.
func (r Route) DurationHours(speedKnots float64) float64 {
	return geometry.NauticalMiles.FromKilometers(r.Length) / speedKnots
}

// Feature returns the route as GeoJSON LineString feature with its length in the given unit
// and the travel time at speedKnots.
func (r Route) Feature(unit geometry.Unit, speedKnots float64) *geojson.Feature {
	line := make(orb.LineString, 0, len(r.Coordinates))
	for _, c := range r.Coordinates {
		line = append(line, c.Point())
	}
	feature := geojson.NewFeature(line)
	feature.Properties[PropertyLength] = unit.FromKilometers(r.Length)
	feature.Properties[PropertyUnits] = string(unit)
	feature.Properties[PropertyDurationHours] = r.DurationHours(speedKnots)
	return feature
}

// Polyline encodes the coordinates with the encoded polyline algorithm (precision 5, lat/lon order).
func (r Route) Polyline() string {
	coords := make([][]float64, 0, len(r.Coordinates))
	for _, c := range r.Coordinates {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
