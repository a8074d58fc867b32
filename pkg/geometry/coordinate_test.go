package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		lon   float64
		lat   float64
		valid bool
	}{
		{"origin", 0, 0, true},
		{"corner", 180, -90, true},
		{"lon too big", 180.5, 0, false},
		{"lat too small", 0, -90.01, false},
		{"nan", math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoordinate(tt.lon, tt.lat)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.lon, c.Lon)
				assert.Equal(t, tt.lat, c.Lat)
				return
			}
			var coordErr *InvalidCoordinateError
			require.True(t, errors.As(err, &coordErr))
		})
	}
}

func TestDistance(t *testing.T) {
	a := MakeCoordinate(0, 0)
	b := MakeCoordinate(1, 0)

	// one degree along the equator with the WGS84 equatorial radius
	assert.InDelta(t, 111.319, Distance(a, b), 0.001)
	assert.Equal(t, Distance(a, b), Distance(b, a))
	assert.Zero(t, Distance(a, a))
	assert.Equal(t, Distance(a, b), a.DistanceTo(b))
}

func TestUnits(t *testing.T) {
	u, err := ParseUnit("naut")
	require.NoError(t, err)
	assert.Equal(t, NauticalMiles, u)
	assert.InDelta(t, 1.0, u.FromKilometers(1.852), 1e-12)
	assert.InDelta(t, 1500.0, Meters.FromKilometers(1.5), 1e-9)

	_, err = ParseUnit("furlong")
	assert.Error(t, err)
}
