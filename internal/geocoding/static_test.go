package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_Geocode(t *testing.T) {
	provider := geocoding.NewStaticProvider(nil, slog.Default())

	t.Run("known label", func(t *testing.T) {
		coords, err := provider.Geocode(t.Context(), "Tokyo, Japan")

		require.NoError(t, err)
		assert.Equal(t, &models.Coordinates{Latitude: 35.6762, Longitude: 139.6503}, coords)
	})

	t.Run("accented and plain spellings agree", func(t *testing.T) {
		plain, err := provider.Geocode(t.Context(), "Sao Paulo, Brazil")
		require.NoError(t, err)
		accented, err := provider.Geocode(t.Context(), "São Paulo, Brazil")
		require.NoError(t, err)

		assert.Equal(t, plain, accented)
	})

	t.Run("unknown label", func(t *testing.T) {
		coords, err := provider.Geocode(t.Context(), "Atlantis")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrUnknownLocation)
		assert.Contains(t, err.Error(), `"Atlantis"`)
	})

	t.Run("labels match exactly", func(t *testing.T) {
		_, err := provider.Geocode(t.Context(), "tokyo, japan")

		require.ErrorIs(t, err, geocoding.ErrUnknownLocation)
	})
}

func TestStaticProvider_Lookup(t *testing.T) {
	table := map[string]models.Coordinates{
		"Here": {Latitude: 10, Longitude: 20},
	}
	provider := geocoding.NewStaticProvider(table, slog.Default())

	assert.Equal(t, models.Coordinates{Latitude: 10, Longitude: 20}, provider.Lookup("Here"))
	assert.Equal(t, models.Coordinates{}, provider.Lookup("Tokyo, Japan"))
	assert.Equal(t, models.Coordinates{}, provider.Lookup(""))
}

func TestCityCoordinates_InRange(t *testing.T) {
	for label, coords := range geocoding.CityCoordinates {
		assert.GreaterOrEqual(t, coords.Latitude, -90.0, label)
		assert.LessOrEqual(t, coords.Latitude, 90.0, label)
		assert.Greater(t, coords.Longitude, -180.0, label)
		assert.LessOrEqual(t, coords.Longitude, 180.0, label)
	}
}
