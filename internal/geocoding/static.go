package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// ErrUnknownLocation is returned by the static provider for labels missing from its table.
var ErrUnknownLocation = errors.New("location is not in the static coordinate table")

// CityCoordinates is the built-in label to coordinate table. Labels are matched exactly.
var CityCoordinates = map[string]models.Coordinates{
	// North America
	"Durham, USA":         {Latitude: 35.9940, Longitude: -78.8986},
	"San Diego, USA":      {Latitude: 32.7157, Longitude: -117.1611},
	"New York, USA":       {Latitude: 40.7128, Longitude: -74.0060},
	"Mexico City, Mexico": {Latitude: 19.4326, Longitude: -99.1332},

	// South America
	"Sao Paulo, Brazil":       {Latitude: -23.5505, Longitude: -46.6333},
	"São Paulo, Brazil":       {Latitude: -23.5505, Longitude: -46.6333},
	"Rio de Janeiro, Brazil":  {Latitude: -22.9068, Longitude: -43.1729},
	"Buenos Aires, Argentina": {Latitude: -34.6118, Longitude: -58.3960},
	"Bogotá, Colombia":        {Latitude: 4.7110, Longitude: -74.0721},

	// Europe
	"London, UK":      {Latitude: 51.5074, Longitude: -0.1278},
	"Paris, France":   {Latitude: 48.8566, Longitude: 2.3522},
	"Munich, Germany": {Latitude: 48.1351, Longitude: 11.5820},
	"Berlin, Germany": {Latitude: 52.5200, Longitude: 13.4050},
	"Madrid, Spain":   {Latitude: 40.4168, Longitude: -3.7038},

	// Asia
	"Tokyo, Japan":       {Latitude: 35.6762, Longitude: 139.6503},
	"Chiba, Japan":       {Latitude: 35.6074, Longitude: 140.1065},
	"Seoul, South Korea": {Latitude: 37.5665, Longitude: 126.9780},
	"Singapore":          {Latitude: 1.3521, Longitude: 103.8198},
	"Guangzhou, China":   {Latitude: 23.1291, Longitude: 113.2644},
	"Ahmedabad, India":   {Latitude: 23.0225, Longitude: 72.5714},
	"Chennai, India":     {Latitude: 13.0827, Longitude: 80.2707},
	"Mumbai, India":      {Latitude: 19.0760, Longitude: 72.8777},

	// Africa
	"Lagos, Nigeria":             {Latitude: 6.5244, Longitude: 3.3792},
	"Johannesburg, South Africa": {Latitude: -26.2041, Longitude: 28.0473},
	"Cape Town, South Africa":    {Latitude: -33.9249, Longitude: 18.4241},

	// Older persona sets still use these.
	"Cairo, Egypt":      {Latitude: 30.0444, Longitude: 31.2357},
	"Sydney, Australia": {Latitude: -33.8688, Longitude: 151.2093},
	"Moscow, Russia":    {Latitude: 55.7558, Longitude: 37.6176},
}

// StaticProvider resolves labels from an in-memory table. It never performs I/O.
type StaticProvider struct {
	table map[string]models.Coordinates
	log   *slog.Logger
}

// NewStaticProvider creates a provider over table. A nil table selects CityCoordinates.
func NewStaticProvider(table map[string]models.Coordinates, log *slog.Logger) *StaticProvider {
	if table == nil {
		table = CityCoordinates
	}

	return &StaticProvider{table: table, log: log}
}

// Geocode returns the table entry for label or ErrUnknownLocation.
func (sp *StaticProvider) Geocode(ctx context.Context, label string) (*models.Coordinates, error) {
	coords, ok := sp.table[label]
	if !ok {
		sp.log.DebugContext(ctx, "Label missing from static table", "label", label)
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, label)
	}

	return &coords, nil
}

// Lookup returns the table entry for label, or (0, 0) when the label is unknown.
// Several unknown labels therefore land on the same spot off the coast of Africa.
func (sp *StaticProvider) Lookup(label string) models.Coordinates {
	return sp.table[label]
}
