package geocoding

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// Provider resolves a free-text location label to coordinates.
type Provider interface {
	Geocode(ctx context.Context, label string) (*models.Coordinates, error)
}

// Locator maps a label to coordinates without failing. Unknown labels yield (0, 0).
type Locator interface {
	Lookup(label string) models.Coordinates
}
