package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// ErrPersonaNotFound is returned when no persona has the requested ID.
var ErrPersonaNotFound = errors.New("persona not found")

// PersonaReader serves persona records in a stable order.
type PersonaReader interface {
	ListPersonas(ctx context.Context) ([]models.Persona, error)
	GetPersona(ctx context.Context, id string) (*models.Persona, error)
}

// LocationStore tracks geocoding progress of persona location labels.
type LocationStore interface {
	SyncLocations(ctx context.Context) (int64, error)
	FetchUnresolvedLocations(ctx context.Context, limit int) ([]models.LocationTask, error)
	UpdateLocationCoordinates(ctx context.Context, label string, coords models.Coordinates) error
	IncrementFailureCount(ctx context.Context, label string, errMsg string) error
}

// Interface is everything the Postgres repository offers.
type Interface interface {
	PersonaReader
	LocationStore
}

// Repository is the Postgres backed store.
type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
