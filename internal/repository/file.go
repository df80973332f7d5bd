package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// FileRepository serves personas read once from a JSON array on disk.
// The records never change after loading.
type FileRepository struct {
	personas []models.Persona
	byID     map[string]int
	log      *slog.Logger
}

// NewFileRepository reads and decodes path. Duplicate IDs are rejected.
func NewFileRepository(path string, log *slog.Logger) (*FileRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read personas file: %w", err)
	}

	var personas []models.Persona
	if err = json.Unmarshal(raw, &personas); err != nil {
		return nil, fmt.Errorf("failed to decode personas file: %w", err)
	}

	byID := make(map[string]int, len(personas))
	for i, persona := range personas {
		if _, dup := byID[persona.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q in %s", persona.ID, path)
		}
		byID[persona.ID] = i
	}

	log.Info("Loaded doctor personas", "count", len(personas), "path", path)

	return &FileRepository{personas: personas, byID: byID, log: log}, nil
}

// ListPersonas returns a copy of all personas in file order.
func (fr *FileRepository) ListPersonas(_ context.Context) ([]models.Persona, error) {
	out := make([]models.Persona, len(fr.personas))
	copy(out, fr.personas)

	return out, nil
}

// GetPersona returns the persona with the given ID or ErrPersonaNotFound.
func (fr *FileRepository) GetPersona(ctx context.Context, id string) (*models.Persona, error) {
	idx, ok := fr.byID[id]
	if !ok {
		fr.log.DebugContext(ctx, "Persona lookup missed", "id", id)
		return nil, ErrPersonaNotFound
	}

	persona := fr.personas[idx]
	return &persona, nil
}
