package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/jackc/pgx/v5"
)

const selectPersonas = `
	SELECT p.id, p.name, p.specialty, p.hospital, p.location, p.rating, p.experience,
		p.focus, p.languages, p.style, p.sample_quote, l.latitude, l.longitude
	FROM personas p
	LEFT JOIN locations l ON l.label = p.location
`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListPersonas returns every persona in insertion order, with resolved coordinates when
// the persona's location label has been geocoded.
func (r *Repository) ListPersonas(ctx context.Context) ([]models.Persona, error) {
	rows, err := r.db.Query(ctx, selectPersonas+"ORDER BY p.ordinal ASC;")
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}
	defer rows.Close()

	personas := []models.Persona{}
	for rows.Next() {
		persona, errScan := scanPersona(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", errScan)
		}
		personas = append(personas, *persona)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Personas loaded", "count", len(personas))

	return personas, nil
}

// GetPersona returns the persona with the given ID or ErrPersonaNotFound.
func (r *Repository) GetPersona(ctx context.Context, id string) (*models.Persona, error) {
	row := r.db.QueryRow(ctx, selectPersonas+"WHERE p.id = $1;", id)

	persona, err := scanPersona(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan persona: %w", err)
	}

	return persona, nil
}

// UpsertPersona inserts the persona or overwrites the stored one with the same ID.
func (r *Repository) UpsertPersona(ctx context.Context, persona models.Persona) error {
	query := `
		INSERT INTO personas (id, name, specialty, hospital, location, rating, experience,
			focus, languages, style, sample_quote)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			specialty = EXCLUDED.specialty,
			hospital = EXCLUDED.hospital,
			location = EXCLUDED.location,
			rating = EXCLUDED.rating,
			experience = EXCLUDED.experience,
			focus = EXCLUDED.focus,
			languages = EXCLUDED.languages,
			style = EXCLUDED.style,
			sample_quote = EXCLUDED.sample_quote;
	`

	style, err := json.Marshal(persona.Style)
	if err != nil {
		return fmt.Errorf("failed to encode persona style: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		persona.ID, persona.Name, persona.Specialty, persona.Hospital, persona.Location, persona.Rating,
		persona.Experience, nonNil(persona.Focus), nonNil(persona.Languages), style, persona.SampleQuote,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert persona %s: %w", persona.ID, err)
	}

	return nil
}

// SyncLocations registers every persona location label that is not tracked yet.
// It returns the number of new labels.
func (r *Repository) SyncLocations(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO locations (label)
		SELECT DISTINCT location FROM personas WHERE location <> ''
		ON CONFLICT (label) DO NOTHING;
	`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to sync location labels: %w", err)
	}

	return tag.RowsAffected(), nil
}

// FetchUnresolvedLocations returns labels without coordinates that have failed fewer than
// 5 times, oldest first.
func (r *Repository) FetchUnresolvedLocations(ctx context.Context, limit int) ([]models.LocationTask, error) {
	var tasks []models.LocationTask
	query := `
		SELECT label, geocoding_attempts
		FROM locations
		WHERE
			latitude IS NULL
			AND geocoding_attempts < 5
			AND label <> ''
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.LocationTask
		if errScan := rows.Scan(&task.Label, &task.Attempts); errScan != nil {
			return nil, fmt.Errorf("failed to scan unresolved location: %w", errScan)
		}
		r.log.DebugContext(ctx, "Unresolved location label received.", "label", task.Label)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateLocationCoordinates stores coordinates for label and clears its last error.
func (r *Repository) UpdateLocationCoordinates(ctx context.Context, label string, coords models.Coordinates) error {
	query := `
		UPDATE locations
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			label = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, label)
	if err != nil {
		return fmt.Errorf("failed to update location coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount records a failed geocoding attempt for label.
func (r *Repository) IncrementFailureCount(ctx context.Context, label string, errMsg string) error {
	query := `
		UPDATE locations
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE label = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, label)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}

func scanPersona(row rowScanner) (*models.Persona, error) {
	var (
		persona  models.Persona
		style    []byte
		lat, lng *float64
	)

	err := row.Scan(
		&persona.ID, &persona.Name, &persona.Specialty, &persona.Hospital, &persona.Location,
		&persona.Rating, &persona.Experience, &persona.Focus, &persona.Languages, &style,
		&persona.SampleQuote, &lat, &lng,
	)
	if err != nil {
		return nil, err
	}

	if len(style) > 0 {
		if err = json.Unmarshal(style, &persona.Style); err != nil {
			return nil, fmt.Errorf("invalid style document: %w", err)
		}
	}

	if lat != nil && lng != nil {
		persona.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lng}
	}

	return &persona, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
