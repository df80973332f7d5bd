package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/markers"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/spread"
)

// ResolveEpsilon is the per-axis tolerance, in degrees, used to match a clicked point.
const ResolveEpsilon = 0.001

// AllCancerTypes disables the cancer type filter.
const AllCancerTypes = "All Cancer Types"

// ErrInvalidSpread is returned for negative clustering distances.
var ErrInvalidSpread = errors.New("spread distances must be non-negative")

var cancerTypes = []string{
	AllCancerTypes,
	"Lung Cancer",
	"Breast Cancer",
	"Gynecologic Cancers",
	"Colorectal Cancer",
	"Pancreatic Cancer",
	"Gastrointestinal Oncology",
	"Head & Neck Cancer",
	"Liver Cancer",
	"Pediatric Oncology",
	"Hematologic Malignancies",
	"Medical Oncology",
	"Radiation Oncology",
	"Surgical Oncology",
	"Immunotherapy",
}

// GlobePoint is a renderable persona marker. The origin fields are present only for
// markers that were moved off their true location.
type GlobePoint struct {
	Lat         float64        `json:"lat"`
	Lng         float64        `json:"lng"`
	Label       string         `json:"label"`
	Color       string         `json:"color"`
	RegionColor string         `json:"regionColor"`
	Size        float64        `json:"size"`
	Flag        string         `json:"flag"`
	Persona     models.Persona `json:"persona"`
	*spread.Origin
}

// RenderedPoint is a marker position as reported back by a client.
type RenderedPoint struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	OrigLat *float64 `json:"origLat,omitempty"`
	OrigLng *float64 `json:"origLng,omitempty"`
}

// SpreadOptions overrides the configured clustering distances. Nil keeps the default.
type SpreadOptions struct {
	ThresholdKm *float64
	RingKm      *float64
}

// GlobeService turns persona records into globe markers.
type GlobeService struct {
	log         *slog.Logger
	personas    repository.PersonaReader
	locator     geocoding.Locator
	metrics     *metrics.Metrics
	thresholdKm float64
	ringKm      float64
}

// NewGlobeService creates a GlobeService. locator supplies coordinates for personas whose
// location has not been resolved and stored.
func NewGlobeService(
	log *slog.Logger,
	personas repository.PersonaReader,
	locator geocoding.Locator,
	metrics *metrics.Metrics,
	thresholdKm, ringKm float64,
) *GlobeService {
	return &GlobeService{
		log:         log,
		personas:    personas,
		locator:     locator,
		metrics:     metrics,
		thresholdKm: thresholdKm,
		ringKm:      ringKm,
	}
}

// CancerTypes returns the filter choices in display order.
func CancerTypes() []string {
	out := make([]string, len(cancerTypes))
	copy(out, cancerTypes)
	return out
}

// Points returns the markers of every persona matching cancerType, spread so that
// co-located personas stay individually visible.
func (gs *GlobeService) Points(ctx context.Context, cancerType string, opts SpreadOptions) ([]GlobePoint, error) {
	threshold, ring, err := gs.distances(opts)
	if err != nil {
		return nil, err
	}

	personas, err := gs.personas.ListPersonas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}

	points := make([]spread.Point[models.Persona], 0, len(personas))
	for _, persona := range personas {
		if !MatchesCancerType(persona, cancerType) {
			continue
		}
		coords := gs.coordinates(persona)
		points = append(points, spread.Point[models.Persona]{
			Lat:     coords.Latitude,
			Lng:     coords.Longitude,
			Payload: persona,
		})
	}

	start := time.Now()
	placed := spread.Spread(points, threshold, ring)
	gs.observeSpread(time.Since(start), placed)

	out := make([]GlobePoint, 0, len(placed))
	for _, p := range placed {
		out = append(out, GlobePoint{
			Lat:         p.Lat,
			Lng:         p.Lng,
			Label:       markers.Label(p.Payload.Name, p.Payload.Specialty),
			Color:       markers.SpecialtyColor(p.Payload.Specialty),
			RegionColor: markers.RegionColor(p.Payload.Location),
			Size:        markers.PointSize(p.Payload.Rating),
			Flag:        markers.CountryFlag(p.Payload.Location),
			Persona:     p.Payload,
			Origin:      p.Origin,
		})
	}

	gs.log.DebugContext(ctx, "Globe points built",
		"cancer_type", cancerType, "points", len(out), "threshold_km", threshold, "ring_km", ring)

	return out, nil
}

// Resolve finds the persona behind a rendered marker. Original coordinates are preferred
// when the marker carries them. The first persona within ResolveEpsilon on both axes wins.
func (gs *GlobeService) Resolve(ctx context.Context, point RenderedPoint) (*models.Persona, error) {
	lat, lng := point.Lat, point.Lng
	if point.OrigLat != nil && point.OrigLng != nil {
		lat, lng = *point.OrigLat, *point.OrigLng
	}

	personas, err := gs.personas.ListPersonas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}

	for i := range personas {
		coords := gs.coordinates(personas[i])
		if math.Abs(coords.Latitude-lat) < ResolveEpsilon && math.Abs(coords.Longitude-lng) < ResolveEpsilon {
			return &personas[i], nil
		}
	}

	gs.log.DebugContext(ctx, "No persona at clicked point", "lat", lat, "lng", lng)

	return nil, repository.ErrPersonaNotFound
}

// MatchesCancerType reports whether persona belongs to cancerType. The empty type and
// AllCancerTypes match everyone; otherwise specialty or a focus entry must contain it,
// ignoring case.
func MatchesCancerType(persona models.Persona, cancerType string) bool {
	if cancerType == "" || cancerType == AllCancerTypes {
		return true
	}

	needle := strings.ToLower(cancerType)
	if strings.Contains(strings.ToLower(persona.Specialty), needle) {
		return true
	}
	for _, focus := range persona.Focus {
		if strings.Contains(strings.ToLower(focus), needle) {
			return true
		}
	}

	return false
}

func (gs *GlobeService) coordinates(persona models.Persona) models.Coordinates {
	if persona.Coordinates != nil {
		return *persona.Coordinates
	}
	return gs.locator.Lookup(persona.Location)
}

func (gs *GlobeService) distances(opts SpreadOptions) (float64, float64, error) {
	threshold, ring := gs.thresholdKm, gs.ringKm
	if opts.ThresholdKm != nil {
		threshold = *opts.ThresholdKm
	}
	if opts.RingKm != nil {
		ring = *opts.RingKm
	}

	if threshold < 0 || ring < 0 || math.IsNaN(threshold) || math.IsNaN(ring) {
		return 0, 0, fmt.Errorf("%w: threshold %v km, ring %v km", ErrInvalidSpread, threshold, ring)
	}

	return threshold, ring, nil
}

func (gs *GlobeService) observeSpread(elapsed time.Duration, points []spread.Point[models.Persona]) {
	gs.metrics.SpreadSeconds.Observe(elapsed.Seconds())

	var singletons, rings int
	for _, p := range points {
		switch {
		case p.Origin == nil:
			singletons++
		case p.Origin.Index == 0:
			rings++
		}
	}
	gs.metrics.Clusters.WithLabelValues("singleton").Add(float64(singletons))
	gs.metrics.Clusters.WithLabelValues("ring").Add(float64(rings))
}
