package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/meridian/internal/gemini"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/gin-gonic/gin"
)

// Globe builds and resolves globe markers.
type Globe interface {
	Points(ctx context.Context, cancerType string, opts service.SpreadOptions) ([]service.GlobePoint, error)
	Resolve(ctx context.Context, point service.RenderedPoint) (*models.Persona, error)
}

// Consulter drafts consultation previews.
type Consulter interface {
	Consult(ctx context.Context, personaID, patientSummary string) (*service.Consultation, error)
	ConsultMany(ctx context.Context, patientSummary string, personaIDs []string) ([]service.Consultation, error)
}

var endpoints = []string{
	"GET /api/personas - Get all personas",
	"GET /api/personas/:id - Get specific persona",
	"POST /api/consult - Generate consultation preview",
	"POST /api/consult/batch - Generate previews from several personas",
	"GET /api/globe - Get globe markers (cancerType, thresholdKm, ringKm)",
	"POST /api/globe/resolve - Find the persona behind a marker",
	"GET /api/cancer-types - Get cancer type filters",
}

// Handler serves the public HTTP API.
type Handler struct {
	log      *slog.Logger
	personas repository.PersonaReader
	globe    Globe
	consult  Consulter
}

// NewHandler creates a Handler.
func NewHandler(log *slog.Logger, personas repository.PersonaReader, globe Globe, consult Consulter) *Handler {
	return &Handler{log: log, personas: personas, globe: globe, consult: consult}
}

type consultRequest struct {
	PersonaID      string `json:"personaId"`
	PatientSummary string `json:"patientSummary"`
}

type batchRequest struct {
	PatientSummary string   `json:"patientSummary"`
	PersonaIDs     []string `json:"personaIds"`
	CancerType     string   `json:"cancerType"`
}

type resolveRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	OrigLat *float64 `json:"origLat"`
	OrigLng *float64 `json:"origLng"`
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// Index describes the service.
func (h *Handler) Index(c *gin.Context) {
	personas, err := h.personas.ListPersonas(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Failed to count personas", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Meridian doctor globe API is running!",
		"endpoints":     endpoints,
		"totalPersonas": len(personas),
	})
}

// ListPersonas returns every persona.
func (h *Handler) ListPersonas(c *gin.Context) {
	personas, err := h.personas.ListPersonas(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Error fetching personas", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch personas")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(personas), "data": personas})
}

// GetPersona returns one persona by ID.
func (h *Handler) GetPersona(c *gin.Context) {
	id := c.Param("id")

	persona, err := h.personas.GetPersona(c.Request.Context(), id)
	if errors.Is(err, repository.ErrPersonaNotFound) {
		fail(c, http.StatusNotFound, fmt.Sprintf("Persona with id %q not found", id))
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Error fetching persona", "id", id, "error", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch persona")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": persona})
}

// Consult drafts one consultation preview.
func (h *Handler) Consult(c *gin.Context) {
	var req consultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Both personaId and patientSummary are required")
		return
	}

	consultation, err := h.consult.Consult(c.Request.Context(), req.PersonaID, req.PatientSummary)
	if err != nil {
		h.consultError(c, req.PersonaID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": consultation})
}

// ConsultBatch drafts previews from several personas. Without explicit IDs the first
// personas matching cancerType are asked.
func (h *Handler) ConsultBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "patientSummary is required")
		return
	}

	ids := req.PersonaIDs
	if len(ids) == 0 {
		personas, err := h.personas.ListPersonas(c.Request.Context())
		if err != nil {
			h.log.ErrorContext(c.Request.Context(), "Error fetching personas", "error", err)
			fail(c, http.StatusInternalServerError, "Failed to fetch personas")
			return
		}
		for _, p := range personas {
			if len(ids) == service.MaxParallelConsultations {
				break
			}
			if service.MatchesCancerType(p, req.CancerType) {
				ids = append(ids, p.ID)
			}
		}
	}

	consultations, err := h.consult.ConsultMany(c.Request.Context(), req.PatientSummary, ids)
	if errors.Is(err, service.ErrMissingConsultInput) {
		fail(c, http.StatusBadRequest, "patientSummary and at least one persona are required")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Batch consultation failed", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to generate consultation previews")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(consultations), "data": consultations})
}

func (h *Handler) consultError(c *gin.Context, personaID string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingConsultInput):
		fail(c, http.StatusBadRequest, "Both personaId and patientSummary are required")
	case errors.Is(err, repository.ErrPersonaNotFound):
		fail(c, http.StatusNotFound, fmt.Sprintf("Persona with id %q not found", personaID))
	case errors.Is(err, gemini.ErrInvalidAPIKey):
		fail(c, http.StatusUnauthorized, "Invalid Gemini API key. Please check MERIDIAN_GEMINI_API_KEY.")
	case errors.Is(err, gemini.ErrQuotaExceeded):
		fail(c, http.StatusPaymentRequired, "Gemini API quota exceeded. Please try again later.")
	default:
		h.log.ErrorContext(c.Request.Context(), "Error generating consultation", "persona", personaID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate consultation preview",
			"details": err.Error(),
		})
	}
}

// GlobePoints returns the markers for the globe.
func (h *Handler) GlobePoints(c *gin.Context) {
	threshold, err := floatQuery(c, "thresholdKm")
	if err != nil {
		fail(c, http.StatusBadRequest, "thresholdKm must be a number")
		return
	}
	ring, err := floatQuery(c, "ringKm")
	if err != nil {
		fail(c, http.StatusBadRequest, "ringKm must be a number")
		return
	}
	opts := service.SpreadOptions{ThresholdKm: threshold, RingKm: ring}

	points, err := h.globe.Points(c.Request.Context(), c.Query("cancerType"), opts)
	if errors.Is(err, service.ErrInvalidSpread) {
		fail(c, http.StatusBadRequest, "thresholdKm and ringKm must be non-negative")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Error building globe points", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to build globe points")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(points), "data": points})
}

// ResolvePoint returns the persona behind a clicked marker.
func (h *Handler) ResolvePoint(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		fail(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	point := service.RenderedPoint{Lat: *req.Lat, Lng: *req.Lng, OrigLat: req.OrigLat, OrigLng: req.OrigLng}

	persona, err := h.globe.Resolve(c.Request.Context(), point)
	if errors.Is(err, repository.ErrPersonaNotFound) {
		fail(c, http.StatusNotFound, "No persona at the given point")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Error resolving point", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to resolve point")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": persona})
}

// CancerTypes returns the filter choices.
func (h *Handler) CancerTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": service.CancerTypes()})
}

// floatQuery parses an optional query parameter. A missing or empty value yields nil.
func floatQuery(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
