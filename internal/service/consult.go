package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"golang.org/x/sync/errgroup"
)

// MaxParallelConsultations bounds ConsultMany fan-out.
const MaxParallelConsultations = 5

// ErrMissingConsultInput is returned when the persona ID or the patient summary is blank.
var ErrMissingConsultInput = errors.New("both personaId and patientSummary are required")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PersonaSummary is the part of a persona echoed back with a consultation.
type PersonaSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Specialty string       `json:"specialty"`
	Location  string       `json:"location"`
	Style     models.Style `json:"style"`
}

// Consultation is a generated preview of how a persona would talk about a case.
type Consultation struct {
	Persona        PersonaSummary `json:"persona"`
	PatientSummary string         `json:"patientSummary"`
	Consultation   string         `json:"consultation"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// ConsultService drafts consultation previews in the voice of a persona.
type ConsultService struct {
	log       *slog.Logger
	personas  repository.PersonaReader
	generator Generator
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewConsultService creates a ConsultService.
func NewConsultService(
	log *slog.Logger,
	personas repository.PersonaReader,
	generator Generator,
	metrics *metrics.Metrics,
) *ConsultService {
	return &ConsultService{
		log:       log,
		personas:  personas,
		generator: generator,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Consult drafts the preview of personaID for patientSummary.
func (cs *ConsultService) Consult(ctx context.Context, personaID, patientSummary string) (*Consultation, error) {
	personaID = strings.TrimSpace(personaID)
	patientSummary = strings.TrimSpace(patientSummary)
	if personaID == "" || patientSummary == "" {
		cs.metrics.Consultations.WithLabelValues("invalid").Inc()
		return nil, ErrMissingConsultInput
	}

	persona, err := cs.personas.GetPersona(ctx, personaID)
	if err != nil {
		cs.metrics.Consultations.WithLabelValues("not_found").Inc()
		return nil, err
	}

	cs.log.InfoContext(ctx, "Generating consultation", "persona", persona.ID, "name", persona.Name)

	text, err := cs.generator.Generate(ctx, BuildPrompt(*persona, patientSummary))
	if err != nil {
		cs.metrics.Consultations.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("failed to generate consultation: %w", err)
	}
	cs.metrics.Consultations.WithLabelValues("success").Inc()

	return &Consultation{
		Persona: PersonaSummary{
			ID:        persona.ID,
			Name:      persona.Name,
			Specialty: persona.Specialty,
			Location:  persona.Location,
			Style:     persona.Style,
		},
		PatientSummary: patientSummary,
		Consultation:   text,
		GeneratedAt:    cs.now().UTC(),
	}, nil
}

// ConsultMany asks every persona in personaIDs about the same case, at most
// MaxParallelConsultations at a time. Failed consultations are logged and left out.
// The result keeps the order of personaIDs.
func (cs *ConsultService) ConsultMany(ctx context.Context, patientSummary string, personaIDs []string) ([]Consultation, error) {
	if strings.TrimSpace(patientSummary) == "" || len(personaIDs) == 0 {
		return nil, ErrMissingConsultInput
	}

	results := make([]*Consultation, len(personaIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallelConsultations)
	for i, id := range personaIDs {
		g.Go(func() error {
			consultation, err := cs.Consult(gctx, id, patientSummary)
			if err != nil {
				cs.log.WarnContext(gctx, "Consultation dropped", "persona", id, "error", err)
				return nil
			}
			results[i] = consultation
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Consultation, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	return out, nil
}

// BuildPrompt renders the instructions given to the generator for persona and the case.
func BuildPrompt(persona models.Persona, patientSummary string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, an oncologist specializing in %s at %s, %s.\n",
		persona.Name, persona.Specialty, persona.Hospital, persona.Location)
	fmt.Fprintf(&sb, "Style: %s - %s.\n", persona.Style.Tone, persona.Style.Communication)
	fmt.Fprintf(&sb, "Decision-making: %s.\n", persona.Style.DecisionMaking)
	fmt.Fprintf(&sb, "Focus areas: %s.\n", strings.Join(persona.Focus, ", "))
	fmt.Fprintf(&sb, "Experience: %s.\n\n", persona.Experience)
	fmt.Fprintf(&sb, "Patient case: %s\n\n", patientSummary)
	sb.WriteString("Respond as this doctor would in a consultation, previewing how they would talk to the " +
		"patient. Keep it conversational, empathetic, and true to their communication style. Do not provide " +
		"a new diagnosis - focus on explaining the situation and potential next steps in this doctor's " +
		"unique voice.\n\n")
	sb.WriteString("Limit response to 200-300 words.")

	return sb.String()
}
