package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func samplePersona(id string) *models.Persona {
	return &models.Persona{
		ID:         id,
		Name:       "Dr. Kenji Tanaka",
		Specialty:  "Lung Cancer",
		Hospital:   "National Cancer Center",
		Location:   "Tokyo, Japan",
		Rating:     4.8,
		Experience: "20 years",
		Focus:      []string{"EGFR", "ALK"},
		Style: models.Style{
			Tone:           "calm",
			Communication:  "precise and gentle",
			DecisionMaking: "evidence first",
		},
	}
}

func newConsultService(t *testing.T) (*ConsultService, *mocks.PersonaReader, *mocks.Generator, *metrics.Metrics) {
	t.Helper()

	reader := mocks.NewPersonaReader(t)
	generator := mocks.NewGenerator(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	cs := NewConsultService(slog.Default(), reader, generator, m)
	cs.now = func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	}

	return cs, reader, generator, m
}

func TestConsult(t *testing.T) {
	ctx := t.Context()

	t.Run("missing input", func(t *testing.T) {
		cs, _, _, m := newConsultService(t)

		_, err := cs.Consult(ctx, "", "cough")
		require.ErrorIs(t, err, ErrMissingConsultInput)
		_, err = cs.Consult(ctx, "dr-tanaka", "   ")
		require.ErrorIs(t, err, ErrMissingConsultInput)

		assert.InDelta(t, 2.0, testutil.ToFloat64(m.Consultations.WithLabelValues("invalid")), 1e-9)
	})

	t.Run("unknown persona", func(t *testing.T) {
		cs, reader, _, _ := newConsultService(t)
		reader.On("GetPersona", ctx, "dr-nobody").Return(nil, repository.ErrPersonaNotFound).Once()

		_, err := cs.Consult(ctx, "dr-nobody", "cough")

		require.ErrorIs(t, err, repository.ErrPersonaNotFound)
	})

	t.Run("generator failure", func(t *testing.T) {
		cs, reader, generator, m := newConsultService(t)
		reader.On("GetPersona", ctx, "dr-tanaka").Return(samplePersona("dr-tanaka"), nil).Once()
		generator.On("Generate", ctx, mock.Anything).Return("", assert.AnError).Once()

		_, err := cs.Consult(ctx, "dr-tanaka", "cough")

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to generate consultation")
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.Consultations.WithLabelValues("failure")), 1e-9)
	})

	t.Run("success", func(t *testing.T) {
		cs, reader, generator, m := newConsultService(t)
		persona := samplePersona("dr-tanaka")
		reader.On("GetPersona", ctx, "dr-tanaka").Return(persona, nil).Once()
		generator.On("Generate", ctx, BuildPrompt(*persona, "Stage II adenocarcinoma")).
			Return("Let us go through this together.", nil).Once()

		got, err := cs.Consult(ctx, " dr-tanaka ", " Stage II adenocarcinoma ")

		require.NoError(t, err)
		assert.Equal(t, PersonaSummary{
			ID:        "dr-tanaka",
			Name:      "Dr. Kenji Tanaka",
			Specialty: "Lung Cancer",
			Location:  "Tokyo, Japan",
			Style:     persona.Style,
		}, got.Persona)
		assert.Equal(t, "Stage II adenocarcinoma", got.PatientSummary)
		assert.Equal(t, "Let us go through this together.", got.Consultation)
		assert.Equal(t, time.UTC, got.GeneratedAt.Location())
		assert.Equal(t, 11, got.GeneratedAt.Hour())
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.Consultations.WithLabelValues("success")), 1e-9)
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(*samplePersona("dr-tanaka"), "Persistent cough")

	assert.True(t, strings.HasPrefix(prompt,
		"You are Dr. Kenji Tanaka, an oncologist specializing in Lung Cancer at National Cancer Center, Tokyo, Japan.\n"))
	assert.Contains(t, prompt, "Style: calm - precise and gentle.\n")
	assert.Contains(t, prompt, "Decision-making: evidence first.\n")
	assert.Contains(t, prompt, "Focus areas: EGFR, ALK.\n")
	assert.Contains(t, prompt, "Experience: 20 years.\n")
	assert.Contains(t, prompt, "Patient case: Persistent cough\n")
	assert.True(t, strings.HasSuffix(prompt, "Limit response to 200-300 words."))
}

func TestConsultMany(t *testing.T) {
	ctx := t.Context()

	t.Run("missing input", func(t *testing.T) {
		cs, _, _, _ := newConsultService(t)

		_, err := cs.ConsultMany(ctx, "", []string{"a"})
		require.ErrorIs(t, err, ErrMissingConsultInput)
		_, err = cs.ConsultMany(ctx, "cough", nil)
		require.ErrorIs(t, err, ErrMissingConsultInput)
	})

	t.Run("drops failures and keeps order", func(t *testing.T) {
		cs, reader, generator, _ := newConsultService(t)
		ids := []string{"dr-a", "dr-missing", "dr-b", "dr-broken", "dr-c"}

		for _, id := range []string{"dr-a", "dr-b", "dr-broken", "dr-c"} {
			persona := samplePersona(id)
			persona.Name = "Name " + id
			reader.On("GetPersona", mock.Anything, id).Return(persona, nil).Once()
		}
		reader.On("GetPersona", mock.Anything, "dr-missing").Return(nil, repository.ErrPersonaNotFound).Once()

		generator.On("Generate", mock.Anything, mock.Anything).Return(
			func(_ context.Context, prompt string) (string, error) {
				if strings.Contains(prompt, "Name dr-broken") {
					return "", assert.AnError
				}
				return "reply", nil
			},
		).Times(4)

		got, err := cs.ConsultMany(ctx, "cough", ids)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "dr-a", got[0].Persona.ID)
		assert.Equal(t, "dr-b", got[1].Persona.ID)
		assert.Equal(t, "dr-c", got[2].Persona.ID)
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		cs, reader, generator, _ := newConsultService(t)
		ids := make([]string, 12)
		for i := range ids {
			ids[i] = "dr-" + string(rune('a'+i))
		}

		reader.On("GetPersona", mock.Anything, mock.Anything).Return(
			func(_ context.Context, id string) (*models.Persona, error) { return samplePersona(id), nil },
		)

		var inFlight, peak atomic.Int32
		generator.On("Generate", mock.Anything, mock.Anything).Return(
			func(_ context.Context, _ string) (string, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return "ok", nil
			},
		)

		got, err := cs.ConsultMany(ctx, "cough", ids)

		require.NoError(t, err)
		assert.Len(t, got, len(ids))
		assert.LessOrEqual(t, peak.Load(), int32(MaxParallelConsultations))
	})
}
