package main

import (
	"context"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	ids []string
	err error
}

func (w *recordingWriter) UpsertPersona(_ context.Context, persona models.Persona) error {
	if w.err != nil {
		return w.err
	}
	w.ids = append(w.ids, persona.ID)
	return nil
}

func TestSeedPersonas(t *testing.T) {
	records := []models.Persona{{ID: "dr-a"}, {ID: "dr-b"}}

	t.Run("copies every record", func(t *testing.T) {
		src := mocks.NewPersonaReader(t)
		src.On("ListPersonas", mock.Anything).Return(records, nil).Once()
		dst := &recordingWriter{}

		count, err := seedPersonas(t.Context(), src, dst)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, []string{"dr-a", "dr-b"}, dst.ids)
	})

	t.Run("read error", func(t *testing.T) {
		src := mocks.NewPersonaReader(t)
		src.On("ListPersonas", mock.Anything).Return(nil, assert.AnError).Once()
		dst := &recordingWriter{}

		count, err := seedPersonas(t.Context(), src, dst)

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to read seed personas")
		assert.Zero(t, count)
		assert.Empty(t, dst.ids)
	})

	t.Run("write error", func(t *testing.T) {
		src := mocks.NewPersonaReader(t)
		src.On("ListPersonas", mock.Anything).Return(records, nil).Once()
		dst := &recordingWriter{err: assert.AnError}

		_, err := seedPersonas(t.Context(), src, dst)

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to seed persona dr-a")
	})
}
