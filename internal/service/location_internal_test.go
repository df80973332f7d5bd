package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProcessBatch(t *testing.T) {
	mockStore := mocks.NewLocationStore(t)
	mockProvider := mocks.NewProvider(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	metrics := metrics.NewMetrics(reg)
	ctx := t.Context()
	service := NewLocationService(logger, mockStore, mockProvider, "static", metrics, 2, time.Second, "")

	t.Run("successful processing", func(t *testing.T) {
		sampleTasks := []models.LocationTask{{Label: "Tokyo, Japan"}}
		sampleCoords := &models.Coordinates{Latitude: 35.6762, Longitude: 139.6503}

		mockStore.On("SyncLocations", ctx).Return(int64(1), nil).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, "Tokyo, Japan").Return(sampleCoords, nil).Once()
		mockStore.On("UpdateLocationCoordinates", ctx, "Tokyo, Japan", *sampleCoords).Return(nil).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("sync error does not stop the batch", func(t *testing.T) {
		mockStore.On("SyncLocations", ctx).Return(int64(0), assert.AnError).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return([]models.LocationTask{}, nil).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
	})

	t.Run("fetch returns error", func(t *testing.T) {
		mockStore.On("SyncLocations", ctx).Return(int64(0), nil).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return(nil, assert.AnError).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("geocoding provider returns error", func(t *testing.T) {
		sampleTasks := []models.LocationTask{{Label: "Atlantis", Attempts: 2}}
		geocodeErr := errors.New("geocoding failed")

		mockStore.On("SyncLocations", ctx).Return(int64(0), nil).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, "Atlantis").Return(nil, geocodeErr).Once()
		mockStore.On("IncrementFailureCount", ctx, "Atlantis", geocodeErr.Error()).Return(nil).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("error to increment failure count", func(t *testing.T) {
		sampleTasks := []models.LocationTask{{Label: "Atlantis"}}
		geocodeErr := errors.New("geocoding failed")

		mockStore.On("SyncLocations", ctx).Return(int64(0), nil).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, "Atlantis").Return(nil, geocodeErr).Once()
		mockStore.On("IncrementFailureCount", ctx, "Atlantis", geocodeErr.Error()).Return(assert.AnError).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("error to update coordinates", func(t *testing.T) {
		sampleTasks := []models.LocationTask{{Label: "Lagos, Nigeria"}}
		sampleCoords := &models.Coordinates{Latitude: 6.5244, Longitude: 3.3792}

		mockStore.On("SyncLocations", ctx).Return(int64(0), nil).Once()
		mockStore.On("FetchUnresolvedLocations", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, "Lagos, Nigeria").Return(sampleCoords, nil).Once()
		mockStore.On("UpdateLocationCoordinates", ctx, "Lagos, Nigeria", *sampleCoords).
			Return(assert.AnError).Once()

		service.processBatch(ctx)

		mockStore.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("cancelled context skips the batch", func(t *testing.T) {
		cctx, cancel := context.WithCancel(t.Context())
		cancel()

		service.processBatch(cctx)

		mockStore.AssertExpectations(t)
	})

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.TaskProcessed.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.TaskProcessed.WithLabelValues("failure")), 1e-9)
	assert.Zero(t, testutil.ToFloat64(metrics.ActiveWorkers))
}

func TestProcessBatch_AddressPrefix(t *testing.T) {
	mockStore := mocks.NewLocationStore(t)
	mockProvider := mocks.NewProvider(t)
	ctx := t.Context()
	service := NewLocationService(
		slog.Default(), mockStore, mockProvider, "google",
		metrics.NewMetrics(prometheus.NewRegistry()), 0, time.Second, "Hospital near ",
	)
	coords := &models.Coordinates{Latitude: 48.1351, Longitude: 11.5820}

	mockStore.On("SyncLocations", ctx).Return(int64(0), nil).Once()
	mockStore.On("FetchUnresolvedLocations", ctx, 100).
		Return([]models.LocationTask{{Label: "Munich, Germany"}}, nil).Once()
	mockProvider.On("Geocode", ctx, "Hospital near Munich, Germany").Return(coords, nil).Once()
	mockStore.On("UpdateLocationCoordinates", ctx, "Munich, Germany", *coords).Return(nil).Once()

	service.processBatch(ctx)

	assert.Equal(t, 1, service.numWorkers)
}

func TestRun_StopsOnCancel(t *testing.T) {
	mockStore := mocks.NewLocationStore(t)
	service := NewLocationService(
		slog.Default(), mockStore, mocks.NewProvider(t), "static",
		metrics.NewMetrics(prometheus.NewRegistry()), 1, time.Hour, "",
	)

	tctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	mockStore.On("SyncLocations", tctx).Return(int64(0), nil).Maybe()
	mockStore.On("FetchUnresolvedLocations", tctx, 100).Return([]models.LocationTask{}, nil).Maybe()

	service.Run(tctx)
}
