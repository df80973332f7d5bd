package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
)

const locationBatchSize = 100

// LocationService resolves persona location labels to coordinates in the background.
type LocationService struct {
	log          *slog.Logger             // Logger for logging service activities
	store        repository.LocationStore // Location label storage
	provider     geocoding.Provider       // Geocoding provider for external geocoding services
	providerName string                   // Name of the provider for metrics labeling
	metrics      *metrics.Metrics         // Metrics for tracking service performance
	numWorkers   int                      // Number of concurrent workers for processing
	pollInterval time.Duration            // Interval between resolver runs
	addrPrefix   string                   // Prepended to each label (country, region, etc.)
}

// NewLocationService creates a new instance of LocationService.
func NewLocationService(
	log *slog.Logger,
	store repository.LocationStore,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addressPrefix string,
) *LocationService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &LocationService{
		log:          log,
		store:        store,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		addrPrefix:   addressPrefix,
	}
}

// Run resolves pending labels once immediately and then on every tick until ctx is cancelled.
func (ls *LocationService) Run(ctx context.Context) {
	ticker := time.NewTicker(ls.pollInterval)
	defer ticker.Stop()

	ls.log.InfoContext(ctx, "Location resolver started...")
	ls.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			ls.log.InfoContext(ctx, "Location resolver stopped.")
			return
		case <-ticker.C:
			ls.log.InfoContext(ctx, "Polling for unresolved locations...")
			ls.processBatch(ctx)
		}
	}
}

// processBatch registers new persona labels, fetches unresolved ones and geocodes them with
// a pool of workers. It returns when every label of the batch is handled.
func (ls *LocationService) processBatch(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	added, err := ls.store.SyncLocations(ctx)
	if err != nil {
		ls.log.ErrorContext(ctx, "Failed to sync location labels", "error", err)
	} else if added > 0 {
		ls.log.InfoContext(ctx, "New location labels registered", "count", added)
	}

	tasks, err := ls.store.FetchUnresolvedLocations(ctx, locationBatchSize)
	if err != nil {
		ls.log.ErrorContext(ctx, "Failed to fetch unresolved locations", "error", err)
		return
	}
	if len(tasks) == 0 {
		ls.log.InfoContext(ctx, "No locations to resolve.")
		return
	}

	ls.log.InfoContext(
		ctx,
		"Found locations to resolve. Starting worker pool.",
		"jobs", len(tasks),
		"num_workers", ls.numWorkers,
	)

	jobs := make(chan models.LocationTask, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= ls.numWorkers; i++ {
		wgr.Add(1)
		go ls.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	ls.log.InfoContext(ctx, "Processing batch finished")
}

func (ls *LocationService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.LocationTask) {
	defer wg.Done()
	for task := range jobs {
		ls.metrics.ActiveWorkers.Inc()
		ls.resolve(ctx, idx, task)
		ls.metrics.ActiveWorkers.Dec()
	}
}

func (ls *LocationService) resolve(ctx context.Context, idx int, task models.LocationTask) {
	ls.log.DebugContext(ctx, "Resolving location", "worker", idx, "label", task.Label, "attempts", task.Attempts)

	startTime := time.Now()
	coords, err := ls.provider.Geocode(ctx, ls.addrPrefix+task.Label)
	ls.metrics.RequestSeconds.WithLabelValues(ls.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		ls.log.ErrorContext(ctx, "Failed to geocode", "worker", idx, "label", task.Label, "error", err)
		ls.metrics.TaskProcessed.WithLabelValues("failure").Inc()
		ls.metrics.APIErrors.Inc()

		if err = ls.store.IncrementFailureCount(ctx, task.Label, err.Error()); err != nil {
			ls.log.ErrorContext(
				ctx,
				"Could not update failure count for location",
				"worker", idx,
				"label", task.Label,
				"error", err,
			)
		}
		return
	}

	ls.metrics.TaskProcessed.WithLabelValues("success").Inc()

	if err = ls.store.UpdateLocationCoordinates(ctx, task.Label, *coords); err != nil {
		ls.log.ErrorContext(
			ctx,
			"Failed to update coordinates for location",
			"worker", idx,
			"label", task.Label,
			"error", err,
		)
		return
	}

	ls.log.DebugContext(ctx, "Worker resolved the location", "worker", idx, "label", task.Label)
}
