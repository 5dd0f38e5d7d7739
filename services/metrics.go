package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"onigiri/api/models"
	c "onigiri/api/models/constants"
)

// MetricsCollector records aggregate classification counts and timings.
// It is NOT safe for unsynchronized concurrent mutation: batch workers
// each get their own collector, and the caller merges them after all
// workers finish. The long-lived service-wide aggregate is guarded by
// MetricsService instead.
type MetricsCollector struct {
	VariantsProcessed  int
	ValidationFailures int
	TierCounts         map[c.ClassificationTier]int
	TotalElapsed       time.Duration
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		TierCounts: map[c.ClassificationTier]int{},
	}
}

func (mc *MetricsCollector) Record(result models.ClassificationResult) {
	mc.VariantsProcessed++
	mc.TierCounts[result.Tier]++
	mc.TotalElapsed += result.Elapsed
}

func (mc *MetricsCollector) RecordValidationFailure() {
	mc.ValidationFailures++
}

func (mc *MetricsCollector) Merge(other *MetricsCollector) {
	if other == nil {
		return
	}

	mc.VariantsProcessed += other.VariantsProcessed
	mc.ValidationFailures += other.ValidationFailures
	mc.TotalElapsed += other.TotalElapsed
	for tier, count := range other.TierCounts {
		mc.TierCounts[tier] += count
	}
}

type (
	MetricsService struct {
		Initialized bool
		Config      *models.Config

		aggregate *MetricsCollector
		mux       sync.RWMutex
	}
)

func NewMetricsService(cfg *models.Config) *MetricsService {
	ms := &MetricsService{
		Initialized: false,
		Config:      cfg,
		aggregate:   NewMetricsCollector(),
	}

	ms.Init()

	return ms
}

func (ms *MetricsService) Init() {
	// initialization if necessary
	if !ms.Initialized {
		// - spin up a go routine that will periodically
		//   log a snapshot of the service-wide classification
		//   counters, so long-running deployments leave an
		//   audit trail without any external metrics stack
		go func() {
			s := gocron.NewScheduler(time.UTC)

			interval := ms.Config.Api.MetricsSnapshotIntervalMinutes
			if interval < 1 {
				interval = 15
			}

			s.Every(interval).Minutes().Do(func() {
				fmt.Printf("[%s] - Metrics snapshot : %s\n", time.Now(), ms.SnapshotString())
			})

			s.StartBlocking()
		}()

		ms.Initialized = true
	}
}

// Absorb folds a finished batch's collector into the service-wide
// aggregate under the service mutex.
func (ms *MetricsService) Absorb(collector *MetricsCollector) {
	ms.mux.Lock()
	defer ms.mux.Unlock()

	ms.aggregate.Merge(collector)
}

func (ms *MetricsService) Overview() map[string]interface{} {
	ms.mux.RLock()
	defer ms.mux.RUnlock()

	tierCounts := map[string]interface{}{}
	for tier, count := range ms.aggregate.TierCounts {
		tierCounts[string(tier)] = count
	}

	return map[string]interface{}{
		"variantsProcessed":  ms.aggregate.VariantsProcessed,
		"validationFailures": ms.aggregate.ValidationFailures,
		"tiers":              tierCounts,
		"totalElapsed":       ms.aggregate.TotalElapsed.String(),
	}
}

func (ms *MetricsService) SnapshotString() string {
	ms.mux.RLock()
	defer ms.mux.RUnlock()

	return fmt.Sprintf("processed=%d validationFailures=%d tiers=%v elapsed=%s",
		ms.aggregate.VariantsProcessed, ms.aggregate.ValidationFailures,
		ms.aggregate.TierCounts, ms.aggregate.TotalElapsed)
}
