// SPDX-License-Identifier: Apache-2.0

// Package metrics provides instrumentation for the scheduling engine: how
// many jobs each policy placed, how many jobs backfill admitted and how long
// each admission's placement took, time advancement, and cluster utilization
// over the run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the interface for scheduler metrics collection.
type Collector interface {
	// RecordPlacement records a job placed onto a node by policy.
	RecordPlacement(policy, nodeID string, elapsed time.Duration)

	// RecordBackfillAdmission records a job admitted early by the
	// conservative-backfill policy.
	RecordBackfillAdmission(jobID string, elapsed time.Duration)

	// RecordTick records one time-advancement step.
	RecordTick(minutesAdvanced int, elapsed time.Duration)

	// RecordUtilization records a cluster-wide CPU/GPU utilization sample,
	// each a percentage in [0, 100].
	RecordUtilization(cpuPct, gpuPct float64)

	// RecordPersistenceError records a state-document write failure.
	RecordPersistenceError(err error)

	// GetStats returns current metrics statistics.
	GetStats() *Stats

	// Reset resets all metrics.
	Reset()
}

// Stats contains aggregated scheduler metrics.
type Stats struct {
	TotalPlacements     int64
	PlacementsByPolicy  map[string]int64
	PlacementTimeStats  DurationStats

	TotalBackfillAdmissions int64
	BackfillTimeStats       DurationStats

	TotalTicks           int64
	TotalMinutesAdvanced int64
	TickTimeStats        DurationStats

	UtilizationSamples    int64
	LastCPUUtilization    float64
	LastGPUUtilization    float64
	AverageCPUUtilization float64
	AverageGPUUtilization float64

	PersistenceErrors int64

	StartTime time.Time
	Duration  time.Duration
}

// DurationStats contains statistics for duration measurements.
type DurationStats struct {
	Count   int64
	Total   time.Duration
	Min     time.Duration
	Max     time.Duration
	Average time.Duration
}

// InMemoryCollector is an in-memory implementation of Collector.
type InMemoryCollector struct {
	mu sync.RWMutex

	totalPlacements    int64
	placementsByPolicy map[string]*int64
	placementTimes     *durationAggregator

	totalBackfillAdmissions int64
	backfillTimes           *durationAggregator

	totalTicks           int64
	totalMinutesAdvanced int64
	tickTimes            *durationAggregator

	utilizationSamples int64
	cpuUtilTotal       float64
	gpuUtilTotal       float64
	lastCPUUtil        float64
	lastGPUUtil        float64

	persistenceErrors int64

	startTime time.Time
}

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		placementsByPolicy: make(map[string]*int64),
		placementTimes:     newDurationAggregator(),
		backfillTimes:      newDurationAggregator(),
		tickTimes:          newDurationAggregator(),
		startTime:          time.Now(),
	}
}

// RecordPlacement records a job placed onto a node by policy.
func (c *InMemoryCollector) RecordPlacement(policy, nodeID string, elapsed time.Duration) {
	atomic.AddInt64(&c.totalPlacements, 1)
	incrementMapCounter(&c.mu, c.placementsByPolicy, policy)
	c.placementTimes.add(elapsed)
}

// RecordBackfillAdmission records a job admitted early by conservative backfill.
func (c *InMemoryCollector) RecordBackfillAdmission(jobID string, elapsed time.Duration) {
	atomic.AddInt64(&c.totalBackfillAdmissions, 1)
	c.backfillTimes.add(elapsed)
}

// RecordTick records one time-advancement step.
func (c *InMemoryCollector) RecordTick(minutesAdvanced int, elapsed time.Duration) {
	atomic.AddInt64(&c.totalTicks, 1)
	atomic.AddInt64(&c.totalMinutesAdvanced, int64(minutesAdvanced))
	c.tickTimes.add(elapsed)
}

// RecordUtilization records a cluster-wide utilization sample.
func (c *InMemoryCollector) RecordUtilization(cpuPct, gpuPct float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.utilizationSamples++
	c.cpuUtilTotal += cpuPct
	c.gpuUtilTotal += gpuPct
	c.lastCPUUtil = cpuPct
	c.lastGPUUtil = gpuPct
}

// RecordPersistenceError records a state-document write failure.
func (c *InMemoryCollector) RecordPersistenceError(err error) {
	if err == nil {
		return
	}
	atomic.AddInt64(&c.persistenceErrors, 1)
}

// GetStats returns current metrics statistics.
func (c *InMemoryCollector) GetStats() *Stats {
	c.mu.RLock()
	samples := c.utilizationSamples
	cpuTotal := c.cpuUtilTotal
	gpuTotal := c.gpuUtilTotal
	lastCPU := c.lastCPUUtil
	lastGPU := c.lastGPUUtil
	c.mu.RUnlock()

	stats := &Stats{
		TotalPlacements:         atomic.LoadInt64(&c.totalPlacements),
		PlacementsByPolicy:      c.copyMapCounters(c.placementsByPolicy),
		PlacementTimeStats:      c.placementTimes.stats(),
		TotalBackfillAdmissions: atomic.LoadInt64(&c.totalBackfillAdmissions),
		BackfillTimeStats:       c.backfillTimes.stats(),
		TotalTicks:              atomic.LoadInt64(&c.totalTicks),
		TotalMinutesAdvanced:    atomic.LoadInt64(&c.totalMinutesAdvanced),
		TickTimeStats:           c.tickTimes.stats(),
		UtilizationSamples:      samples,
		LastCPUUtilization:      lastCPU,
		LastGPUUtilization:      lastGPU,
		PersistenceErrors:       atomic.LoadInt64(&c.persistenceErrors),
		StartTime:               c.startTime,
		Duration:                time.Since(c.startTime),
	}

	if samples > 0 {
		stats.AverageCPUUtilization = cpuTotal / float64(samples)
		stats.AverageGPUUtilization = gpuTotal / float64(samples)
	}

	return stats
}

// Reset resets all metrics.
func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	atomic.StoreInt64(&c.totalPlacements, 0)
	atomic.StoreInt64(&c.totalBackfillAdmissions, 0)
	atomic.StoreInt64(&c.totalTicks, 0)
	atomic.StoreInt64(&c.totalMinutesAdvanced, 0)
	atomic.StoreInt64(&c.persistenceErrors, 0)

	c.placementsByPolicy = make(map[string]*int64)
	c.placementTimes = newDurationAggregator()
	c.backfillTimes = newDurationAggregator()
	c.tickTimes = newDurationAggregator()

	c.utilizationSamples = 0
	c.cpuUtilTotal = 0
	c.gpuUtilTotal = 0
	c.lastCPUUtil = 0
	c.lastGPUUtil = 0

	c.startTime = time.Now()
}

// incrementMapCounter safely increments a counter in a map.
func incrementMapCounter(mu *sync.RWMutex, m map[string]*int64, key string) {
	mu.Lock()
	counter, exists := m[key]
	if !exists {
		var v int64
		counter = &v
		m[key] = counter
	}
	mu.Unlock()

	atomic.AddInt64(counter, 1)
}

// copyMapCounters creates a copy of string map counters.
func (c *InMemoryCollector) copyMapCounters(m map[string]*int64) map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64, len(m))
	for k, v := range m {
		result[k] = atomic.LoadInt64(v)
	}
	return result
}

// durationAggregator aggregates duration statistics.
type durationAggregator struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

func newDurationAggregator() *durationAggregator {
	return &durationAggregator{
		min: time.Duration(1<<63 - 1), // MaxInt64
	}
}

func (d *durationAggregator) add(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.count++
	d.total += duration

	if duration < d.min {
		d.min = duration
	}
	if duration > d.max {
		d.max = duration
	}
}

func (d *durationAggregator) stats() DurationStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := DurationStats{
		Count: d.count,
		Total: d.total,
		Min:   d.min,
		Max:   d.max,
	}

	if d.count > 0 {
		stats.Average = time.Duration(int64(d.total) / d.count)
	} else {
		stats.Min = 0
	}

	return stats
}

// NoOpCollector is a no-op implementation of Collector.
type NoOpCollector struct{}

func (NoOpCollector) RecordPlacement(policy, nodeID string, elapsed time.Duration)  {}
func (NoOpCollector) RecordBackfillAdmission(jobID string, elapsed time.Duration)   {}
func (NoOpCollector) RecordTick(minutesAdvanced int, elapsed time.Duration)         {}
func (NoOpCollector) RecordUtilization(cpuPct, gpuPct float64)                      {}
func (NoOpCollector) RecordPersistenceError(err error)                             {}
func (NoOpCollector) GetStats() *Stats                                             { return &Stats{} }
func (NoOpCollector) Reset()                                                       {}

// Global default collector.
var defaultCollector Collector = &NoOpCollector{}

// SetDefaultCollector sets the default metrics collector.
func SetDefaultCollector(collector Collector) {
	if collector == nil {
		collector = &NoOpCollector{}
	}
	defaultCollector = collector
}

// GetDefaultCollector returns the default metrics collector.
func GetDefaultCollector() Collector {
	return defaultCollector
}
