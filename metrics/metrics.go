// Package metrics contains the prometheus infrastructure.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildMode partitions builds by where the genesis state came from.
type BuildMode string

const (
	BuildModeDynamic BuildMode = "dynamic"
	BuildModeFrozen  BuildMode = "frozen"
)

// BuildStatus partitions builds by outcome.
type BuildStatus string

const (
	BuildStatusOK    BuildStatus = "ok"
	BuildStatusError BuildStatus = "error"
)

type CacheReadStatus string

const (
	CacheReadStatusHit      CacheReadStatus = "hit"
	CacheReadStatusMiss     CacheReadStatus = "miss"
	CacheReadStatusBadValue CacheReadStatus = "bad_value" // Value in cache was not valid (likely because of mismatched types / CBOR encoding).
	CacheReadStatusError    CacheReadStatus = "error"     // Other internal error reading from cache.
)

// BuildMetrics instruments chain spec builds.
type BuildMetrics struct {
	// Name of the cache whose reads are counted.
	cache string

	builds         *prometheus.CounterVec
	buildDurations *prometheus.HistogramVec
	cacheReads     *prometheus.CounterVec
}

// NewDefaultBuildMetrics creates Prometheus metric instrumentation for chain
// spec builds. Default metrics include:
//
// 1. Counts of builds, partitioned by profile, mode and status.
// 2. Durations of builds, partitioned by profile.
// 3. Counts of local cache reads, partitioned by status.
func NewDefaultBuildMetrics(cache string) BuildMetrics {
	metrics := BuildMetrics{
		cache: cache,
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainspec_builds",
				Help: "How many chain spec builds ran, partitioned by profile, mode and status.",
			},
			[]string{"profile", "mode", "status"}, // Labels.
		),
		buildDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "chainspec_build_duration_seconds",
				Help: "How long chain spec builds take, partitioned by profile.",
			},
			[]string{"profile"}, // Labels.
		),
		cacheReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainspec_cache_reads",
				Help: "How many local cache reads occur, partitioned by status (hit, miss, bad_value, error).",
			},
			[]string{"cache", "result"}, // Labels.
		),
	}
	metrics.builds = registerOnce(metrics.builds).(*prometheus.CounterVec)
	metrics.buildDurations = registerOnce(metrics.buildDurations).(*prometheus.HistogramVec)
	metrics.cacheReads = registerOnce(metrics.cacheReads).(*prometheus.CounterVec)
	return metrics
}

// ObserveBuild records the outcome and duration of one build.
func (m *BuildMetrics) ObserveBuild(profile string, mode BuildMode, status BuildStatus, elapsed time.Duration) {
	m.builds.WithLabelValues(profile, string(mode), string(status)).Inc()
	m.buildDurations.WithLabelValues(profile).Observe(elapsed.Seconds())
}

// Builds returns the counter for the build outcome.
func (m *BuildMetrics) Builds(profile string, mode BuildMode, status BuildStatus) prometheus.Counter {
	return m.builds.WithLabelValues(profile, string(mode), string(status))
}

// LocalCacheReads returns the counter for the local cache read.
func (m *BuildMetrics) LocalCacheReads(status CacheReadStatus) prometheus.Counter {
	return m.cacheReads.WithLabelValues(m.cache, string(status))
}
