// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package launchman

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives supervision events.  The Supervisor uses a no-op
// implementation unless SetMetrics is called.
type Metrics interface {
	// Launch records the outcome of a start: "started",
	// "already_running", "invalid_config" or "spawn_failed".
	Launch(id string, result string)

	// Stop records which path a stop took: "tracked", "port" or "none".
	Stop(id string, path string)

	// ForcedKill records a process group that outlived its grace period.
	ForcedKill(id string)

	// TerminationDuration records how long a tracked stop took.
	TerminationDuration(id string, d time.Duration)

	// LivenessCheck records how a liveness query was answered:
	// "tracked", "listening" or "down".
	LivenessCheck(result string)

	// Tracked records the size of the handle table.
	Tracked(n int)
}

type noopMetrics struct{}

func (noopMetrics) Launch(string, string)                      {}
func (noopMetrics) Stop(string, string)                        {}
func (noopMetrics) ForcedKill(string)                          {}
func (noopMetrics) TerminationDuration(string, time.Duration) {}
func (noopMetrics) LivenessCheck(string)                       {}
func (noopMetrics) Tracked(int)                                {}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}

// PrometheusMetrics implements Metrics with Prometheus collectors, all
// registered on a private registry.
type PrometheusMetrics struct {
	launches    *prometheus.CounterVec
	stops       *prometheus.CounterVec
	forced      *prometheus.CounterVec
	termination *prometheus.HistogramVec
	liveness    *prometheus.CounterVec
	tracked     prometheus.Gauge

	registry *prometheus.Registry
}

func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = "launchman"
	}
	pm := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
	}

	pm.launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Total number of app start requests, by outcome",
		},
		[]string{"app", "result"},
	)
	pm.stops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stops_total",
			Help:      "Total number of app stop requests, by termination path",
		},
		[]string{"app", "path"},
	)
	pm.forced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_kills_total",
			Help:      "Process groups killed after the grace period expired",
		},
		[]string{"app"},
	)
	pm.termination = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "termination_duration_seconds",
			Help:      "Time taken to stop a tracked process group",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"app"},
	)
	pm.liveness = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liveness_checks_total",
			Help:      "Liveness queries, by how they were answered",
		},
		[]string{"result"},
	)
	pm.tracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_processes",
			Help:      "Processes currently tracked by the supervisor",
		},
	)

	pm.registry.MustRegister(
		pm.launches,
		pm.stops,
		pm.forced,
		pm.termination,
		pm.liveness,
		pm.tracked,
	)
	return pm
}

func (pm *PrometheusMetrics) Launch(id string, result string) {
	pm.launches.WithLabelValues(id, result).Inc()
}

func (pm *PrometheusMetrics) Stop(id string, path string) {
	pm.stops.WithLabelValues(id, path).Inc()
}

func (pm *PrometheusMetrics) ForcedKill(id string) {
	pm.forced.WithLabelValues(id).Inc()
}

func (pm *PrometheusMetrics) TerminationDuration(id string, d time.Duration) {
	pm.termination.WithLabelValues(id).Observe(d.Seconds())
}

func (pm *PrometheusMetrics) LivenessCheck(result string) {
	pm.liveness.WithLabelValues(result).Inc()
}

func (pm *PrometheusMetrics) Tracked(n int) {
	pm.tracked.Set(float64(n))
}

// Registry returns the registry to serve, e.g. with promhttp.HandlerFor.
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

var _ Metrics = (*PrometheusMetrics)(nil)
