/*
 * stream-catalog is a project to load and relay the catalog of an IPTV service.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package acquire

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeTimeout  = "timeout"
	outcomeEmpty    = "empty"
	outcomeCanceled = "canceled"
)

// Metrics are the Prometheus collectors updated by an Acquirer.
type Metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	channels *prometheus.GaugeVec
	failures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stream_catalog",
			Name:      "adapter_attempts_total",
			Help:      "Adapter attempts by adapter and outcome.",
		}, []string{"adapter", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stream_catalog",
			Name:      "adapter_duration_seconds",
			Help:      "Duration of adapter attempts.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"adapter"}),
		channels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stream_catalog",
			Name:      "channels_loaded",
			Help:      "Channels returned by the last successful acquisition.",
		}, []string{"adapter", "content_type"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stream_catalog",
			Name:      "acquisition_failures_total",
			Help:      "Acquisitions where every adapter failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.duration, m.channels, m.failures)
	}
	return m
}

func (m *Metrics) observeAttempt(adapter, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(adapter, outcome).Inc()
	m.duration.WithLabelValues(adapter).Observe(elapsed.Seconds())
}

func (m *Metrics) observeSuccess(adapter, contentType string, n int) {
	if m == nil {
		return
	}
	m.channels.WithLabelValues(adapter, contentType).Set(float64(n))
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
