// Copyright Project Contour Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides Prometheus collectors for yarhs. The registry is
// kept in-process only: no component exposes a /metrics endpoint, since the
// discovery API's endpoint table is closed and adding one would mean a third
// listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ActiveConnectionsGauge = "yarhs_active_connections"
	AcceptedConnTotal      = "yarhs_accepted_connections_total"
	RejectedConnTotal      = "yarhs_rejected_connections_total"
	ListenerReloadsTotal   = "yarhs_listener_reloads_total"
	ListenerReloadFailures = "yarhs_listener_reload_failures_total"
	DiscoveryWritesTotal   = "yarhs_discovery_writes_total"
	DiscoveryNACKsTotal    = "yarhs_discovery_nacks_total"
	CacheHitsTotal         = "yarhs_cache_hits_total"
	CacheMissesTotal       = "yarhs_cache_misses_total"
)

// Metrics holds every collector registered by yarhs.
type Metrics struct {
	ActiveConnections *prometheus.GaugeVec
	AcceptedConn      *prometheus.CounterVec
	RejectedConn      *prometheus.CounterVec
	ListenerReloads   *prometheus.CounterVec
	ReloadFailures    *prometheus.CounterVec
	DiscoveryWrites   *prometheus.CounterVec
	DiscoveryNACKs    *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

// NewMetrics creates and registers the collector set against registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ActiveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: ActiveConnectionsGauge,
			Help: "Number of connections currently open, by listener.",
		}, []string{"listener"}),
		AcceptedConn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: AcceptedConnTotal,
			Help: "Total connections accepted, by listener.",
		}, []string{"listener"}),
		RejectedConn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RejectedConnTotal,
			Help: "Total connections rejected due to max_connections, by listener.",
		}, []string{"listener"}),
		ListenerReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ListenerReloadsTotal,
			Help: "Total successful listener restarts, by listener.",
		}, []string{"listener"}),
		ReloadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ListenerReloadFailures,
			Help: "Total failed listener restart attempts, by listener.",
		}, []string{"listener"}),
		DiscoveryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DiscoveryWritesTotal,
			Help: "Total accepted discovery API writes, by resource kind.",
		}, []string{"kind"}),
		DiscoveryNACKs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DiscoveryNACKsTotal,
			Help: "Total rejected discovery API writes, by resource kind.",
		}, []string{"kind"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: CacheHitsTotal,
			Help: "Total conditional-GET requests answered 304.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: CacheMissesTotal,
			Help: "Total conditional-GET requests that required a full response.",
		}),
	}

	registry.MustRegister(
		m.ActiveConnections,
		m.AcceptedConn,
		m.RejectedConn,
		m.ListenerReloads,
		m.ReloadFailures,
		m.DiscoveryWrites,
		m.DiscoveryNACKs,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}
