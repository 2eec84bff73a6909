// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics backed by a private prometheus registry.

package control

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server collectors.
type Metrics struct {
	reg *prometheus.Registry

	Keys              *prometheus.GaugeVec
	Buckets           *prometheus.GaugeVec
	ConnectedClients  prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	CommandsTotal     prometheus.Counter
	CronLoopsTotal    prometheus.Counter
	FileEventsTotal   prometheus.Gauge
	TimersFiredTotal  prometheus.Gauge
	DirtyKeys         prometheus.Gauge
	LastSaveTimestamp prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Keys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hioloadkv_db_keys",
			Help: "Number of keys per database",
		}, []string{"db"}),
		Buckets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hioloadkv_db_buckets",
			Help: "Hash table bucket count per database",
		}, []string{"db"}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hioloadkv_connected_clients",
			Help: "Number of connected clients",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hioloadkv_connections_received_total",
			Help: "Total number of accepted connections",
		}),
		CommandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hioloadkv_commands_processed_total",
			Help: "Total number of dispatched queries",
		}),
		CronLoopsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hioloadkv_cron_loops_total",
			Help: "Total number of maintenance timer runs",
		}),
		// The reactor keeps its own cumulative counters; these mirror them.
		FileEventsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hioloadkv_file_events_processed",
			Help: "File events processed by the reactor",
		}),
		TimersFiredTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hioloadkv_timers_fired",
			Help: "Timers fired by the reactor",
		}),
		DirtyKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hioloadkv_changes_since_last_save",
			Help: "Writes since the last snapshot",
		}),
		LastSaveTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hioloadkv_last_save_timestamp_seconds",
			Help: "Unix time of the last successful snapshot",
		}),
	}
	m.reg.MustRegister(
		m.Keys, m.Buckets, m.ConnectedClients, m.ConnectionsTotal,
		m.CommandsTotal, m.CronLoopsTotal, m.FileEventsTotal,
		m.TimersFiredTotal, m.DirtyKeys, m.LastSaveTimestamp,
	)
	return m
}

// Registry exposes the registry for HTTP exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// SetDB records the key and bucket counts of database db.
func (m *Metrics) SetDB(db, keys, buckets int) {
	label := strconv.Itoa(db)
	m.Keys.WithLabelValues(label).Set(float64(keys))
	m.Buckets.WithLabelValues(label).Set(float64(buckets))
}

// Snapshot flattens the registry into name{labels} -> value.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.reg.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range metric.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case metric.GetGauge() != nil:
				out[name] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				out[name] = metric.GetCounter().GetValue()
			}
		}
	}
	return out, nil
}
