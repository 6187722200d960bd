// Package metrics holds the Prometheus collectors shared by the floor
// components. They register on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tableflow"

var (
	LogEntriesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_entries_appended_total",
		Help:      "Activity log entries appended, by action.",
	}, []string{"action"})

	DuplicateWritesSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_writes_suppressed_total",
		Help:      "Open/close log writes skipped because the transition was already logged.",
	}, []string{"action"})

	StorageCorruptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_corruptions_total",
		Help:      "Stored values that could not be decoded and were replaced by defaults.",
	}, []string{"kind"})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Time spent recomputing and persisting all tables in one tick.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	})

	TablesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tables",
		Help:      "Tables currently in each status.",
	}, []string{"status"})

	RejectedCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_commands_total",
		Help:      "Operator commands rejected at the command boundary, by reason.",
	}, []string{"command", "reason"})
)
