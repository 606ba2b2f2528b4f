// Package metrics holds the Prometheus collectors for canvas actions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canvasd",
		Name:      "actions_total",
		Help:      "Editor actions applied, by action.",
	}, []string{"action"})

	actionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canvasd",
		Name:      "action_errors_total",
		Help:      "Editor actions that failed, by action.",
	}, []string{"action"})

	undoNoop = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canvasd",
		Name:      "undo_noop_total",
		Help:      "Undo requests at the oldest snapshot.",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "canvasd",
		Name:      "sessions_active",
		Help:      "Mounted canvas sessions.",
	})

	exportBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "canvasd",
		Name:      "export_bytes",
		Help:      "Size of exported images.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// Action counts one editor action, or one failure when err is non-nil.
func Action(action string, err error) {
	if err != nil {
		actionErrors.WithLabelValues(action).Inc()
		return
	}
	actionsTotal.WithLabelValues(action).Inc()
}

// UndoNoop counts an undo that had nothing to undo.
func UndoNoop() { undoNoop.Inc() }

// SessionOpened and SessionClosed track mounted sessions.
func SessionOpened() { sessionsActive.Inc() }

func SessionClosed() { sessionsActive.Dec() }

// Exported records the size of an exported image.
func Exported(n int) { exportBytes.Observe(float64(n)) }
