// Package metrics provides Prometheus metrics for the notebook bridge.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Command metrics
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tangent_bridge_commands_total",
			Help: "Total number of bridge commands handled",
		},
		[]string{"command", "status"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tangent_bridge_command_duration_seconds",
			Help:    "Bridge command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Notebook content metrics
	notebookBytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tangent_notebook_bytes_read_total",
			Help: "Total bytes returned by notebook reads",
		},
	)

	notebookBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tangent_notebook_bytes_written_total",
			Help: "Total bytes written by notebook writes",
		},
	)

	recentFilesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tangent_recent_files",
			Help: "Number of entries in the recent-file list after the last change",
		},
	)

	// Transport metrics
	activeConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tangent_bridge_active_connections",
			Help: "Number of connected UI clients",
		},
		[]string{"transport"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCommand records one command invocation.
func RecordCommand(command string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordNotebookRead records the size of a successful notebook read.
func RecordNotebookRead(bytes int) {
	notebookBytesRead.Add(float64(bytes))
}

// RecordNotebookWrite records the size of a successful notebook write.
func RecordNotebookWrite(bytes int) {
	notebookBytesWritten.Add(float64(bytes))
}

// SetRecentFiles sets the current recent-file list length.
func SetRecentFiles(count int) {
	recentFilesCount.Set(float64(count))
}

// ConnectionOpened increments the connection gauge for a transport.
func ConnectionOpened(transport string) {
	activeConnections.WithLabelValues(transport).Inc()
}

// ConnectionClosed decrements the connection gauge for a transport.
func ConnectionClosed(transport string) {
	activeConnections.WithLabelValues(transport).Dec()
}
