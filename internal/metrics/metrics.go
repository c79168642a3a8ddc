// Package metrics exposes batch counters for Prometheus, either served over
// HTTP while a batch runs or written once to a node-exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifbatch_conversions_total",
		Help: "Total number of files handled, by status",
	}, []string{"status"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gifbatch_conversion_duration_seconds",
		Help:    "Wall time of successful conversions",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
	})

	OutputBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gifbatch_output_bytes_total",
		Help: "Total size of produced GIF files",
	})

	BatchFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gifbatch_batch_files",
		Help: "Number of recognized video files in the current batch",
	})

	CurrentProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gifbatch_current_progress_percent",
		Help: "Progress of the conversion in flight",
	})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifbatch_uploads_total",
		Help: "Total number of GIF uploads, by status",
	}, []string{"status"})
)

// WriteTextfile writes the default registry to path in the text exposition
// format, for the node-exporter textfile collector. The write is atomic.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
