package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects render statistics for one run. A nil *Metrics
// records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	frames        prometheus.Counter
	frameSeconds  prometheus.Histogram
	encodeSeconds prometheus.Histogram
}

// NewMetrics registers the run's collectors, labelled with the
// composition and run id.
func NewMetrics(compositionID, runID string) *Metrics {
	labels := prometheus.Labels{"composition": compositionID, "run_id": runID}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "motion2video_frames_rendered_total",
			Help:        "Frames evaluated, drawn and delivered to the encoder.",
			ConstLabels: labels,
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "motion2video_frame_render_seconds",
			Help:        "Time to evaluate and draw one frame.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		encodeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "motion2video_encode_seconds",
			Help:        "Time spent writing frames to the encoder and finishing the file.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	m.registry.MustRegister(m.frames, m.frameSeconds, m.encodeSeconds)
	return m
}

func (m *Metrics) frameRendered(took time.Duration) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameSeconds.Observe(took.Seconds())
}

func (m *Metrics) encoded(took time.Duration) {
	if m == nil {
		return
	}
	m.encodeSeconds.Observe(took.Seconds())
}

// WriteTextfile writes the metrics in the Prometheus text format, for
// node_exporter's textfile collector or a later diff between builds.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
