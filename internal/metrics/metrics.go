// Package metrics exports audit results in the Prometheus text format, for
// the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/reconcile"
)

const namespace = "vercheck"

// Recorder holds the gauges of one audit on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	packages         prometheus.Gauge
	failed           prometheus.Gauge
	manifestPackages prometheus.Gauge
	extraPackages    prometheus.Gauge
	warnings         *prometheus.GaugeVec
	buildDuration    prometheus.Gauge
}

// NewRecorder creates a recorder. constLabels are attached to every series.
func NewRecorder(constLabels prometheus.Labels) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		packages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "packages",
			Help:        "Number of entries in the import catalog.",
			ConstLabels: constLabels,
		}),
		failed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "failed_packages",
			Help:        "Number of declared packages that could not be loaded.",
			ConstLabels: constLabels,
		}),
		manifestPackages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "manifest_packages",
			Help:        "Number of entries in the manifest catalog.",
			ConstLabels: constLabels,
		}),
		extraPackages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "extra_packages",
			Help:        "Manifest entries with no import counterpart.",
			ConstLabels: constLabels,
		}),
		warnings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "warnings",
			Help:        "Reconciliation warnings by kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		buildDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "build_duration_seconds",
			Help:        "Time taken to build both catalogs and reconcile them.",
			ConstLabels: constLabels,
		}),
	}
}

// Audit is what the recorder needs to know about an audit.
type Audit struct {
	Packages         int
	Failed           int
	ManifestPackages int
	Result           *reconcile.Result
	Duration         time.Duration
}

// Observe sets every gauge from a. Warning kinds that did not occur are
// reported as zero so alerts can match on absence.
func (r *Recorder) Observe(a Audit) {
	r.packages.Set(float64(a.Packages))
	r.failed.Set(float64(a.Failed))
	r.manifestPackages.Set(float64(a.ManifestPackages))
	r.buildDuration.Set(a.Duration.Seconds())

	var counts map[reconcile.Kind]int
	if a.Result != nil {
		r.extraPackages.Set(float64(len(a.Result.Extras)))
		counts = a.Result.CountByKind()
	} else {
		r.extraPackages.Set(0)
	}
	for _, k := range reconcile.Kinds() {
		r.warnings.WithLabelValues(string(k)).Set(float64(counts[k]))
	}
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
