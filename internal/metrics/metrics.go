// Package metrics exposes Prometheus counters and histograms for the
// batch pipelines (codec I/O, boat-fit, water-body filtering). Metrics
// are only served while a batch job is running; the tile data store
// itself never listens on a socket.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every counter/histogram the CLI cares about behind a
// single Prometheus registry, so it can be wired into an http.Handler
// for the duration of one batch run and discarded afterwards.
type Registry struct {
	reg *prometheus.Registry

	CodecBytesIn          prometheus.Counter
	CodecBytesOut         prometheus.Counter
	RoaringRunOptimizeSeconds prometheus.Histogram
	BoatPlacementsChecked *prometheus.CounterVec
	BoatPlacementsFitted  *prometheus.CounterVec
	WaterBodiesFound      prometheus.Counter
	WaterBodiesFiltered   prometheus.Counter
}

// New creates a fresh, independent registry (never the global default
// one, so concurrent test runs and CLI invocations never collide).
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		CodecBytesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "tilestore_codec_bytes_read_total",
			Help: "Bytes read from persisted map files, post-gzip.",
		}),
		CodecBytesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "tilestore_codec_bytes_written_total",
			Help: "Bytes written to persisted map files, pre-gzip.",
		}),
		RoaringRunOptimizeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tilestore_roaring_run_optimize_seconds",
			Help:    "Time spent run-optimizing a roaring bitmap before save.",
			Buckets: prometheus.DefBuckets,
		}),
		BoatPlacementsChecked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tilestore_boatfit_placements_checked_total",
			Help: "Candidate boat placements evaluated, by boat size.",
		}, []string{"boat_size"}),
		BoatPlacementsFitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tilestore_boatfit_placements_fitted_total",
			Help: "Candidate boat placements that passed the fit predicate, by boat size.",
		}, []string{"boat_size"}),
		WaterBodiesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "tilestore_water_bodies_found_total",
			Help: "Connected water bodies discovered across all planes.",
		}),
		WaterBodiesFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tilestore_water_bodies_filtered_total",
			Help: "Connected water bodies suppressed for falling below the size threshold.",
		}),
	}
}

// Gatherer exposes the underlying prometheus.Gatherer for an HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
