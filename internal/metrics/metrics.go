package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	registry *prometheus.Registry

	DictionarySize prometheus.Gauge

	BlocksRecognized *prometheus.CounterVec
	BlocksFailed     *prometheus.CounterVec
	BlocksCollided   prometheus.Counter
	BlocksTranscoded *prometheus.CounterVec

	DocumentsWritten  *prometheus.CounterVec
	DocumentsFailed   *prometheus.CounterVec
	DocumentDurations *prometheus.HistogramVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		DictionarySize: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "decfix_dictionary_hashes",
			Help: "The number of distinct password hashes known to the dictionary",
		}),
		BlocksRecognized: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "decfix_blocks_recognized_total",
			Help: "The total number of DEC blocks successfully recognized",
		}, []string{"platform", "resolution"}),
		BlocksFailed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "decfix_blocks_failed_total",
			Help: "The total number of DEC blocks that could not be recognized",
		}, []string{"reason"}),
		BlocksCollided: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "decfix_blocks_collided_total",
			Help: "The total number of DEC blocks whose hash matched more than one known password",
		}),
		BlocksTranscoded: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "decfix_blocks_transcoded_total",
			Help: "The total number of DEC blocks processed for a target platform",
		}, []string{"target", "outcome"}),
		DocumentsWritten: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "decfix_documents_written_total",
			Help: "The total number of patched save documents written",
		}, []string{"target"}),
		DocumentsFailed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "decfix_documents_failed_total",
			Help: "The total number of save documents aborted because of a fatal block error",
		}, []string{"target"}),
		DocumentDurations: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name: "decfix_document_duration_seconds",
			Help: "Duration of a save document pass for a target platform",
		}, []string{"target"}),
	}
	return c
}

func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile dumps the collected metrics in the text exposition format,
// suitable for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
