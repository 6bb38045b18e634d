package stat

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rig"

var (
	durationDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "bootstrap", "duration_seconds"),
		"Time spent in a bootstrap stage",
		[]string{"stat"}, nil,
	)
	countDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "bootstrap", "items"),
		"Number of items counted during bootstrap",
		[]string{"stat"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- durationDesc
	ch <- countDesc
}

// Collect implements prometheus.Collector.
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	for _, e := range s.Snapshot() {
		if e.IsTimer {
			ch <- prometheus.MustNewConstMetric(durationDesc, prometheus.GaugeValue, e.Duration.Seconds(), string(e.Name))
			continue
		}
		ch <- prometheus.MustNewConstMetric(countDesc, prometheus.GaugeValue, float64(e.Count), string(e.Name))
	}
}

var _ prometheus.Collector = (*Stats)(nil)
