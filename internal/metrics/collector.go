// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes the programmed forwarding-plane state and
// driver health as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/mplsd/internal/lib"
)

// Source is the engine surface the collector reads.
type Source interface {
	ProgramCounts() lib.Counts
	DriverFailures() uint64
}

// Collector implements prometheus.Collector over an engine.
type Collector struct {
	src Source

	ilm      *prometheus.Desc
	nhlfe    *prometheus.Desc
	xc       *prometheus.Desc
	failures *prometheus.Desc
}

// NewCollector creates a collector reading from src.
func NewCollector(src Source) *Collector {
	return &Collector{
		src: src,
		ilm: prometheus.NewDesc("mplsd_ilm_programmed",
			"Incoming label map entries currently programmed.", nil, nil),
		nhlfe: prometheus.NewDesc("mplsd_nhlfe_programmed",
			"Next-hop label forwarding entries currently programmed.", nil, nil),
		xc: prometheus.NewDesc("mplsd_xc_programmed",
			"Crossconnect entries currently programmed.", nil, nil),
		failures: prometheus.NewDesc("mplsd_driver_failures_total",
			"Forwarding-plane driver calls that returned an error.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ilm
	ch <- c.nhlfe
	ch <- c.xc
	ch <- c.failures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counts := c.src.ProgramCounts()
	ch <- prometheus.MustNewConstMetric(c.ilm, prometheus.GaugeValue, float64(counts.ILM))
	ch <- prometheus.MustNewConstMetric(c.nhlfe, prometheus.GaugeValue, float64(counts.NHLFE))
	ch <- prometheus.MustNewConstMetric(c.xc, prometheus.GaugeValue, float64(counts.XC))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(c.src.DriverFailures()))
}
