// Package metrics exposes the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RecordWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scanledger_record_writes_total",
	Help: "Record writes by entity kind, action and outcome",
}, []string{"kind", "action", "outcome"})

var Exports = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scanledger_exports_total",
	Help: "Exports generated by entity kind and format",
}, []string{"kind", "format"})

var ExportRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "scanledger_export_rows",
	Help:    "Rows written per export",
	Buckets: prometheus.ExponentialBuckets(1, 4, 8),
}, []string{"kind"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "scanledger_http_request_duration_seconds",
	Help:    "HTTP request latency by route pattern and status",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})
