// Package metrics holds Prometheus instruments that are used across the
// server core.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContextsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_contexts_active",
			Help: "Number of request contexts currently open.",
		})

	RequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Cumulative number of requests run through the pipeline.",
		})

	ModuleErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_module_errors_total",
			Help: "Cumulative number of pipeline modules that returned an error.",
		})

	UpgradesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_ws_upgrades_total",
			Help: "Cumulative number of successful WebSocket upgrades.",
		})

	UpgradeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_ws_upgrade_failures_total",
			Help: "Cumulative number of failed WebSocket handshakes.",
		})

	CloseCallbackFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_close_callback_failures_total",
			Help: "Cumulative number of suppressed close-callback failures.",
		})
)

func init() {
	prometheus.MustRegister(
		ContextsActive,
		RequestsTotal,
		ModuleErrorsTotal,
		UpgradesTotal,
		UpgradeFailures,
		CloseCallbackFailures,
	)
}
