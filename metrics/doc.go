// Package metrics provides Prometheus-based monitoring for sqlbridge.
//
// It exposes a configurable /metrics endpoint and a small set of built-in
// database metrics: a per-statement counter and latency histogram (fed by the
// statement executor through the Observer hook) and per-pool gauges collected
// on scrape through PoolCollector.
//
// Core Features:
//   - Exposes a configurable /metrics endpoint for Prometheus scraping
//   - Integration with go.uber.org/fx for automatic lifecycle management
//   - Automatic registration of Go runtime and process-level metrics
//   - Support for custom metric registration (counters, gauges, histograms)
//   - Graceful startup and shutdown via Fx lifecycle hooks
//
// Basic usage:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    EnableDefaultCollectors: true,
//	    ServiceName:             "orders",
//	})
//	exec := statement.New(statement.Config{Observer: m})
//	m.Registry.MustRegister(metrics.NewPoolCollector("postgres", p))
//
// All methods on the Metrics struct are safe for concurrent use.
package metrics
