package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/n-takatsu/sqlbridge/pool"
)

// PoolCollector exports one connection pool's accounting as Prometheus
// metrics, sampled on scrape.
type PoolCollector struct {
	pool *pool.Pool

	open      *prometheus.Desc
	idle      *prometheus.Desc
	inUse     *prometheus.Desc
	maxSize   *prometheus.Desc
	acquires  *prometheus.Desc
	timeouts  *prometheus.Desc
	destroyed *prometheus.Desc
}

// NewPoolCollector creates a collector for p. The engine label distinguishes
// pools when several are registered on the same registry.
func NewPoolCollector(engine string, p *pool.Pool) *PoolCollector {
	labels := prometheus.Labels{"engine": engine}
	return &PoolCollector{
		pool:      p,
		open:      prometheus.NewDesc("sqlbridge_pool_open_connections", "Live connections, idle plus in use", nil, labels),
		idle:      prometheus.NewDesc("sqlbridge_pool_idle_connections", "Connections waiting in the idle set", nil, labels),
		inUse:     prometheus.NewDesc("sqlbridge_pool_in_use_connections", "Currently checked-out connections", nil, labels),
		maxSize:   prometheus.NewDesc("sqlbridge_pool_max_size", "Configured pool capacity", nil, labels),
		acquires:  prometheus.NewDesc("sqlbridge_pool_acquires_total", "Successful acquisitions since pool creation", nil, labels),
		timeouts:  prometheus.NewDesc("sqlbridge_pool_timeouts_total", "Acquisitions that failed with pool exhaustion", nil, labels),
		destroyed: prometheus.NewDesc("sqlbridge_pool_destroyed_total", "Connections closed by eviction, taint or teardown", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.open
	ch <- c.idle
	ch <- c.inUse
	ch <- c.maxSize
	ch <- c.acquires
	ch <- c.timeouts
	ch <- c.destroyed
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(s.Open))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.maxSize, prometheus.GaugeValue, float64(s.MaxSize))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.Acquires))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.destroyed, prometheus.CounterValue, float64(s.Destroyed))
}
