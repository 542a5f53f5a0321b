package prometheus

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	Enabled bool
	Port    string
}

type Client struct {
	Config           Config
	CounterMetrics   map[string]*prometheus.CounterVec
	HistogramMetrics map[string]*prometheus.HistogramVec

	labels   map[string][]string
	registry *prometheus.Registry
	server   *http.Server
}

// Init registers the given counters and histograms, keyed by metric name
// with their label names as values, and when enabled serves them on
// :Port/metrics in the background.
func Init(cfg Config, counters, histograms map[string][]string, log *zap.Logger) (*Client, error) {
	c := &Client{
		Config:           cfg,
		CounterMetrics:   make(map[string]*prometheus.CounterVec),
		HistogramMetrics: make(map[string]*prometheus.HistogramVec),
		labels:           make(map[string][]string),
		registry:         prometheus.NewRegistry(),
	}

	if err := c.initMetrics(counters, histograms); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		return c, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	c.server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Sugar().Errorf("error prometheus server listening: %v", err)
		}
	}()

	return c, nil
}

func sanitizeName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func (c *Client) initMetrics(counters, histograms map[string][]string) error {
	for name, labels := range counters {
		vec := prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: sanitizeName(name),
			},
			labels,
		)
		if err := c.registry.Register(vec); err != nil {
			return err
		}

		c.CounterMetrics[name] = vec
		c.labels[name] = labels
	}

	for name, labels := range histograms {
		vec := prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    sanitizeName(name) + "_seconds",
				Buckets: prometheus.DefBuckets,
			},
			labels,
		)
		if err := c.registry.Register(vec); err != nil {
			return err
		}

		c.HistogramMetrics[name] = vec
		c.labels[name] = labels
	}

	return nil
}

// labelValues orders "key:value" tags by the label names of a metric. Missing
// tags become empty values.
func labelValues(names []string, tags []string) []string {
	parsed := map[string]string{}
	for _, tag := range tags {
		k, v, found := strings.Cut(tag, ":")
		if found {
			parsed[k] = v
		}
	}

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = parsed[name]
	}

	return values
}

func (c *Client) Incr(name string, tags []string, rate float64) {
	if c == nil {
		return
	}

	counterMetric, exists := c.CounterMetrics[name]
	if !exists {
		return
	}

	counterMetric.WithLabelValues(labelValues(c.labels[name], tags)...).Inc()
}

func (c *Client) Timing(name string, value time.Duration, tags []string, rate float64) {
	if c == nil {
		return
	}

	histogramMetric, exists := c.HistogramMetrics[name]
	if !exists {
		return
	}

	histogramMetric.WithLabelValues(labelValues(c.labels[name], tags)...).Observe(value.Seconds())
}

func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Client) Shutdown(ctx context.Context) error {
	if c == nil || c.server == nil {
		return nil
	}

	return c.server.Shutdown(ctx)
}
