package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLabelValues(t *testing.T) {
	assert.Equal(t, []string{"500", "server"}, labelValues([]string{"status", "source"}, []string{"source:server", "status:500"}))
	assert.Equal(t, []string{""}, labelValues([]string{"status"}, nil))
	assert.Equal(t, []string{}, labelValues([]string{}, []string{"path:/x"}))
}

func TestClient(t *testing.T) {
	c, err := Init(Config{Enabled: false}, map[string][]string{
		"geminiproxy.test.requests": {"status"},
	}, map[string][]string{
		"geminiproxy.test.latency": {},
	}, zap.NewNop())
	require.Nil(t, err)

	t.Run("when a known counter is incremented", func(t *testing.T) {
		c.Incr("geminiproxy.test.requests", []string{"status:200"}, 1)
		c.Incr("geminiproxy.test.requests", []string{"status:200"}, 1)

		assert.Equal(t, float64(2), testutil.ToFloat64(c.CounterMetrics["geminiproxy.test.requests"].WithLabelValues("200")))
	})

	t.Run("when an unknown metric is reported", func(t *testing.T) {
		assert.NotPanics(t, func() {
			c.Incr("geminiproxy.test.unknown", nil, 1)
			c.Timing("geminiproxy.test.unknown", time.Second, nil, 1)
		})
	})

	t.Run("when a histogram is observed", func(t *testing.T) {
		c.Timing("geminiproxy.test.latency", 250*time.Millisecond, nil, 1)

		count, err := testutil.GatherAndCount(c.Registry(), "geminiproxy_test_latency_seconds")
		require.Nil(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("when the client is nil", func(t *testing.T) {
		var nilClient *Client
		assert.NotPanics(t, func() {
			nilClient.Incr("geminiproxy.test.requests", nil, 1)
		})
	})
}
