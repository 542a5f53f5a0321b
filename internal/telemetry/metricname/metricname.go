package metricname

const (
	COUNTER_GOOGLE_HANDLER_REQUESTS          = "geminiproxy.proxy.get_google_handler.requests"
	COUNTER_GOOGLE_HANDLER_PREFLIGHT         = "geminiproxy.proxy.get_google_handler.preflight"
	COUNTER_GOOGLE_HANDLER_AUTH_ERROR        = "geminiproxy.proxy.get_google_handler.auth_error"
	COUNTER_GOOGLE_HANDLER_INVALID_REQUEST   = "geminiproxy.proxy.get_google_handler.invalid_request"
	COUNTER_GOOGLE_HANDLER_HTTP_CLIENT_ERROR = "geminiproxy.proxy.get_google_handler.http_client_error"
	COUNTER_GOOGLE_HANDLER_TIMEOUT           = "geminiproxy.proxy.get_google_handler.timeout"
	COUNTER_GOOGLE_HANDLER_SUCCESS           = "geminiproxy.proxy.get_google_handler.success"
	COUNTER_GOOGLE_HANDLER_ERROR_RESPONSE    = "geminiproxy.proxy.get_google_handler.error_response"
	COUNTER_GOOGLE_HANDLER_RELAY_ERROR       = "geminiproxy.proxy.get_google_handler.relay_error"
	COUNTER_PROXY_RESPONSES                  = "geminiproxy.proxy.get_middleware.responses"
	COUNTER_PROXY_PANICS                     = "geminiproxy.proxy.get_recovery_middleware.panics"

	HISTOGRAM_GOOGLE_HANDLER_LATENCY = "geminiproxy.proxy.get_google_handler.latency"
	HISTOGRAM_PROXY_LATENCY          = "geminiproxy.proxy.get_middleware.proxy_latency"
)

// CounterLabels and HistogramLabels list the tag keys each metric is
// reported with. Tags are passed as "key:value" strings.
var CounterLabels = map[string][]string{
	COUNTER_GOOGLE_HANDLER_REQUESTS:          {},
	COUNTER_GOOGLE_HANDLER_PREFLIGHT:         {},
	COUNTER_GOOGLE_HANDLER_AUTH_ERROR:        {},
	COUNTER_GOOGLE_HANDLER_INVALID_REQUEST:   {"reason"},
	COUNTER_GOOGLE_HANDLER_HTTP_CLIENT_ERROR: {},
	COUNTER_GOOGLE_HANDLER_TIMEOUT:           {},
	COUNTER_GOOGLE_HANDLER_SUCCESS:           {"source"},
	COUNTER_GOOGLE_HANDLER_ERROR_RESPONSE:    {"source", "status"},
	COUNTER_GOOGLE_HANDLER_RELAY_ERROR:       {},
	COUNTER_PROXY_RESPONSES:                  {"status"},
	COUNTER_PROXY_PANICS:                     {},
}

var HistogramLabels = map[string][]string{
	HISTOGRAM_GOOGLE_HANDLER_LATENCY: {"source"},
	HISTOGRAM_PROXY_LATENCY:          {},
}
