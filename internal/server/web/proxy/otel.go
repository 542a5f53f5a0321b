package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "geminiproxy"

func getOtelMiddlware() gin.HandlerFunc {
	spanName := func(r *http.Request) string {
		return "HTTP " + r.Method + " " + r.URL.Path
	}

	return otelgin.Middleware(
		serviceName,
		otelgin.WithSpanNameFormatter(spanName),
		otelgin.WithPropagators(otel.GetTextMapPropagator()),
		otelgin.WithTracerProvider(otel.GetTracerProvider()),
	)
}

// upstream spans are named by host only so api keys in query strings stay
// out of traces
func getOtelTransport() *otelhttp.Transport {
	spanName := func(_ string, r *http.Request) string {
		return "HTTP " + r.Method + " " + r.URL.Host
	}

	return otelhttp.NewTransport(
		http.DefaultTransport,
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithSpanNameFormatter(spanName),
		otelhttp.WithServerName(serviceName),
	)
}
