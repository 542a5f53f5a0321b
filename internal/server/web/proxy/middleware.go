package proxy

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bricks-cloud/geminiproxy/internal/telemetry"
	"github.com/bricks-cloud/geminiproxy/internal/telemetry/metricname"
	"github.com/bricks-cloud/geminiproxy/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getMiddleware(log *zap.Logger, prod bool, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c == nil || c.Request == nil {
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] request is empty")
			c.Abort()
			return
		}

		if c.FullPath() == "/api/health" {
			return
		}

		cid := util.NewUuid()
		c.Set(correlationId, cid)
		util.SetLogToCtx(c, log)

		start := time.Now()
		defer func() {
			dur := time.Since(start)
			latency := int(dur.Milliseconds())

			if !prod {
				log.Sugar().Infof("%s | %d | %s | %s | %dms", prefix, c.Writer.Status(), c.Request.Method, c.Request.URL.Path, latency)
			}

			if prod {
				log.Info("response to proxy",
					zap.String(correlationId, cid),
					zap.Int("code", c.Writer.Status()),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Int("latencyInMs", latency),
				)
			}

			telemetry.Timing(metricname.HISTOGRAM_PROXY_LATENCY, dur, nil, 1)
			telemetry.Incr(metricname.COUNTER_PROXY_RESPONSES, []string{
				"status:" + strconv.Itoa(c.Writer.Status()),
			}, 1)
		}()

		c.Next()
	}
}

func getRecoveryMiddleware(log *zap.Logger, prod bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		telemetry.Incr(metricname.COUNTER_PROXY_PANICS, nil, 1)

		cid := c.GetString(correlationId)
		if prod {
			log.Error("recovered from panic", zap.String(correlationId, cid), zap.Any("panic", recovered))
		} else {
			log.Sugar().Errorf("correlationId:%s | recovered from panic | %v", cid, recovered)
		}

		if c.Writer.Written() {
			c.Abort()
			return
		}

		JSON(c, http.StatusInternalServerError, "[GeminiProxy] internal server error")
		c.Abort()
	})
}
