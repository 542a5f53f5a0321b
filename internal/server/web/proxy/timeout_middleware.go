package proxy

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const timeoutHeader = "x-request-timeout"

func getTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c == nil || c.Request == nil {
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] request is empty")
			c.Abort()
			return
		}

		if c.Request.Method == http.MethodOptions {
			return
		}

		raw := c.GetHeader(timeoutHeader)
		parsedTimeout := timeout
		if len(raw) != 0 {
			parsed, err := time.ParseDuration(raw)
			if err != nil || parsed <= 0 {
				JSON(c, http.StatusBadRequest, "[GeminiProxy] invalid timeout")
				c.Abort()
				return
			}

			parsedTimeout = parsed
		}

		c.Set(requestTimeout, parsedTimeout)
	}
}
