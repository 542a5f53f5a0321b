package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bricks-cloud/geminiproxy/internal/body"
	"github.com/bricks-cloud/geminiproxy/internal/provider/google"
	"github.com/bricks-cloud/geminiproxy/internal/sanitize"
	"github.com/bricks-cloud/geminiproxy/internal/telemetry"
	"github.com/bricks-cloud/geminiproxy/internal/telemetry/metricname"
	"github.com/bricks-cloud/geminiproxy/internal/util"
	"github.com/gin-gonic/gin"
)

const defaultRequestTimeout = 10 * time.Minute

func getGoogleHandler(prod bool, a authenticator, scp serverConfigProvider, deny sanitize.Denylist, client *http.Client, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c == nil || c.Request == nil {
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] context is empty")
			return
		}

		log := util.GetLogFromCtx(c)
		telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_REQUESTS, nil, 1)

		cid := c.GetString(correlationId)

		if c.Request.Method == http.MethodOptions {
			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_PREFLIGHT, nil, 1)
			c.JSON(http.StatusOK, gin.H{"body": "OK"})
			return
		}

		grant, err := a.AuthenticateHttpRequest(c.Request, google.ProviderName)
		if err != nil {
			if ae, ok := err.(notAuthorizedError); ok {
				telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_AUTH_ERROR, nil, 1)
				logError(log, "error when authenticating "+ae.Provider()+" http request", prod, cid, err)
				JSON(c, http.StatusUnauthorized, "[GeminiProxy] "+err.Error())
				return
			}

			logError(log, "error when running authenticator", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to authenticate request")
			return
		}

		sc, err := scp.GetGoogleConfig()
		if err != nil {
			logError(log, "error when reading google server config", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to read server config")
			return
		}

		target, err := google.ResolveTarget(c.Request, c.Param("path"), google.ServerSettings{
			ApiKey:  sc.ApiKey,
			BaseUrl: sc.BaseUrl,
		}, grant.UseServerConfig)
		if err != nil {
			if ve, ok := err.(validationError); ok {
				telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_INVALID_REQUEST, []string{"reason:" + ve.Field()}, 1)
				logError(log, "error when resolving google target", prod, cid, err)
				JSON(c, http.StatusBadRequest, "[GeminiProxy] "+err.Error())
				return
			}

			logError(log, "error when resolving google target", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to resolve google target")
			return
		}

		if len(target.ApiKey) == 0 {
			logError(log, "google api key is empty", prod, cid, errors.New("no api key from server config or caller"))
		}

		if maxBodyBytes > 0 && c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}

		once := body.New(c.Request.Body)
		c.Request.Body = once
		raw, err := once.ReadAll()
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_INVALID_REQUEST, []string{"reason:body_size"}, 1)
				logError(log, "request body exceeds limit", prod, cid, err)
				JSON(c, http.StatusRequestEntityTooLarge, "[GeminiProxy] request body is too large")
				return
			}

			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_INVALID_REQUEST, []string{"reason:body_read"}, 1)
			logError(log, "error when reading request body", prod, cid, err)
			JSON(c, http.StatusBadRequest, "[GeminiProxy] failed to read request body")
			return
		}

		payload, err := sanitize.Body(raw, deny)
		if err != nil {
			if ve, ok := err.(validationError); ok {
				telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_INVALID_REQUEST, []string{"reason:" + ve.Field()}, 1)
				logError(log, "error when parsing request body", prod, cid, err)
				JSON(c, http.StatusBadRequest, "[GeminiProxy] request body is not valid json")
				return
			}

			logError(log, "error when sanitizing request body", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to sanitize request body")
			return
		}

		timeout := c.GetDuration(requestTimeout)
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var reqBody io.Reader
		if len(payload) != 0 {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, c.Request.Method, target.Url, reqBody)
		if err != nil {
			logError(log, "error when creating google http request", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to create google http request")
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cache-Control", "no-store")
		if len(target.ApiKey) != 0 {
			req.Header.Set(google.ApiKeyHeader, target.ApiKey)
		}

		source := "source:" + string(target.Source)

		start := time.Now()
		res, err := client.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_TIMEOUT, nil, 1)
				logError(log, "google http request timed out", prod, cid, err)
				JSON(c, http.StatusGatewayTimeout, "[GeminiProxy] request to google timed out")
				return
			}

			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_HTTP_CLIENT_ERROR, nil, 1)
			logError(log, "error when sending http request to google", prod, cid, err)
			JSON(c, http.StatusInternalServerError, "[GeminiProxy] failed to send http request to google")
			return
		}
		defer res.Body.Close()

		telemetry.Timing(metricname.HISTOGRAM_GOOGLE_HANDLER_LATENCY, time.Since(start), []string{source}, 1)

		var relayed io.Reader = res.Body
		var captured *cappedBuffer
		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_ERROR_RESPONSE, []string{source, "status:" + strconv.Itoa(res.StatusCode)}, 1)
			captured = newCappedBuffer(errorCaptureSize)
			relayed = io.TeeReader(res.Body, captured)
		} else {
			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_SUCCESS, []string{source}, 1)
		}

		err = relayResponse(c, res, relayed)
		if err != nil {
			telemetry.Incr(metricname.COUNTER_GOOGLE_HANDLER_RELAY_ERROR, nil, 1)
			logError(log, "error when relaying google response", prod, cid, err)
		}

		if captured != nil {
			logGoogleError(log, prod, cid, res.StatusCode, captured.Bytes())
		}
	}
}
