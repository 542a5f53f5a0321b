package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	relayChunkSize   = 32 * 1024
	errorCaptureSize = 64 * 1024
)

// cappedBuffer keeps the first limit bytes written to it and drops the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (cb *cappedBuffer) Write(p []byte) (int, error) {
	if room := cb.limit - cb.buf.Len(); room > 0 {
		if len(p) > room {
			cb.buf.Write(p[:room])
		} else {
			cb.buf.Write(p)
		}
	}

	return len(p), nil
}

func (cb *cappedBuffer) Bytes() []byte {
	return cb.buf.Bytes()
}

func copyResponseHeaders(dst http.Header, src http.Header) {
	for name, values := range src {
		if strings.EqualFold(name, "www-authenticate") {
			continue
		}

		for _, value := range values {
			dst.Add(name, value)
		}
	}

	dst.Set("X-Accel-Buffering", "no")
}

// relayResponse writes the upstream status and headers, then streams body
// to the caller flushing after every chunk.
func relayResponse(c *gin.Context, res *http.Response, body io.Reader) error {
	copyResponseHeaders(c.Writer.Header(), res.Header)
	c.Status(res.StatusCode)
	c.Writer.WriteHeaderNow()

	buf := make([]byte, relayChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return werr
			}
			c.Writer.Flush()
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}
	}
}

func upstreamErrorDetail(body []byte) (status string, message string) {
	for _, prefix := range []string{"error", "0.error"} {
		detail := gjson.GetBytes(body, prefix)
		if detail.Exists() {
			return detail.Get("status").String(), detail.Get("message").String()
		}
	}

	return "", ""
}

func logGoogleError(log *zap.Logger, prod bool, id string, code int, body []byte) {
	status, message := upstreamErrorDetail(body)

	if prod {
		log.Info("google error response",
			zap.String(correlationId, id),
			zap.Int("code", code),
			zap.String("status", status),
			zap.String("message", message),
			zap.ByteString("body", body),
		)
		return
	}

	log.Sugar().Infof("correlationId:%s | google error response | %d | %s", id, code, string(body))
}
