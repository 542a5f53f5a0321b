package body

import (
	"io"
	"net/http"
	"sync"

	internal_errors "github.com/bricks-cloud/geminiproxy/internal/errors"
)

const consumedMessage = "request body has already been read"

// Once wraps a request body so it is consumed at most one time. Content is
// only handed out by ReadAll; a second ReadAll, or any Read, fails instead of
// returning empty data.
type Once struct {
	mu       sync.Mutex
	rc       io.ReadCloser
	consumed bool
}

func New(rc io.ReadCloser) *Once {
	return &Once{
		rc: rc,
	}
}

func (o *Once) ReadAll() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.consumed {
		return nil, internal_errors.NewBodyConsumedError(consumedMessage)
	}

	o.consumed = true

	if o.rc == nil || o.rc == http.NoBody {
		return []byte{}, nil
	}

	defer o.rc.Close()

	return io.ReadAll(o.rc)
}

func (o *Once) Read(p []byte) (int, error) {
	return 0, internal_errors.NewBodyConsumedError(consumedMessage)
}

func (o *Once) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.consumed || o.rc == nil {
		return nil
	}

	o.consumed = true
	return o.rc.Close()
}
