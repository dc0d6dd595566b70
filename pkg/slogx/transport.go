package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/idx"
)

// Transport logs outgoing requests and stamps each one with an X-Request-ID
// so client logs can be correlated with server logs. A caller supplied id is
// kept when it is a ULID and replaced otherwise.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := r.Header.Get("X-Request-ID")
	if _, err := idx.Parse(reqID); err != nil {
		reqID = idx.New().String()
		// RoundTrippers must not mutate the caller's request
		r = r.Clone(r.Context())
		r.Header.Set("X-Request-ID", reqID)
	}

	logger := FromContext(r.Context())
	if logger == slog.Default() {
		logger = t.Logger
	}
	logger = logger.With(
		"req_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
	)

	resp, err := t.Base.RoundTrip(r)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("http_request_failed", "error", err, "duration_ms", duration)
		return nil, err
	}

	logger.Debug("http_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}
