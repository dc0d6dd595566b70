package gqlx

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/slogx"
	"golang.org/x/time/rate"
)

// Policy is the cache directive of a request.
type Policy string

const (
	CacheFirst  Policy = "cache-first"
	NetworkOnly Policy = "network-only"
)

// Request names a remote operation.
type Request struct {
	Operation string
	Variables map[string]any
	Policy    Policy // CacheFirst when empty
}

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	limiter *rate.Limiter
	token   func() string
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string][]byte // raw "data" per operation+variables
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithRateLimit caps outgoing requests to rps per second with the given
// burst. Cache hits are not limited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithTokenSource sets the bearer credential source. An empty token sends no
// Authorization header.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for baseURL. The default HTTP client has a 10s
// timeout and logs every request through slogx.Transport.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  slog.Default(),
		cache:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout:   10 * time.Second,
			Transport: slogx.NewTransport(nil, c.logger),
		}
	}
	return c
}
