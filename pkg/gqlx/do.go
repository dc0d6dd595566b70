package gqlx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/banksync/pkg/slogx"
)

// Endpoint is the path every operation is posted to.
const Endpoint = "/graphql"

var ErrNoOperation = errors.New("gqlx: operation name required")

type payload struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Do runs req and decodes the response data into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if req.Operation == "" {
		return ErrNoOperation
	}

	key, err := cacheKey(req)
	if err != nil {
		return err
	}

	if req.Policy != NetworkOnly {
		if data, ok := c.cached(key); ok {
			slogx.FromContext(ctx).Debug("gqlx cache hit", "op", req.Operation)
			return decodeData(req.Operation, data, out)
		}
	}

	data, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}

	c.store(key, req.Policy, data)

	return decodeData(req.Operation, data, out)
}

// store caches a response. Network-only responses only refresh an entry a
// cache-first read already created, so one-off reads and mutations never
// accumulate.
func (c *Client) store(key string, policy Policy, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[key]; !ok && policy == NetworkOnly {
		return
	}
	c.cache[key] = data
}

// Query is Do with a typed result.
func Query[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	err := c.Do(ctx, req, &out)
	return out, err
}

func (c *Client) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(payload{OperationName: req.Operation, Variables: req.Variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTPClient.Do(httpReq.WithContext(slogx.WithOperation(ctx, req.Operation)))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return nil, fmt.Errorf("failed to decode response: %w", jsonErr)
	}

	if err := parseErrorResponse(req.Operation, resp.StatusCode, env, raw); err != nil {
		return nil, err
	}

	return env.Data, nil
}

func decodeData(op string, data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", op, err)
	}
	return nil
}
