package gqlx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cacheKey is operation plus canonical variables. encoding/json sorts map
// keys, so equal bags produce equal keys.
func cacheKey(req Request) (string, error) {
	vars, err := json.Marshal(req.Variables)
	if err != nil {
		return "", fmt.Errorf("failed to encode variables: %w", err)
	}
	return req.Operation + "\x00" + string(vars), nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.cache[key]
	return data, ok
}

// Invalidate drops every cached response of operation.
func (c *Client) Invalidate(operation string) {
	prefix := operation + "\x00"

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.cache {
		if strings.HasPrefix(k, prefix) {
			delete(c.cache, k)
		}
	}
}

// Reset drops the whole response cache, e.g. on logout.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cache)
}

// CacheSize returns the number of cached responses.
func (c *Client) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
