// Package cache holds the client's consuming stores: the loaded window of
// each server collection plus the event handlers that keep it consistent
// with mutations made elsewhere in the process.
//
// Every cache owns its own paging.Pager. Lists are always read network-only
// so a revisited page never resurrects a balance that an event has since
// patched; the gqlx response cache only backs the stock history.
package cache

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/paging"
	"github.com/aussiebroadwan/banksync/pkg/session"
)

// Operation names. The response field of each operation carries the same
// name.
const (
	OpShares           = "shares"
	OpTransactions     = "transactions"
	OpPostTransaction  = "postTransaction"
	OpStocks           = "stocks"
	OpUpdateStockPrice = "updateStockPrice"
	OpBuyStock         = "buyStock"
	OpStockHistory     = "stockHistory"
	OpPurchases        = "purchases"
)

type Option func(*settings)

type settings struct {
	pageSize int
	logger   *slog.Logger
}

// WithPageSize sets the initial page size of a list cache.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func resolve(opts []Option) settings {
	s := settings{pageSize: paging.DefaultPageSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// subscriptions are the unsubscribe funcs of one cache.
type subscriptions []func()

func (s subscriptions) close() {
	for _, unsub := range s {
		unsub()
	}
}

// clearOnLogout calls clear whenever the session collapses to Anonymous.
func clearOnLogout(bus *eventbus.Bus, clear func()) func() {
	return eventbus.Subscribe(bus, session.Changed, func(st session.State) {
		if st == session.Anonymous {
			clear()
		}
	})
}

// mutate runs a network-only operation and returns its result field. The
// response is not kept in the client cache.
func mutate[T any](ctx context.Context, client *gqlx.Client, op string, vars map[string]any) (T, error) {
	data, err := gqlx.Query[map[string]T](ctx, client, gqlx.Request{
		Operation: op,
		Variables: vars,
		Policy:    gqlx.NetworkOnly,
	})
	client.Invalidate(op)
	if err != nil {
		var zero T
		return zero, err
	}
	return data[op], nil
}
