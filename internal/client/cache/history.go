package cache

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/paging"
)

// StockHistoryCache holds the price history of one stock. It reads
// cache-first and refetches network-only in the background whenever the
// stock's price changes.
type StockHistoryCache struct {
	client  *gqlx.Client
	stockID string
	logger  *slog.Logger

	mu     sync.RWMutex
	points []domain.PricePoint
	loaded bool
	seq    uint64
	closed bool // no refetch starts once set

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	subs   subscriptions
}

func NewStockHistoryCache(client *gqlx.Client, bus *eventbus.Bus, stockID string, opts ...Option) *StockHistoryCache {
	s := resolve(opts)
	ctx, cancel := context.WithCancel(context.Background())
	c := &StockHistoryCache{
		client:  client,
		stockID: stockID,
		logger:  s.logger.With("stock_id", stockID),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.subs = subscriptions{
		eventbus.Subscribe(bus, domain.StockPriceChanged, c.onPriceChanged),
		clearOnLogout(bus, c.Clear),
	}
	return c
}

// Load reads the history, from the response cache when present.
func (c *StockHistoryCache) Load(ctx context.Context) error {
	return c.load(ctx, gqlx.CacheFirst)
}

func (c *StockHistoryCache) load(ctx context.Context, policy gqlx.Policy) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	data, err := gqlx.Query[map[string][]domain.PricePoint](ctx, c.client, gqlx.Request{
		Operation: OpStockHistory,
		Variables: map[string]any{"stockId": c.stockID},
		Policy:    policy,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return paging.ErrSuperseded
	}
	c.points = data[OpStockHistory]
	c.loaded = true
	return nil
}

func (c *StockHistoryCache) onPriceChanged(ev domain.StockPriceChangedEvent) {
	if ev.StockID != c.stockID {
		return
	}
	c.client.Invalidate(OpStockHistory)

	c.mu.Lock()
	if c.closed || !c.loaded {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		err := c.load(c.ctx, gqlx.NetworkOnly)
		if err != nil && !errors.Is(err, paging.ErrSuperseded) && c.ctx.Err() == nil {
			c.logger.Warn("stock history refetch failed", "error", err)
		}
	}()
}

// Points returns a copy of the loaded history.
func (c *StockHistoryCache) Points() []domain.PricePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.points)
}

func (c *StockHistoryCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Clear empties the cache and discards loads still in flight.
func (c *StockHistoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.points = nil
	c.loaded = false
}

// Close detaches the cache and waits for background refetches.
func (c *StockHistoryCache) Close() {
	c.subs.close()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
