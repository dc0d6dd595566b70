package cache

import (
	"context"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
)

// StockCache lists stocks and runs the stock mutations.
type StockCache struct {
	*listing[domain.Stock, domain.StockFilter]

	client *gqlx.Client
	bus    *eventbus.Bus
	subs   subscriptions
}

func NewStockCache(client *gqlx.Client, bus *eventbus.Bus, opts ...Option) *StockCache {
	s := resolve(opts)
	c := &StockCache{
		listing: newListing(client, OpStocks, stockVars, func(st domain.Stock) string { return st.ID }, s),
		client:  client,
		bus:     bus,
	}
	c.subs = subscriptions{
		eventbus.Subscribe(bus, domain.StockPriceChanged, c.onPriceChanged),
		clearOnLogout(bus, c.Clear),
	}
	return c
}

func stockVars(f domain.StockFilter) map[string]any {
	if !f.HeldOnly {
		return nil
	}
	return map[string]any{"heldOnly": true}
}

// Stock returns a loaded stock.
func (c *StockCache) Stock(id string) (domain.Stock, bool) { return c.items.get(id) }

// UpdatePrice sets a stock's price and publishes StockPriceChanged.
func (c *StockCache) UpdatePrice(ctx context.Context, stockID string, price int64) (domain.Stock, error) {
	st, err := mutate[domain.Stock](ctx, c.client, OpUpdateStockPrice, map[string]any{
		"stockId": stockID,
		"price":   price,
	})
	if err != nil {
		return domain.Stock{}, err
	}

	eventbus.Publish(c.bus, domain.StockPriceChanged, domain.StockPriceChangedEvent{
		StockID: st.ID,
		Price:   st.Price,
	})
	return st, nil
}

// Buy purchases a stock and publishes StockPurchased. The input is expected
// to have passed Validate.
func (c *StockCache) Buy(ctx context.Context, in domain.PurchaseInput) (domain.Purchase, error) {
	p, err := mutate[domain.Purchase](ctx, c.client, OpBuyStock, map[string]any{"input": in})
	if err != nil {
		return domain.Purchase{}, err
	}

	c.items.patch(p.StockID, func(st *domain.Stock) { st.Held = p.Held })
	eventbus.Publish(c.bus, domain.StockPurchased, domain.StockPurchasedEvent{Purchase: p})
	return p, nil
}

func (c *StockCache) onPriceChanged(ev domain.StockPriceChangedEvent) {
	c.items.patch(ev.StockID, func(st *domain.Stock) { st.Price = ev.Price })
}

// Close detaches the cache from the bus.
func (c *StockCache) Close() { c.subs.close() }
