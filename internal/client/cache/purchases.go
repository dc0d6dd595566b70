package cache

import (
	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
)

// PurchaseCache lists stock purchases, newest first.
type PurchaseCache struct {
	*listing[domain.Purchase, domain.PurchaseFilter]

	subs subscriptions
}

func NewPurchaseCache(client *gqlx.Client, bus *eventbus.Bus, opts ...Option) *PurchaseCache {
	s := resolve(opts)
	c := &PurchaseCache{
		listing: newListing(client, OpPurchases, purchaseVars, func(p domain.Purchase) string { return p.ID }, s),
	}
	c.subs = subscriptions{
		eventbus.Subscribe(bus, domain.StockPurchased, c.onStockPurchased),
		clearOnLogout(bus, c.Clear),
	}
	return c
}

func purchaseVars(f domain.PurchaseFilter) map[string]any {
	if f.ShareID == "" {
		return nil
	}
	return map[string]any{"shareId": f.ShareID}
}

func (c *PurchaseCache) onStockPurchased(ev domain.StockPurchasedEvent) {
	opts, loaded := c.pager.Options()
	if !loaded || (opts.ShareID != "" && opts.ShareID != ev.Purchase.ShareID) {
		return
	}
	c.insert(ev.Purchase)
}

// Close detaches the cache from the bus.
func (c *PurchaseCache) Close() { c.subs.close() }
