package cache

import (
	"log/slog"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
)

// ShareCache lists the member's shares. Balances are patched in place from
// TransactionPosted and StockPurchased without a network call.
type ShareCache struct {
	*listing[domain.Share, domain.ShareFilter]

	logger *slog.Logger
	subs   subscriptions
}

func NewShareCache(client *gqlx.Client, bus *eventbus.Bus, opts ...Option) *ShareCache {
	s := resolve(opts)
	c := &ShareCache{
		listing: newListing(client, OpShares, shareVars, func(sh domain.Share) string { return sh.ID }, s),
		logger:  s.logger,
	}
	c.subs = subscriptions{
		eventbus.Subscribe(bus, domain.TransactionPosted, c.onTransactionPosted),
		eventbus.Subscribe(bus, domain.StockPurchased, c.onStockPurchased),
		clearOnLogout(bus, c.Clear),
	}
	return c
}

func shareVars(f domain.ShareFilter) map[string]any {
	if f.Kind == "" {
		return nil
	}
	return map[string]any{"kind": f.Kind}
}

// Share returns a loaded share.
func (c *ShareCache) Share(id string) (domain.Share, bool) { return c.items.get(id) }

func (c *ShareCache) setBalance(shareID string, balance int64) {
	if !c.items.patch(shareID, func(sh *domain.Share) { sh.Balance = balance }) {
		c.logger.Debug("share not loaded, balance patch skipped", "share_id", shareID)
	}
}

func (c *ShareCache) onTransactionPosted(ev domain.TransactionPostedEvent) {
	c.setBalance(ev.TargetShareID, ev.NewBalance)
}

func (c *ShareCache) onStockPurchased(ev domain.StockPurchasedEvent) {
	c.setBalance(ev.Purchase.ShareID, ev.Purchase.NewBalance)
}

// Close detaches the cache from the bus.
func (c *ShareCache) Close() { c.subs.close() }
