package cache

import (
	"context"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
)

// TransactionCache lists the transactions of one share at a time.
type TransactionCache struct {
	*listing[domain.Transaction, domain.TransactionFilter]

	client *gqlx.Client
	bus    *eventbus.Bus
	subs   subscriptions
}

func NewTransactionCache(client *gqlx.Client, bus *eventbus.Bus, opts ...Option) *TransactionCache {
	s := resolve(opts)
	c := &TransactionCache{
		listing: newListing(client, OpTransactions, transactionVars, func(tx domain.Transaction) string { return tx.ID }, s),
		client:  client,
		bus:     bus,
	}
	c.subs = subscriptions{
		eventbus.Subscribe(bus, domain.TransactionPosted, c.onTransactionPosted),
		clearOnLogout(bus, c.Clear),
	}
	return c
}

func transactionVars(f domain.TransactionFilter) map[string]any {
	return map[string]any{"shareId": f.ShareID}
}

// Post creates a transaction and announces it with TransactionPosted. The
// input is expected to have passed Validate.
func (c *TransactionCache) Post(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	tx, err := mutate[domain.Transaction](ctx, c.client, OpPostTransaction, map[string]any{"input": in})
	if err != nil {
		return domain.Transaction{}, err
	}

	eventbus.Publish(c.bus, domain.TransactionPosted, domain.TransactionPostedEvent{
		TargetShareID: tx.ShareID,
		NewBalance:    tx.NewBalance,
		Transaction:   tx,
	})
	return tx, nil
}

func (c *TransactionCache) onTransactionPosted(ev domain.TransactionPostedEvent) {
	opts, loaded := c.pager.Options()
	if !loaded || opts.ShareID != ev.TargetShareID {
		return
	}
	c.insert(ev.Transaction)
}

// Close detaches the cache from the bus.
func (c *TransactionCache) Close() { c.subs.close() }
