package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/banksync/internal/client/apitest"
	"github.com/aussiebroadwan/banksync/internal/client/cache"
	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/stretchr/testify/require"
)

// ledger is a fake transactions backend that supports posting.
type ledger struct {
	mu       sync.Mutex
	byShare  map[string][]domain.Transaction
	balances map[string]int64
}

func newLedger(api *apitest.Server) *ledger {
	l := &ledger{
		byShare:  map[string][]domain.Transaction{"s1": makeTransactions("s1", 30), "s2": makeTransactions("s2", 2)},
		balances: map[string]int64{"s1": 1000, "s2": 1000},
	}
	api.Handle(cache.OpTransactions, func(vars map[string]any) (any, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		return apitest.Paginate(l.byShare[apitest.String(vars, "shareId")], vars), nil
	})
	api.Handle(cache.OpPostTransaction, func(vars map[string]any) (any, error) {
		l.mu.Lock()
		defer l.mu.Unlock()

		shareID := apitest.String(vars, "shareId")
		if _, ok := l.balances[shareID]; !ok {
			return nil, apitest.Fail(gqlx.CodeNotFound, "share not found")
		}
		l.balances[shareID] += apitest.Int(vars, "amount")
		tx := domain.Transaction{
			ID:          "new-" + shareID,
			ShareID:     shareID,
			Amount:      apitest.Int(vars, "amount"),
			NewBalance:  l.balances[shareID],
			Description: apitest.String(vars, "description"),
			PostedAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		}
		l.byShare[shareID] = append([]domain.Transaction{tx}, l.byShare[shareID]...)
		return tx, nil
	})
	return l
}

func TestTransactionCachePost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	newLedger(f.api)
	f.api.Handle(cache.OpShares, func(vars map[string]any) (any, error) {
		return apitest.Paginate(makeShares(2), vars), nil
	})

	ctx := context.Background()
	shares := cache.NewShareCache(f.client, f.bus)
	t.Cleanup(shares.Close)
	txs := cache.NewTransactionCache(f.client, f.bus, cache.WithPageSize(10))
	t.Cleanup(txs.Close)

	require.NoError(t, shares.Fetch(ctx, domain.ShareFilter{}))
	require.NoError(t, txs.Fetch(ctx, domain.TransactionFilter{ShareID: "s1"}))
	require.Equal(t, 30, txs.Window().TotalCount)

	var seen []domain.TransactionPostedEvent
	unsub := eventbus.Subscribe(f.bus, domain.TransactionPosted, func(ev domain.TransactionPostedEvent) {
		seen = append(seen, ev)
	})
	defer unsub()

	tx, err := txs.Post(ctx, domain.TransactionInput{ShareID: "s1", Amount: 250, Description: "pay"})
	require.NoError(t, err)
	require.EqualValues(t, 1250, tx.NewBalance)

	call := f.api.Calls(cache.OpPostTransaction)[0]
	require.Equal(t, "pay", apitest.String(call.Variables, "description"))

	require.Len(t, seen, 1)
	require.Equal(t, "s1", seen[0].TargetShareID)
	require.EqualValues(t, 1250, seen[0].NewBalance)

	items := txs.Items()
	require.Len(t, items, 10)
	require.Equal(t, "new-s1", items[0].ID)
	require.Equal(t, 31, txs.Window().TotalCount)

	sh, _ := shares.Share("s1")
	require.EqualValues(t, 1250, sh.Balance)
	require.Equal(t, 1, f.api.Count(cache.OpShares), "balance patched without a refetch")
}

func TestTransactionCachePostOffFirstPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	newLedger(f.api)

	ctx := context.Background()
	txs := cache.NewTransactionCache(f.client, f.bus, cache.WithPageSize(10))
	t.Cleanup(txs.Close)

	require.NoError(t, txs.Fetch(ctx, domain.TransactionFilter{ShareID: "s1"}))
	require.NoError(t, txs.FetchNext(ctx))
	before := txs.Items()

	_, err := txs.Post(ctx, domain.TransactionInput{ShareID: "s1", Amount: 5, Description: "x"})
	require.NoError(t, err)
	require.Equal(t, before, txs.Items())
	require.Equal(t, 31, txs.Window().TotalCount)
}

func TestTransactionCachePostOtherShare(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	newLedger(f.api)

	ctx := context.Background()
	txs := cache.NewTransactionCache(f.client, f.bus)
	t.Cleanup(txs.Close)

	require.NoError(t, txs.Fetch(ctx, domain.TransactionFilter{ShareID: "s1"}))
	_, err := txs.Post(ctx, domain.TransactionInput{ShareID: "s2", Amount: 5, Description: "x"})
	require.NoError(t, err)

	require.Equal(t, 30, txs.Window().TotalCount)
	require.Equal(t, "s1-t1", txs.Items()[0].ID)
}

func TestTransactionCachePostError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	newLedger(f.api)

	published := false
	unsub := eventbus.Subscribe(f.bus, domain.TransactionPosted, func(domain.TransactionPostedEvent) { published = true })
	defer unsub()

	txs := cache.NewTransactionCache(f.client, f.bus)
	t.Cleanup(txs.Close)

	_, err := txs.Post(context.Background(), domain.TransactionInput{ShareID: "missing", Amount: 5, Description: "x"})
	var gqlErr *gqlx.Error
	require.ErrorAs(t, err, &gqlErr)
	require.Equal(t, gqlx.CodeNotFound, gqlErr.Code)
	require.False(t, published)
}
