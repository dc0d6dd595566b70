package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/banksync/internal/client/apitest"
	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/session"
	"github.com/aussiebroadwan/banksync/pkg/slogx"
)

type fixture struct {
	api    *apitest.Server
	client *gqlx.Client
	bus    *eventbus.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	api := apitest.New(t)
	return &fixture{
		api:    api,
		client: gqlx.NewClient(api.URL, gqlx.WithLogger(slogx.Discard())),
		bus:    eventbus.New(eventbus.WithLogger(slogx.Discard())),
	}
}

func (f *fixture) logout() {
	eventbus.Publish(f.bus, session.Changed, session.Anonymous)
}

func makeShares(n int) []domain.Share {
	out := make([]domain.Share, n)
	for i := range out {
		out[i] = domain.Share{ID: fmt.Sprintf("s%d", i+1), Name: fmt.Sprintf("Share %d", i+1), Balance: 1000}
	}
	return out
}

func makeTransactions(shareID string, n int) []domain.Transaction {
	out := make([]domain.Transaction, n)
	for i := range out {
		out[i] = domain.Transaction{
			ID:          fmt.Sprintf("%s-t%d", shareID, i+1),
			ShareID:     shareID,
			Amount:      100,
			Description: "deposit",
			PostedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func makeStocks(n int) []domain.Stock {
	out := make([]domain.Stock, n)
	for i := range out {
		out[i] = domain.Stock{ID: fmt.Sprintf("st%d", i+1), Symbol: fmt.Sprintf("SYM%d", i+1), Price: 500}
	}
	return out
}
