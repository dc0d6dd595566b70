package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/banksync/cmd/banksync/commands"
	"github.com/aussiebroadwan/banksync/internal/client/apitest"
	"github.com/aussiebroadwan/banksync/internal/client/cache"
	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/internal/client/service"
	"github.com/aussiebroadwan/banksync/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, api *apitest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", api.URL, "--store", "memory", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatusAnonymous(t *testing.T) {
	api := apitest.New(t)

	out, err := run(t, api, "status")
	require.NoError(t, err)
	require.Contains(t, out, "state: anonymous")
	require.Contains(t, out, "authenticated: false")
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	api := apitest.New(t)
	db := filepath.Join(t.TempDir(), "banksync.db")
	token := apitest.Token(t, jwtx.KindStudent, nil, time.Now().Add(time.Hour))

	out, err := run(t, api, "--store", "sqlite", "--db", db, "login", "--token", token)
	require.NoError(t, err)
	require.Contains(t, out, "state: student")

	out, err = run(t, api, "--store", "sqlite", "--db", db, "status")
	require.NoError(t, err)
	require.Contains(t, out, "state: student")
	require.Contains(t, out, "authenticated: true")
	require.NotContains(t, out, "expires:", "hint only, no credential")

	_, err = run(t, api, "--store", "sqlite", "--db", db, "logout")
	require.NoError(t, err)

	out, err = run(t, api, "--store", "sqlite", "--db", db, "status")
	require.NoError(t, err)
	require.Contains(t, out, "state: anonymous")
}

func TestStatusWithToken(t *testing.T) {
	api := apitest.New(t)
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token := apitest.Token(t, jwtx.KindUser, nil, exp)

	out, err := run(t, api, "--token", token, "status")
	require.NoError(t, err)
	require.Contains(t, out, "state: user")
	require.Contains(t, out, "username: member")
	require.Contains(t, out, "expires: 2030-01-02T03:04:05Z")
	require.Contains(t, out, "credential: valid")
}

func TestStatusExpiredToken(t *testing.T) {
	api := apitest.New(t)
	token := apitest.Token(t, jwtx.KindUser, nil, time.Now().Add(-time.Hour))

	out, err := run(t, api, "--token", token, "status")
	require.NoError(t, err)
	require.Contains(t, out, "state: user")
	require.Contains(t, out, "credential: expired")
}

func TestFailedCommandReleasesStore(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("BANKSYNC_REDIS_ADDR", mr.Addr())
	api := apitest.New(t)

	released := func() bool { return mr.CurrentConnectionCount() == 0 }

	_, err := run(t, api, "--store", "redis", "refresh")
	require.ErrorIs(t, err, service.ErrNotAuthenticated)
	require.Eventually(t, released, time.Second, 5*time.Millisecond)

	// Required flags are checked after the application is opened
	_, err = run(t, api, "--store", "redis", "login")
	require.Error(t, err)
	require.Eventually(t, released, time.Second, 5*time.Millisecond)
}

func TestLoginMalformed(t *testing.T) {
	api := apitest.New(t)
	_, err := run(t, api, "login", "--token", "garbage")
	require.Error(t, err)
}

func TestSharesPage(t *testing.T) {
	api := apitest.New(t)
	all := make([]domain.Share, 30)
	for i := range all {
		all[i] = domain.Share{ID: fmt.Sprintf("s%d", i+1), Name: "Savings", Balance: 1050}
	}
	api.Handle(cache.OpShares, func(vars map[string]any) (any, error) {
		return apitest.Paginate(all, vars), nil
	})

	out, err := run(t, api, "--page-size", "10", "shares", "--page", "2")
	require.NoError(t, err)
	require.Contains(t, out, "s11")
	require.NotContains(t, out, "s21")
	require.Contains(t, out, "$10.50")
	require.Contains(t, out, "page 2 of 3 (30 total)")
	require.Equal(t, 2, api.Count(cache.OpShares))
}

func TestTransactionsRequiresShare(t *testing.T) {
	api := apitest.New(t)
	_, err := run(t, api, "transactions")
	require.Error(t, err)
}

func TestPost(t *testing.T) {
	api := apitest.New(t)
	api.Handle(cache.OpPostTransaction, func(vars map[string]any) (any, error) {
		return domain.Transaction{
			ID:         "t1",
			ShareID:    apitest.String(vars, "shareId"),
			Amount:     apitest.Int(vars, "amount"),
			NewBalance: 500 + apitest.Int(vars, "amount"),
		}, nil
	})

	t.Run("invalid input is reported", func(t *testing.T) {
		out, err := run(t, api, "post", "--amount", "1.234")
		require.NoError(t, err)
		require.Contains(t, out, "invalid input:")
		require.Contains(t, out, "amount: must have at most two decimal places")
		require.Contains(t, out, "shareId: required")
		require.Contains(t, out, "description: required")
		require.Zero(t, api.Count(cache.OpPostTransaction))
	})

	t.Run("valid input is posted", func(t *testing.T) {
		out, err := run(t, api, "post", "--share", "s1", "--amount", "2.50", "--description", "lunch", "--withdraw")
		require.NoError(t, err)
		require.Contains(t, out, "posted t1: -$2.50, new balance $2.50")

		call := api.Calls(cache.OpPostTransaction)[0]
		require.EqualValues(t, -250, apitest.Int(call.Variables, "amount"))
	})
}

func TestBuyValidation(t *testing.T) {
	api := apitest.New(t)
	out, err := run(t, api, "buy", "--quantity", "0")
	require.NoError(t, err)
	require.Contains(t, out, "quantity: must be at least 1")
	require.Zero(t, api.Count(""))
}

func TestHistory(t *testing.T) {
	api := apitest.New(t)
	api.Handle(cache.OpStockHistory, func(map[string]any) (any, error) {
		return []domain.PricePoint{{At: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Price: 1234}}, nil
	})

	out, err := run(t, api, "history", "--stock", "st1")
	require.NoError(t, err)
	require.Contains(t, out, "2024-05-01T00:00:00Z")
	require.Contains(t, out, "$12.34")
}
