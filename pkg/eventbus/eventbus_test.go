package eventbus_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/stretchr/testify/require"
)

type balanceChange struct {
	ShareID    string
	NewBalance int64
}

var balanceChanged = eventbus.Create[balanceChange]("share.balance_changed")

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	require.NotPanics(t, func() {
		eventbus.Publish(bus, balanceChanged, balanceChange{ShareID: "s1"})
	})
	require.Zero(t, bus.Subscribers(balanceChanged.Name()))
}

func TestEachSubscriberReceivesOnce(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	const n = 5

	got := make([][]balanceChange, n)
	unsubs := make([]func(), n)
	for i := 0; i < n; i++ {
		unsubs[i] = eventbus.Subscribe(bus, balanceChanged, func(p balanceChange) {
			got[i] = append(got[i], p)
		})
	}
	require.Equal(t, n, bus.Subscribers(balanceChanged.Name()))

	payload := balanceChange{ShareID: "s1", NewBalance: 4200}
	eventbus.Publish(bus, balanceChanged, payload)

	for i := 0; i < n; i++ {
		require.Equal(t, []balanceChange{payload}, got[i])
	}

	t.Run("unsubscribed receives nothing further", func(t *testing.T) {
		unsubs[2]()
		eventbus.Publish(bus, balanceChanged, balanceChange{ShareID: "s2"})

		require.Len(t, got[2], 1)
		require.Len(t, got[0], 2)
		require.Len(t, got[4], 2)
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		require.NotPanics(t, unsubs[2])
		require.Equal(t, n-1, bus.Subscribers(balanceChanged.Name()))
	})
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	var order []int
	for i := 0; i < 10; i++ {
		eventbus.Subscribe(bus, balanceChanged, func(balanceChange) {
			order = append(order, i)
		})
	}

	eventbus.Publish(bus, balanceChanged, balanceChange{})
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var before, after int
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { before++ })
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { panic("boom") })
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { after++ })

	require.NotPanics(t, func() {
		eventbus.Publish(bus, balanceChanged, balanceChange{})
	})
	require.Equal(t, 1, before)
	require.Equal(t, 1, after)
	require.Contains(t, logs.String(), "event subscriber panicked")
	require.Contains(t, logs.String(), "boom")
}

func TestSubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	var late int
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) {
		eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { late++ })
	})

	// The subscription added mid-publish only sees later publishes
	eventbus.Publish(bus, balanceChanged, balanceChange{})
	require.Zero(t, late)

	eventbus.Publish(bus, balanceChanged, balanceChange{})
	require.Equal(t, 1, late)
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	var second int
	var unsubSecond func()
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { unsubSecond() })
	unsubSecond = eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { second++ })

	// Snapshot taken at publish time still includes the second subscriber
	eventbus.Publish(bus, balanceChanged, balanceChange{})
	require.Equal(t, 1, second)

	eventbus.Publish(bus, balanceChanged, balanceChange{})
	require.Equal(t, 1, second)
}

func TestNameCollisionWithDifferentPayload(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	clash := eventbus.Create[string](balanceChanged.Name())

	var typed, raw int
	eventbus.Subscribe(bus, balanceChanged, func(balanceChange) { typed++ })
	eventbus.Subscribe(bus, clash, func(string) { raw++ })

	eventbus.Publish(bus, clash, "hello")
	require.Zero(t, typed)
	require.Equal(t, 1, raw)
	require.Contains(t, logs.String(), "event payload type mismatch")
}

func TestBusesAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := eventbus.New(), eventbus.New()
	var hits int
	eventbus.Subscribe(a, balanceChanged, func(balanceChange) { hits++ })

	eventbus.Publish(b, balanceChanged, balanceChange{})
	require.Zero(t, hits)
}
