// Package eventbus is a typed, in-process publish/subscribe registry used to
// propagate point-in-time mutations between otherwise independent caches.
//
// Events are identified by name only. A handle created with Create carries
// the payload type, so Subscribe and Publish are checked at compile time:
//
//	var PricesChanged = eventbus.Create[PriceChange]("stock.price_changed")
//
//	bus := eventbus.New()
//	unsubscribe := eventbus.Subscribe(bus, PricesChanged, func(p PriceChange) { ... })
//	eventbus.Publish(bus, PricesChanged, PriceChange{StockID: "s1", Price: 101})
//	unsubscribe()
//
// Delivery is synchronous on the publishing goroutine and follows
// subscription order. A panicking subscriber is recovered and logged, the
// remaining subscribers still receive the event.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/banksync/pkg/idx"
)

// Event is a named event whose payload has type P. The zero value is not
// useful, use Create.
type Event[P any] struct {
	name string
}

// Create returns a handle for the event called name. It has no side effect.
func Create[P any](name string) Event[P] {
	return Event[P]{name: name}
}

// Name returns the event name.
func (e Event[P]) Name() string { return e.name }

type registration struct {
	id idx.ID
	fn func(any)
}

// Bus owns a subscription table. Create one per process (or per test) and
// pass it to the components that need it.
type Bus struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string][]registration // kept in subscription order
}

type Option func(*Bus)

// WithLogger sets the logger used to report subscriber panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger: slog.Default(),
		subs:   make(map[string][]registration),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for ev and returns a function removing it again.
// The returned function is safe to call more than once.
func Subscribe[P any](b *Bus, ev Event[P], fn func(P)) (unsubscribe func()) {
	id := idx.New()
	wrapped := func(payload any) {
		p, ok := payload.(P)
		if !ok {
			// Two handles share a name but not a payload type
			b.logger.Error("event payload type mismatch",
				"event", ev.name,
				"subscription", id.String(),
				"payload_type", fmt.Sprintf("%T", payload),
			)
			return
		}
		fn(p)
	}

	b.mu.Lock()
	b.subs[ev.name] = append(b.subs[ev.name], registration{id: id, fn: wrapped})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(ev.name, id) })
	}
}

func (b *Bus) remove(name string, id idx.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.subs[name]
	for i, r := range regs {
		if r.id != id {
			continue
		}

		// Copy so that a publish iterating the old slice is unaffected
		next := make([]registration, 0, len(regs)-1)
		next = append(next, regs[:i]...)
		next = append(next, regs[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, name)
		} else {
			b.subs[name] = next
		}
		return
	}
}

// Publish delivers payload to every subscriber of ev registered at the time
// of the call, in subscription order. With no subscribers it does nothing.
func Publish[P any](b *Bus, ev Event[P], payload P) {
	b.mu.RLock()
	regs := b.subs[ev.name]
	b.mu.RUnlock()

	for _, r := range regs {
		b.deliver(ev.name, r, payload)
	}
}

func (b *Bus) deliver(name string, r registration, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("event subscriber panicked",
				"event", name,
				"subscription", r.id.String(),
				"panic", fmt.Sprint(rec),
			)
		}
	}()

	r.fn(payload)
}

// Subscribers returns the number of live subscriptions for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
