package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/jwtx"
)

// ErrMalformedCredential is returned by SetCredential when the claims segment
// of the token is not valid base64url JSON. It is fatal: callers are expected
// to force a logout rather than carry on with a corrupt session.
var ErrMalformedCredential = errors.New("session: malformed credential")

// ErrSuperseded is returned by SetCredentialIf when another assignment ran
// after the caller read the generation.
var ErrSuperseded = errors.New("session: credential superseded")

// Changed is published on the machine's bus after every state assignment.
var Changed = eventbus.Create[State]("session.changed")

// Machine holds the one session record of the process. It is safe for
// concurrent use.
type Machine struct {
	store   Store
	logger  *slog.Logger
	bus     *eventbus.Bus
	hintKey string

	// assign is held for a whole assignment: state change, Changed publish
	// and the hint write. Subscribers must not assign from a Changed callback.
	assign sync.Mutex

	mu       sync.RWMutex
	gen      uint64 // bumped by every assignment
	token    string
	hasToken bool
	claims   jwtx.Claims
	state    State
	hinted   bool // a persisted hint is known to exist
}

type Option func(*Machine)

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBus publishes Changed on a shared bus instead of a private one.
func WithBus(b *eventbus.Bus) Option {
	return func(m *Machine) {
		if b != nil {
			m.bus = b
		}
	}
}

// WithHintKey overrides the storage key of the hint.
func WithHintKey(key string) Option {
	return func(m *Machine) {
		if key != "" {
			m.hintKey = key
		}
	}
}

// New creates an Anonymous machine persisting its hint in store.
func New(store Store, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		logger:  slog.Default(),
		hintKey: HintKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bus == nil {
		m.bus = eventbus.New(eventbus.WithLogger(m.logger))
	}
	return m
}

// Hydrate sets the tentative state from the persisted hint. It runs once at
// process start, before any SetCredential. It never fails: a missing or
// corrupt hint leaves the machine Anonymous.
func (m *Machine) Hydrate(ctx context.Context) {
	m.assign.Lock()
	defer m.assign.Unlock()

	raw, err := m.store.Get(ctx, m.hintKey)
	if err != nil {
		m.logger.Debug("no persisted session hint", "error", err)
		return
	}

	var h Hint
	if err := h.UnmarshalBinary(raw); err != nil {
		m.logger.Warn("ignoring corrupt session hint", "error", err)
		return
	}

	m.mu.Lock()
	if m.hasToken {
		// A live credential already won
		m.mu.Unlock()
		return
	}
	m.state = h.State()
	m.hinted = true
	m.gen++
	state := m.state
	m.mu.Unlock()

	m.logger.Debug("session hydrated from hint", "state", state.String())
	eventbus.Publish(m.bus, Changed, state)
}

// SetCredential assigns a new bearer credential, or logs out when token is
// nil. Logging out always succeeds. A malformed token returns an error
// wrapping ErrMalformedCredential and leaves the machine untouched.
//
// Assignments are serialised: the hint left in the store and the last
// Changed event always match the final state.
func (m *Machine) SetCredential(ctx context.Context, token *string) error {
	m.assign.Lock()
	defer m.assign.Unlock()
	return m.set(ctx, token)
}

// SetCredentialIf behaves like SetCredential but only when no assignment has
// happened since gen was read from Generation. Otherwise it returns
// ErrSuperseded and leaves the machine untouched.
func (m *Machine) SetCredentialIf(ctx context.Context, gen uint64, token *string) error {
	m.assign.Lock()
	defer m.assign.Unlock()

	if m.Generation() != gen {
		return ErrSuperseded
	}
	return m.set(ctx, token)
}

// Generation identifies the current assignment. It changes whenever the
// credential is set, cleared or hydrated.
func (m *Machine) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// set performs one assignment. Caller holds m.assign.
func (m *Machine) set(ctx context.Context, token *string) error {
	if token == nil {
		m.clear(ctx)
		return nil
	}

	claims, err := jwtx.DecodeUnverified(*token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedCredential, err)
	}

	state := Derive(claims)

	m.mu.Lock()
	m.token = *token
	m.hasToken = true
	m.claims = claims
	m.state = state
	m.hinted = true
	m.gen++
	m.mu.Unlock()

	eventbus.Publish(m.bus, Changed, state)

	raw, _ := hintFor(state).MarshalBinary()
	if err := m.store.Set(ctx, m.hintKey, raw); err != nil {
		return fmt.Errorf("session: persist hint: %w", err)
	}
	return nil
}

func (m *Machine) clear(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.hasToken = false
	m.claims = jwtx.Claims{}
	m.state = Anonymous
	m.hinted = false
	m.gen++
	m.mu.Unlock()

	eventbus.Publish(m.bus, Changed, Anonymous)

	if err := m.store.Remove(ctx, m.hintKey); err != nil {
		m.logger.Warn("failed to erase session hint", "error", err)
	}
}

// Subscribe calls fn with the new state after every assignment. fn runs
// while the assignment is in progress and must not call SetCredential.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	return eventbus.Subscribe(m.bus, Changed, fn)
}

// State returns the current derived state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated is true whenever a credential or a persisted hint exists.
func (m *Machine) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasToken || m.hinted
}

// HasCredential is true only when a live credential is held, as opposed to a
// hydrated hint.
func (m *Machine) HasCredential() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasToken
}

func (m *Machine) IsStudent() bool { return m.State().IsStudent() }

func (m *Machine) IsPreauthorized() bool { return m.State().IsPreauthorized() }

// Expiration returns the credential's exp claim, if a credential is held and
// carries one.
func (m *Machine) Expiration() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasToken {
		return time.Time{}, false
	}
	return m.claims.Expiration()
}

// Claims returns a copy of the decoded claims.
func (m *Machine) Claims() (jwtx.Claims, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims, m.hasToken
}

// Token returns the raw credential, empty when none is held. It doubles as
// the token source of the network client.
func (m *Machine) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}
