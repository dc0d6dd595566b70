package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/session"
)

// OpRefreshToken exchanges the current session for a fresh credential.
const OpRefreshToken = "refreshToken"

// RefreshSkew is how close to expiry a credential is renewed.
const RefreshSkew = 30 * time.Second

var (
	ErrNotAuthenticated = errors.New("service: not authenticated")
	ErrEmptyToken       = errors.New("service: refresh returned no token")
)

type refreshResult struct {
	Token string `json:"token"`
}

// RefreshService keeps the session credential alive. On start and on every
// tick it renews the credential when the session is authenticated but holds
// no live credential (hydrated from a hint), or when the credential is about
// to expire. A failed refresh logs the session out.
type RefreshService struct {
	Session  *session.Machine
	Client   *gqlx.Client
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRefreshService creates a refresh service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewRefreshService(machine *session.Machine, client *gqlx.Client, logger *slog.Logger, interval time.Duration) *RefreshService {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshService{
		Session:  machine,
		Client:   client,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. It is non-blocking; call Stop to shut
// it down.
func (s *RefreshService) Start() {
	go s.run()
	s.Logger.Info("refresh service started", "interval", s.Interval)
}

// Stop shuts the worker down, waiting for an in-progress refresh.
func (s *RefreshService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("refresh service stopped")
}

func (s *RefreshService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Check immediately on startup
	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *RefreshService) tick() {
	if !s.NeedsRefresh() {
		return
	}
	if err := s.RefreshNow(context.Background()); err != nil {
		s.Logger.Warn("credential refresh failed", "error", err)
	}
}

// NeedsRefresh reports whether the session should be renewed now.
func (s *RefreshService) NeedsRefresh() bool {
	if !s.Session.IsAuthenticated() {
		return false
	}

	claims, ok := s.Session.Claims()
	if !ok {
		return true
	}
	return claims.ExpiresWithin(RefreshSkew)
}

// RefreshNow renews the credential unconditionally. Any failure, including a
// malformed token from the server, logs the session out. When the session is
// reassigned while the request is in flight (a logout, or a login with a
// new credential) the response is dropped and session.ErrSuperseded returned.
func (s *RefreshService) RefreshNow(ctx context.Context) error {
	gen := s.Session.Generation()
	if !s.Session.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	token, err := s.fetchToken(ctx)
	if err != nil {
		s.logout(ctx, gen)
		return err
	}

	if err := s.Session.SetCredentialIf(ctx, gen, &token); err != nil {
		switch {
		case errors.Is(err, session.ErrSuperseded):
			s.Logger.Debug("refreshed credential dropped, session changed")
			return err
		case errors.Is(err, session.ErrMalformedCredential):
			s.logout(ctx, gen)
			return err
		}
		// Credential is assigned, only the hint write failed
		s.Logger.Warn("session hint not persisted", "error", err)
	}

	s.Logger.Debug("credential refreshed", "state", s.Session.State().String())
	return nil
}

// logout clears the session unless it was reassigned after gen.
func (s *RefreshService) logout(ctx context.Context, gen uint64) {
	if err := s.Session.SetCredentialIf(ctx, gen, nil); err != nil {
		return
	}
	s.Logger.Info("session logged out after failed refresh")
}

func (s *RefreshService) fetchToken(ctx context.Context) (string, error) {
	data, err := gqlx.Query[map[string]refreshResult](ctx, s.Client, gqlx.Request{
		Operation: OpRefreshToken,
		Policy:    gqlx.NetworkOnly,
	})
	s.Client.Invalidate(OpRefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	token := data[OpRefreshToken].Token
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}
