// Package session owns the process-wide bearer credential.
//
// The credential has an explicit lifecycle: Init reads the persisted token
// at startup, Login and Register set it, Logout clears it. Require is the
// gate every authenticated command passes through; it eagerly fetches the
// profile and forces a logout when that fetch fails. There is no refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/store"
)

var (
	// ErrNotAuthenticated is returned by Require when no credential is held.
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrSessionExpired is returned by Require when the profile fetch fails
	// and the credential has been discarded.
	ErrSessionExpired = errors.New("session expired, sign in again")
)

// Store persists the credential between invocations.
type Store interface {
	SaveToken(ctx context.Context, token, apiBaseURL string, now time.Time) error
	Token(ctx context.Context) (*store.Credential, error)
	ClearToken(ctx context.Context) error
	SaveProfile(ctx context.Context, u *model.User, now time.Time) error
}

// Authenticator is the slice of the API the session needs.
type Authenticator interface {
	BaseURL() string
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, email, password, displayName string) (*model.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
}

// Session holds the credential for one process.
type Session struct {
	store  Store
	auth   Authenticator
	clock  model.Clock
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *model.User
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to stamp saved credentials.
func WithClock(c model.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New returns an empty session. Call Init to load a persisted credential.
func New(st Store, auth Authenticator, opts ...Option) *Session {
	s := &Session{
		store:  st,
		auth:   auth,
		clock:  model.SystemClock{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted credential. A credential issued by a different
// API base URL is ignored.
func (s *Session) Init(ctx context.Context) error {
	cred, err := s.store.Token(ctx)
	if errors.Is(err, store.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred.APIBaseURL != s.auth.BaseURL() {
		s.logger.Debug("ignoring credential for another server",
			"saved_for", cred.APIBaseURL,
			"api", s.auth.BaseURL())
		return nil
	}

	s.mu.Lock()
	s.token = cred.Token
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or "" when signed out. It is safe
// to call on a nil Session.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns the profile fetched by the last Login, Register or Require.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Login signs in and persists the issued credential.
func (s *Session) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates an account and signs in as it.
func (s *Session) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	resp, err := s.auth.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *Session) adopt(ctx context.Context, resp *model.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("server issued an empty token")
	}
	now := s.clock.Now()
	if err := s.store.SaveToken(ctx, resp.Token, s.auth.BaseURL(), now); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &resp.User
	s.mu.Unlock()

	if err := s.store.SaveProfile(ctx, &resp.User, now); err != nil {
		s.logger.Warn("failed to save profile snapshot", "error", err)
	}
	return nil
}

// Logout discards the credential in memory and on disk.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Require gates authenticated access. Without a credential it returns
// ErrNotAuthenticated. With one it fetches the profile; any failure of that
// fetch forces a logout and returns ErrSessionExpired wrapping the cause.
// A fetch cut short by the caller cancelling ctx returns the cause and keeps
// the credential.
func (s *Session) Require(ctx context.Context) (*model.User, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.auth.Me(ctx)
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		s.logger.Debug("profile fetch failed, signing out", "error", err)
		if lerr := s.Logout(context.WithoutCancel(ctx)); lerr != nil {
			s.logger.Warn("failed to clear credential", "error", lerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if err := s.store.SaveProfile(ctx, user, s.clock.Now()); err != nil {
		s.logger.Warn("failed to save profile snapshot", "error", err)
	}
	return user, nil
}
