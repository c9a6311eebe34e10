package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// Backend is the subset of the API client the session needs
type Backend interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Session is the process-wide answer to "who is the current user".
// Handlers receive it explicitly; there is no package-level session.
type Session struct {
	mu            sync.RWMutex
	backend       Backend
	tokens        *TokenStore
	user          *models.User
	authenticated bool
	ready         chan struct{}
	readyOnce     sync.Once
	listeners     []func(authenticated bool)
}

// NewSession creates a session that is not yet ready; call Init once at startup
func NewSession(backend Backend, tokens *TokenStore) *Session {
	return &Session{
		backend: backend,
		tokens:  tokens,
		ready:   make(chan struct{}),
	}
}

// Init performs the initial auth check and marks the session ready
func (s *Session) Init(ctx context.Context) {
	defer s.markReady()
	s.CheckAuth(ctx)
}

// Ready is closed once the initial auth check has resolved
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// CheckAuth re-fetches the current user. Any failure leaves the session unauthenticated.
func (s *Session) CheckAuth(ctx context.Context) bool {
	if !s.tokens.HasTokenPair() {
		s.setState(nil)
		return false
	}

	user, err := s.backend.GetCurrentUser(ctx)
	if err != nil {
		slog.Info("Auth check failed, treating session as unauthenticated", "error", err)
		// Credentials the backend rejected outright are not worth keeping
		if client.IsKind(err, client.KindAuth) {
			s.tokens.Clear()
		}
		s.setState(nil)
		return false
	}

	s.tokens.SetUser(user)
	s.setState(user)
	return true
}

// SetAuthenticated records a successful login
func (s *Session) SetAuthenticated(resp *models.AuthResponse) {
	s.tokens.SetTokens(resp.AccessToken, resp.RefreshToken)
	user := resp.User
	s.tokens.SetUser(&user)
	s.setState(&user)
	s.markReady()

	slog.Info("User logged in", "user_id", user.ID, "provider", user.AuthProvider)
}

// UpdateUser replaces the cached profile after a profile-changing action
func (s *Session) UpdateUser(user *models.User) {
	if user == nil || !s.IsAuthenticated() {
		return
	}
	s.tokens.SetUser(user)
	s.setState(user)
}

// Logout revokes the refresh token (best-effort) and clears local state unconditionally
func (s *Session) Logout(ctx context.Context) {
	if refreshToken := s.tokens.RefreshToken(); refreshToken != "" {
		if err := s.backend.Logout(ctx, refreshToken); err != nil {
			slog.Warn("Server-side logout failed, clearing local session anyway", "error", err)
		}
	}
	s.Expire()
}

// Expire clears local auth state without contacting the backend
func (s *Session) Expire() {
	s.tokens.Clear()
	s.setState(nil)
}

// OnChange registers a listener for authentication transitions. A different user
// signing in over an existing session counts as one.
func (s *Session) OnChange(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) setState(user *models.User) {
	s.mu.Lock()
	was, wasID := s.authenticated, ""
	if s.user != nil {
		wasID = s.user.ID
	}
	if user == nil {
		s.user = nil
		s.authenticated = false
	} else {
		u := *user
		s.user = &u
		s.authenticated = true
	}
	now := s.authenticated
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	if was != now || (now && wasID != "" && wasID != user.ID) {
		for _, fn := range listeners {
			fn(now)
		}
	}
}

// User returns a copy of the current user, or nil
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// NeedsOnboarding reports whether the signed-in user has not completed onboarding
func (s *Session) NeedsOnboarding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated && s.user != nil && !s.user.OnboardingCompleted
}

// IsFullyVerified reports whether both email and phone are verified
func (s *Session) IsFullyVerified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.EmailVerified && s.user.PhoneVerified
}

// Tokens exposes the token store for cookie mirroring
func (s *Session) Tokens() *TokenStore {
	return s.tokens
}
