package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/storage"
	"github.com/golang-jwt/jwt/v5"
)

// Persisted key names
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

// TokenStore keeps the token pair and the cached user in the local store.
// Writes are best-effort: a failing store is logged and the in-memory copy stays authoritative.
type TokenStore struct {
	mu           sync.RWMutex
	store        storage.Store
	accessToken  string
	refreshToken string
	user         *models.User
}

// NewTokenStore loads any persisted session from store
func NewTokenStore(store storage.Store) *TokenStore {
	ts := &TokenStore{store: store}

	if v, ok, err := store.Get(AccessTokenKey); err != nil {
		slog.Warn("Failed to read access token from storage", "error", err)
	} else if ok {
		ts.accessToken = v
	}

	if v, ok, err := store.Get(RefreshTokenKey); err != nil {
		slog.Warn("Failed to read refresh token from storage", "error", err)
	} else if ok {
		ts.refreshToken = v
	}

	var user models.User
	if found, err := storage.GetJSON(store, UserKey, &user); err != nil {
		slog.Warn("Failed to read user from storage", "error", err)
	} else if found {
		ts.user = &user
	}

	return ts
}

func (ts *TokenStore) AccessToken() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.accessToken
}

func (ts *TokenStore) RefreshToken() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.refreshToken
}

// HasTokenPair reports whether both tokens are present
func (ts *TokenStore) HasTokenPair() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.accessToken != "" && ts.refreshToken != ""
}

// SetTokens stores a new token pair
func (ts *TokenStore) SetTokens(accessToken, refreshToken string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.accessToken = accessToken
	ts.refreshToken = refreshToken
	ts.persist(AccessTokenKey, accessToken)
	ts.persist(RefreshTokenKey, refreshToken)
}

// User returns a copy of the cached user, or nil
func (ts *TokenStore) User() *models.User {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if ts.user == nil {
		return nil
	}
	u := *ts.user
	return &u
}

// SetUser caches the user profile
func (ts *TokenStore) SetUser(user *models.User) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if user == nil {
		ts.user = nil
		ts.remove(UserKey)
		return
	}

	u := *user
	ts.user = &u
	if err := storage.SetJSON(ts.store, UserKey, u); err != nil {
		slog.Warn("Failed to persist user", "error", err)
	}
}

// Clear removes every piece of auth state
func (ts *TokenStore) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.accessToken = ""
	ts.refreshToken = ""
	ts.user = nil
	ts.remove(AccessTokenKey)
	ts.remove(RefreshTokenKey)
	ts.remove(UserKey)
}

// TokenExpiry returns the exp claim of an unverified JWT
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("access token has no exp claim")
	}
	return exp.Time, nil
}

func (ts *TokenStore) persist(key, value string) {
	if value == "" {
		ts.remove(key)
		return
	}
	if err := ts.store.Set(key, value); err != nil {
		slog.Warn("Failed to persist auth value", "key", key, "error", err)
	}
}

func (ts *TokenStore) remove(key string) {
	if err := ts.store.Delete(key); err != nil {
		slog.Warn("Failed to remove auth value", "key", key, "error", err)
	}
}
