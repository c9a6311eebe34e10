package middleware

import (
	"log/slog"
	"net/http"
)

// SessionState is the part of the auth session the guard depends on
type SessionState interface {
	Ready() <-chan struct{}
	IsAuthenticated() bool
}

// RequireSession holds requests until the initial session check has resolved and
// then lets only authenticated visitors through. Pages are redirected to login with
// the intended destination; API calls get a 401. Any of staleCookies the rejected
// visitor still carries are expired so the route guard lets them reach the login page.
func RequireSession(session SessionState, staleCookies ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-session.Ready():
			case <-r.Context().Done():
				slog.Debug("Request ended before session check resolved", "path", r.URL.Path)
				writeErrorResponse(w, http.StatusServiceUnavailable, "session_pending",
					"Session check did not complete", nil)
				return
			}

			if session.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}
			expireCookies(w, r, staleCookies)

			if isAPIPath(r.URL.Path) {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Please login to continue", nil)
				return
			}

			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, LoginRedirect(target), http.StatusTemporaryRedirect)
		})
	}
}

func expireCookies(w http.ResponseWriter, r *http.Request, names []string) {
	for _, name := range names {
		if !hasCookie(r, name) {
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	}
}
