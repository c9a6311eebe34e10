package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
)

const LoginPath = "/auth/login"

// RouteGuardConfig lists the guarded path prefixes and the cookies that mark a visitor as signed in
type RouteGuardConfig struct {
	AccessTokenCookie string
	UserCookie        string
	ProtectedPrefixes []string
	AuthOnlyPrefixes  []string
}

// DefaultRouteGuardConfig returns the storefront's guarded prefixes
func DefaultRouteGuardConfig(accessTokenCookie, userCookie string) RouteGuardConfig {
	return RouteGuardConfig{
		AccessTokenCookie: accessTokenCookie,
		UserCookie:        userCookie,
		ProtectedPrefixes: []string{"/profile", "/orders", "/checkout"},
		AuthOnlyPrefixes:  []string{LoginPath},
	}
}

// RouteGuard redirects anonymous visitors away from protected pages and signed-in
// visitors away from the login page. It only checks that both cookies are present;
// token validity is left to the backend.
func RouteGuard(cfg RouteGuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			authenticated := hasCookie(r, cfg.AccessTokenCookie) && hasCookie(r, cfg.UserCookie)

			if !authenticated && matchesAny(path, cfg.ProtectedPrefixes) {
				slog.Debug("Redirecting anonymous visitor to login", "path", path)
				http.Redirect(w, r, LoginRedirect(path), http.StatusTemporaryRedirect)
				return
			}

			if authenticated && matchesAny(path, cfg.AuthOnlyPrefixes) {
				http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirect builds the login URL that returns the visitor to path afterwards
func LoginRedirect(path string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(path)
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}
