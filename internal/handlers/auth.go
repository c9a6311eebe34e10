package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/auth"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// LoginFlows is the login surface of the auth service
type LoginFlows interface {
	SendEmailOTP(ctx context.Context, email string) (*models.MessageResponse, error)
	VerifyEmailOTP(ctx context.Context, email, otp string) (*models.AuthResponse, error)
	SendPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error)
	VerifyPhoneOTP(ctx context.Context, phone, otp string) (*models.AuthResponse, error)
	GoogleLogin(ctx context.Context, credential string) (*models.AuthResponse, error)
}

// SessionView is the session surface handlers read and end
type SessionView interface {
	User() *models.User
	IsAuthenticated() bool
	CheckAuth(ctx context.Context) bool
	Logout(ctx context.Context)
}

// CookieConfig names the cookies the route guard checks
type CookieConfig struct {
	AccessToken string
	User        string
	Secure      bool
	MaxAge      time.Duration
}

// LoginResponse tells the UI who signed in and where to go next
type LoginResponse struct {
	User models.User `json:"user"`
	Next string      `json:"next"`
}

// userCookie is the non-secret subset of the user stored client-side
type userCookie struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	OTP        string `json:"otp"`
	Credential string `json:"credential"`
	Redirect   string `json:"redirect"`
}

// AuthHandler handles login, logout and current-user requests
type AuthHandler struct {
	flows   LoginFlows
	session SessionView
	cookies CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(flows LoginFlows, session SessionView, cookies CookieConfig) *AuthHandler {
	if cookies.MaxAge <= 0 {
		cookies.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{flows: flows, session: session, cookies: cookies}
}

// SendEmailOTP handles POST /api/auth/email/send-otp
func (h *AuthHandler) SendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.SendEmailOTP(r.Context(), req.Email)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// VerifyEmailOTP handles POST /api/auth/email/verify-otp
func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.VerifyEmailOTP(r.Context(), req.Email, req.OTP)
	h.completeLogin(w, r, resp, err, req.Redirect)
}

// SendPhoneOTP handles POST /api/auth/phone/send-otp
func (h *AuthHandler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.SendPhoneOTP(r.Context(), req.Phone)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// VerifyPhoneOTP handles POST /api/auth/phone/verify-otp
func (h *AuthHandler) VerifyPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.VerifyPhoneOTP(r.Context(), req.Phone, req.OTP)
	h.completeLogin(w, r, resp, err, req.Redirect)
}

// GoogleLogin handles POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.GoogleLogin(r.Context(), req.Credential)
	h.completeLogin(w, r, resp, err, req.Redirect)
}

func (h *AuthHandler) completeLogin(w http.ResponseWriter, r *http.Request, resp *models.AuthResponse, err error, redirect string) {
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	h.setSessionCookies(w, resp)
	writeJSONResponse(w, http.StatusOK, LoginResponse{
		User: resp.User,
		Next: NextDestination(&resp.User, SafeRedirect(redirect)),
	})
}

// Me handles GET /api/auth/me. It re-checks the session with the backend.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if !h.session.CheckAuth(r.Context()) {
		h.clearSessionCookies(w)
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Not signed in", nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.session.User())
}

// Logout handles POST /api/auth/logout. Local state is always cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	h.clearSessionCookies(w)
	writeJSONResponse(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, resp *models.AuthResponse) {
	maxAge := h.cookies.MaxAge
	if exp, err := auth.TokenExpiry(resp.AccessToken); err == nil {
		// The cookie outlives the access token; the refresh token renews it
		if until := time.Until(exp); until > maxAge {
			maxAge = until
		}
	}

	payload, _ := json.Marshal(userCookie{ID: resp.User.ID, Email: resp.User.Email, Phone: resp.User.Phone})
	http.SetCookie(w, h.cookie(h.cookies.AccessToken, resp.AccessToken, maxAge))
	http.SetCookie(w, h.cookie(h.cookies.User, base64.RawURLEncoding.EncodeToString(payload), maxAge))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{h.cookies.AccessToken, h.cookies.User} {
		c := h.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *AuthHandler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NextDestination sends users through verification and onboarding before redirect
func NextDestination(user *models.User, redirect string) string {
	if user == nil {
		return "/auth/login?redirect=" + url.QueryEscape(redirect)
	}
	if !user.EmailVerified || !user.PhoneVerified {
		return "/verify?redirect=" + url.QueryEscape(redirect)
	}
	if !user.OnboardingCompleted {
		return "/onboarding?redirect=" + url.QueryEscape(redirect)
	}
	return redirect
}

// SafeRedirect accepts only same-site absolute paths
func SafeRedirect(redirect string) string {
	if len(redirect) == 0 || redirect[0] != '/' {
		return "/"
	}
	if len(redirect) > 1 && (redirect[1] == '/' || redirect[1] == '\\') {
		return "/"
	}
	return redirect
}
