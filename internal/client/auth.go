package client

import (
	"context"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

func (c *APIClient) SendEmailOTP(ctx context.Context, email string) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/email/send-otp", false, models.EmailOTPRequest{Email: email})
}

func (c *APIClient) VerifyEmailOTP(ctx context.Context, email, otp string) (*models.AuthResponse, error) {
	return c.postAuth(ctx, "/auth/email/verify-otp", models.VerifyEmailOTPRequest{Email: email, OTP: otp})
}

func (c *APIClient) SendPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/phone/send-otp", false, models.PhoneOTPRequest{Phone: phone})
}

func (c *APIClient) VerifyPhoneOTP(ctx context.Context, phone, otp string) (*models.AuthResponse, error) {
	return c.postAuth(ctx, "/auth/phone/verify-otp", models.VerifyPhoneOTPRequest{Phone: phone, OTP: otp})
}

// GoogleLogin exchanges a Google ID credential for a session
func (c *APIClient) GoogleLogin(ctx context.Context, credential string) (*models.AuthResponse, error) {
	return c.postAuth(ctx, "/auth/google", models.GoogleAuthRequest{Credential: credential})
}

// GetCurrentUser fetches the profile behind the stored access token
func (c *APIClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Request(ctx, "/auth/me", RequestOptions{RequiresAuth: true}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the refresh token server-side
func (c *APIClient) Logout(ctx context.Context, refreshToken string) error {
	return c.Request(ctx, "/auth/logout", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPost,
		Body:         models.RefreshRequest{RefreshToken: refreshToken},
	}, nil)
}

// Standalone verification for a logged-in user

func (c *APIClient) SendVerificationEmailOTP(ctx context.Context) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/verify/email/send-otp", true, nil)
}

func (c *APIClient) VerifyEmail(ctx context.Context, otp string) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/verify/email", true, models.OTPRequest{OTP: otp})
}

func (c *APIClient) SendVerificationPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/verify/phone/send-otp", true, models.PhoneOTPRequest{Phone: phone})
}

func (c *APIClient) VerifyPhone(ctx context.Context, phone, otp string) (*models.MessageResponse, error) {
	return c.postMessage(ctx, "/auth/verify/phone", true, models.VerifyPhoneOTPRequest{Phone: phone, OTP: otp})
}

// CompleteOnboarding stores the one-time profile details
func (c *APIClient) CompleteOnboarding(ctx context.Context, req models.OnboardingRequest) (*models.User, error) {
	var user models.User
	err := c.Request(ctx, "/users/me/onboarding", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPatch,
		Body:         req,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) postMessage(ctx context.Context, endpoint string, requiresAuth bool, body interface{}) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.Request(ctx, endpoint, RequestOptions{
		RequiresAuth: requiresAuth,
		Method:       http.MethodPost,
		Body:         body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) postAuth(ctx context.Context, endpoint string, body interface{}) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.Request(ctx, endpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
