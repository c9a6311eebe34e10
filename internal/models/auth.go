package models

import "time"

// User is the profile returned by GET /auth/me and by every login flow
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	FirstName           string    `json:"firstName,omitempty"`
	LastName            string    `json:"lastName,omitempty"`
	EmailVerified       bool      `json:"emailVerified"`
	PhoneVerified       bool      `json:"phoneVerified"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	AuthProvider        string    `json:"authProvider,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
}

// AuthResponse is returned by every successful login
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshResponse is returned by POST /auth/refresh. RefreshToken is set when the backend rotates it.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type EmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type PhoneOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
}

type VerifyPhoneOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type GoogleAuthRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// OTPRequest carries only a code, for verification of an already known contact
type OTPRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type OnboardingRequest struct {
	FirstName   string `json:"firstName" validate:"required,min=1,max=50"`
	LastName    string `json:"lastName" validate:"omitempty,max=50"`
	DateOfBirth string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}
