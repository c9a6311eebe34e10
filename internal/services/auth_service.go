package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/auth"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

// AuthBackend is the subset of the API client used by the auth flows
type AuthBackend interface {
	SendEmailOTP(ctx context.Context, email string) (*models.MessageResponse, error)
	VerifyEmailOTP(ctx context.Context, email, otp string) (*models.AuthResponse, error)
	SendPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error)
	VerifyPhoneOTP(ctx context.Context, phone, otp string) (*models.AuthResponse, error)
	GoogleLogin(ctx context.Context, credential string) (*models.AuthResponse, error)
	SendVerificationEmailOTP(ctx context.Context) (*models.MessageResponse, error)
	VerifyEmail(ctx context.Context, otp string) (*models.MessageResponse, error)
	SendVerificationPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error)
	VerifyPhone(ctx context.Context, phone, otp string) (*models.MessageResponse, error)
	CompleteOnboarding(ctx context.Context, req models.OnboardingRequest) (*models.User, error)
	SubscribeNewsletter(ctx context.Context, email string) (*models.MessageResponse, error)
}

// ErrNotAuthenticated is returned by flows that need a signed-in user
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthService implements the login methods, contact verification and onboarding.
// Inputs are validated before any backend call.
type AuthService struct {
	backend  AuthBackend
	session  *auth.Session
	validate *validator.Validate
	flowOpts []auth.FlowOption
}

// NewAuthService creates a new auth service
func NewAuthService(backend AuthBackend, session *auth.Session, flowOpts ...auth.FlowOption) *AuthService {
	return &AuthService{
		backend:  backend,
		session:  session,
		validate: newValidator(),
		flowOpts: flowOpts,
	}
}

// SendEmailOTP starts an email login
func (s *AuthService) SendEmailOTP(ctx context.Context, email string) (*models.MessageResponse, error) {
	req := models.EmailOTPRequest{Email: normalizeEmail(email)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.backend.SendEmailOTP(ctx, req.Email)
}

// VerifyEmailOTP completes an email login and stores the session
func (s *AuthService) VerifyEmailOTP(ctx context.Context, email, otp string) (*models.AuthResponse, error) {
	req := models.VerifyEmailOTPRequest{Email: normalizeEmail(email), OTP: strings.TrimSpace(otp)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.login(s.backend.VerifyEmailOTP(ctx, req.Email, req.OTP))
}

// SendPhoneOTP starts a phone login
func (s *AuthService) SendPhoneOTP(ctx context.Context, phone string) (*models.MessageResponse, error) {
	req := models.PhoneOTPRequest{Phone: NormalizePhone(phone)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.backend.SendPhoneOTP(ctx, req.Phone)
}

// VerifyPhoneOTP completes a phone login and stores the session
func (s *AuthService) VerifyPhoneOTP(ctx context.Context, phone, otp string) (*models.AuthResponse, error) {
	req := models.VerifyPhoneOTPRequest{Phone: NormalizePhone(phone), OTP: strings.TrimSpace(otp)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.login(s.backend.VerifyPhoneOTP(ctx, req.Phone, req.OTP))
}

// GoogleLogin exchanges a Google ID credential for a session
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*models.AuthResponse, error) {
	req := models.GoogleAuthRequest{Credential: strings.TrimSpace(credential)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.login(s.backend.GoogleLogin(ctx, req.Credential))
}

func (s *AuthService) login(resp *models.AuthResponse, err error) (*models.AuthResponse, error) {
	if err != nil {
		return nil, err
	}
	s.session.SetAuthenticated(resp)
	return resp, nil
}

// StartVerification creates a verification flow for the signed-in user
func (s *AuthService) StartVerification(redirect string) (*auth.VerificationFlow, error) {
	user := s.session.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return auth.NewVerificationFlow(user.Email, user.EmailVerified, user.Phone, user.PhoneVerified, redirect, s.flowOpts...), nil
}

// SendVerificationOTP sends a code on the flow's active channel. phone is required for the phone channel.
func (s *AuthService) SendVerificationOTP(ctx context.Context, flow *auth.VerificationFlow, ch auth.Channel, phone string) error {
	if err := flow.CanSend(ch); err != nil {
		return err
	}

	switch ch {
	case auth.ChannelEmail:
		if _, err := s.backend.SendVerificationEmailOTP(ctx); err != nil {
			return err
		}
	case auth.ChannelPhone:
		if phone == "" {
			phone = flow.Phone()
		}
		req := models.PhoneOTPRequest{Phone: NormalizePhone(phone)}
		if err := s.check(req); err != nil {
			return err
		}
		if _, err := s.backend.SendVerificationPhoneOTP(ctx, req.Phone); err != nil {
			return err
		}
		phone = req.Phone
	}

	flow.MarkSent(ch, phone)
	slog.Debug("Verification code sent", "channel", ch)
	return nil
}

// ConfirmVerification checks a code, advances the flow and refreshes the session user
func (s *AuthService) ConfirmVerification(ctx context.Context, flow *auth.VerificationFlow, ch auth.Channel, otp string) (auth.VerificationStep, error) {
	if err := flow.CanConfirm(ch); err != nil {
		return flow.Step(), err
	}
	req := models.OTPRequest{OTP: strings.TrimSpace(otp)}
	if err := s.check(req); err != nil {
		return flow.Step(), err
	}

	var err error
	if ch == auth.ChannelEmail {
		_, err = s.backend.VerifyEmail(ctx, req.OTP)
	} else {
		_, err = s.backend.VerifyPhone(ctx, flow.Phone(), req.OTP)
	}
	if err != nil {
		return flow.Step(), err
	}

	step := flow.MarkVerified(ch)
	s.session.CheckAuth(ctx)
	return step, nil
}

// CompleteOnboarding stores profile details and updates the session user
func (s *AuthService) CompleteOnboarding(ctx context.Context, req models.OnboardingRequest) (*models.User, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.check(req); err != nil {
		return nil, err
	}

	user, err := s.backend.CompleteOnboarding(ctx, req)
	if err != nil {
		return nil, err
	}
	s.session.UpdateUser(user)
	return user, nil
}

// SubscribeNewsletter validates and forwards a newsletter signup
func (s *AuthService) SubscribeNewsletter(ctx context.Context, email string) (*models.MessageResponse, error) {
	req := models.NewsletterRequest{Email: normalizeEmail(email)}
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.backend.SubscribeNewsletter(ctx, req.Email)
}

func (s *AuthService) check(req interface{}) error {
	return validateRequest(s.validate, req)
}

// validateRequest converts the first validation failure into a ValidationError
func validateRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return client.NewValidationError("invalid_request", err.Error())
	}
	return ValidationMessage(verrs[0])
}

// ValidationMessage maps a field error to a user-facing message
func ValidationMessage(fe validator.FieldError) *client.APIError {
	switch fe.Field() {
	case "Email":
		return client.NewValidationError("invalid_email", "Please enter a valid email address")
	case "Phone":
		return client.NewValidationError("invalid_phone", "Please enter a valid 10-digit phone number")
	case "OTP":
		return client.NewValidationError("invalid_otp", "Please enter the 6-digit code")
	case "Credential":
		return client.NewValidationError("missing_credential", "Google sign-in did not return a credential")
	case "Pincode":
		return client.NewValidationError("invalid_pincode", "Please enter a valid 6-digit pincode")
	case "FullName":
		return client.NewValidationError("invalid_fullname", "Please enter the recipient's full name")
	case "AddressLine1":
		return client.NewValidationError("invalid_addressline1", "Please enter the street address")
	}
	return client.NewValidationError("invalid_"+strings.ToLower(fe.Field()),
		fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips spaces, dashes and an Indian country prefix
func NormalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+91")
	if len(p) == 12 && strings.HasPrefix(p, "91") {
		p = p[2:]
	}
	return p
}
