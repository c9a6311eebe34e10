package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// VerificationStep is a state of the contact verification flow
type VerificationStep string

const (
	StepSelect     VerificationStep = "select"
	StepEmailOTP   VerificationStep = "email-otp"
	StepPhoneInput VerificationStep = "phone-input"
	StepPhoneOTP   VerificationStep = "phone-otp"
	StepComplete   VerificationStep = "complete"
)

// Channel identifies which contact an OTP was sent to
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// DefaultResendCooldown is the wait between two OTP sends on the same channel
const DefaultResendCooldown = 60 * time.Second

var (
	ErrInvalidTransition = errors.New("invalid verification step")
	ErrAlreadyVerified   = errors.New("contact already verified")
	ErrResendCooldown    = errors.New("please wait before requesting another code")
)

// VerificationFlow walks a signed-in user through verifying email and phone.
// It holds no I/O; callers send and check codes and report outcomes to it.
type VerificationFlow struct {
	mu            sync.Mutex
	step          VerificationStep
	emailVerified bool
	phoneVerified bool
	email         string
	phone         string
	redirect      string
	cooldown      time.Duration
	now           func() time.Time
	lastSent      map[Channel]time.Time
}

// FlowOption configures a VerificationFlow
type FlowOption func(*VerificationFlow)

// WithFlowClock replaces time.Now
func WithFlowClock(now func() time.Time) FlowOption {
	return func(f *VerificationFlow) { f.now = now }
}

// WithResendCooldown overrides the per-channel resend cooldown
func WithResendCooldown(d time.Duration) FlowOption {
	return func(f *VerificationFlow) { f.cooldown = d }
}

// NewVerificationFlow starts a flow for the given contact state. redirect is where
// the user goes once both contacts are verified; it defaults to "/".
func NewVerificationFlow(email string, emailVerified bool, phone string, phoneVerified bool, redirect string, opts ...FlowOption) *VerificationFlow {
	if redirect == "" {
		redirect = "/"
	}
	f := &VerificationFlow{
		step:          StepSelect,
		email:         email,
		emailVerified: emailVerified,
		phone:         phone,
		phoneVerified: phoneVerified,
		redirect:      redirect,
		cooldown:      DefaultResendCooldown,
		now:           time.Now,
		lastSent:      make(map[Channel]time.Time),
	}
	for _, opt := range opts {
		opt(f)
	}
	if emailVerified && phoneVerified {
		f.step = StepComplete
	}
	return f
}

// FlowState is a snapshot for rendering
type FlowState struct {
	Step          VerificationStep `json:"step"`
	Email         string           `json:"email,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	EmailVerified bool             `json:"emailVerified"`
	PhoneVerified bool             `json:"phoneVerified"`
	EmailResendIn int              `json:"emailResendInSeconds"`
	PhoneResendIn int              `json:"phoneResendInSeconds"`
	Redirect      string           `json:"redirect"`
	RedirectReady bool             `json:"redirectReady"`
}

// State returns a snapshot of the flow
func (f *VerificationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return FlowState{
		Step:          f.step,
		Email:         f.email,
		Phone:         f.phone,
		EmailVerified: f.emailVerified,
		PhoneVerified: f.phoneVerified,
		EmailResendIn: int(f.resendInLocked(ChannelEmail).Round(time.Second).Seconds()),
		PhoneResendIn: int(f.resendInLocked(ChannelPhone).Round(time.Second).Seconds()),
		Redirect:      f.redirect,
		RedirectReady: f.step == StepComplete,
	}
}

func (f *VerificationFlow) Step() VerificationStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Phone returns the number entered for verification
func (f *VerificationFlow) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// SelectEmail moves from select to email-otp
func (f *VerificationFlow) SelectEmail() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.emailVerified {
		return ErrAlreadyVerified
	}
	if f.step != StepSelect {
		return fmt.Errorf("%w: cannot verify email from %s", ErrInvalidTransition, f.step)
	}
	f.step = StepEmailOTP
	return nil
}

// SelectPhone moves from select to phone-input
func (f *VerificationFlow) SelectPhone() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phoneVerified {
		return ErrAlreadyVerified
	}
	if f.step != StepSelect {
		return fmt.Errorf("%w: cannot verify phone from %s", ErrInvalidTransition, f.step)
	}
	f.step = StepPhoneInput
	return nil
}

// ResendIn returns how long until another code may be sent on ch
func (f *VerificationFlow) ResendIn(ch Channel) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resendInLocked(ch)
}

func (f *VerificationFlow) resendInLocked(ch Channel) time.Duration {
	sent, ok := f.lastSent[ch]
	if !ok {
		return 0
	}
	remaining := f.cooldown - f.now().Sub(sent)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanSend checks that ch is the active channel and its cooldown has elapsed
func (f *VerificationFlow) CanSend(ch Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ch {
	case ChannelEmail:
		if f.step != StepEmailOTP {
			return fmt.Errorf("%w: email code cannot be sent from %s", ErrInvalidTransition, f.step)
		}
	case ChannelPhone:
		if f.step != StepPhoneInput && f.step != StepPhoneOTP {
			return fmt.Errorf("%w: phone code cannot be sent from %s", ErrInvalidTransition, f.step)
		}
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidTransition, ch)
	}

	if f.resendInLocked(ch) > 0 {
		return ErrResendCooldown
	}
	return nil
}

// CanConfirm checks that a code for ch is being awaited
func (f *VerificationFlow) CanConfirm(ch Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ch {
	case ChannelEmail:
		if f.step != StepEmailOTP {
			return fmt.Errorf("%w: email code cannot be confirmed from %s", ErrInvalidTransition, f.step)
		}
	case ChannelPhone:
		if f.step != StepPhoneOTP {
			return fmt.Errorf("%w: phone code cannot be confirmed from %s", ErrInvalidTransition, f.step)
		}
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidTransition, ch)
	}
	return nil
}

// MarkSent records a successful send on ch. For the phone channel it stores the
// number and advances to phone-otp.
func (f *VerificationFlow) MarkSent(ch Channel, phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSent[ch] = f.now()
	if ch == ChannelPhone {
		if phone != "" {
			f.phone = phone
		}
		f.step = StepPhoneOTP
	}
}

// MarkVerified records a verified contact and returns to select, or completes the flow
func (f *VerificationFlow) MarkVerified(ch Channel) VerificationStep {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ch {
	case ChannelEmail:
		f.emailVerified = true
	case ChannelPhone:
		f.phoneVerified = true
	}
	delete(f.lastSent, ch)

	if f.emailVerified && f.phoneVerified {
		f.step = StepComplete
	} else {
		f.step = StepSelect
	}
	return f.step
}

// Back abandons the current sub-flow. Cooldowns keep running.
func (f *VerificationFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepComplete {
		f.step = StepSelect
	}
}

// Redirect returns the destination after completion
func (f *VerificationFlow) Redirect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}
