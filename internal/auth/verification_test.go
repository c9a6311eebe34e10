package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time          { return c.t }
func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestVerificationFlow_EmailThenPhoneCompletes(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f := NewVerificationFlow("a@b.co", false, "", false, "/checkout", WithFlowClock(clock.Now))

	assert.Equal(t, StepSelect, f.Step())

	// Email branch
	require.NoError(t, f.SelectEmail())
	assert.Equal(t, StepEmailOTP, f.Step())
	require.NoError(t, f.CanSend(ChannelEmail))
	f.MarkSent(ChannelEmail, "")
	assert.Equal(t, StepSelect, f.MarkVerified(ChannelEmail))

	assert.ErrorIs(t, f.SelectEmail(), ErrAlreadyVerified)

	// Phone branch
	require.NoError(t, f.SelectPhone())
	assert.Equal(t, StepPhoneInput, f.Step())
	require.NoError(t, f.CanSend(ChannelPhone))
	f.MarkSent(ChannelPhone, "9876543210")
	assert.Equal(t, StepPhoneOTP, f.Step())
	assert.Equal(t, "9876543210", f.Phone())

	assert.Equal(t, StepComplete, f.MarkVerified(ChannelPhone))

	state := f.State()
	assert.True(t, state.RedirectReady)
	assert.Equal(t, "/checkout", state.Redirect)
}

func TestVerificationFlow_IndependentResendCooldowns(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f := NewVerificationFlow("a@b.co", false, "", false, "", WithFlowClock(clock.Now))

	require.NoError(t, f.SelectEmail())
	f.MarkSent(ChannelEmail, "")

	clock.Advance(20 * time.Second)
	assert.ErrorIs(t, f.CanSend(ChannelEmail), ErrResendCooldown)
	assert.Equal(t, 40*time.Second, f.ResendIn(ChannelEmail))

	// Switching to phone is not blocked by the email cooldown
	f.Back()
	require.NoError(t, f.SelectPhone())
	assert.NoError(t, f.CanSend(ChannelPhone))
	assert.Equal(t, time.Duration(0), f.ResendIn(ChannelPhone))

	clock.Advance(40 * time.Second)
	assert.Equal(t, time.Duration(0), f.ResendIn(ChannelEmail), "Cooldown elapses after 60s")
}

func TestVerificationFlow_InvalidTransitions(t *testing.T) {
	f := NewVerificationFlow("a@b.co", false, "", false, "")

	assert.ErrorIs(t, f.CanSend(ChannelEmail), ErrInvalidTransition, "Cannot send before selecting email")

	require.NoError(t, f.SelectPhone())
	assert.ErrorIs(t, f.SelectEmail(), ErrInvalidTransition, "Must go back to select first")
	assert.ErrorIs(t, f.CanSend(ChannelEmail), ErrInvalidTransition)
}

func TestVerificationFlow_CanConfirmOnlyTheAwaitedCode(t *testing.T) {
	f := NewVerificationFlow("a@b.co", false, "", false, "")

	assert.ErrorIs(t, f.CanConfirm(ChannelEmail), ErrInvalidTransition, "Nothing awaited on select")
	assert.ErrorIs(t, f.CanConfirm(ChannelPhone), ErrInvalidTransition)

	require.NoError(t, f.SelectEmail())
	assert.NoError(t, f.CanConfirm(ChannelEmail))
	assert.ErrorIs(t, f.CanConfirm(ChannelPhone), ErrInvalidTransition)

	f.Back()
	require.NoError(t, f.SelectPhone())
	assert.ErrorIs(t, f.CanConfirm(ChannelPhone), ErrInvalidTransition, "No code sent to a number yet")
	f.MarkSent(ChannelPhone, "9876543210")
	assert.NoError(t, f.CanConfirm(ChannelPhone))
	assert.ErrorIs(t, f.CanConfirm(Channel("sms")), ErrInvalidTransition)
}

func TestVerificationFlow_AlreadyVerifiedStartsComplete(t *testing.T) {
	f := NewVerificationFlow("a@b.co", true, "9876543210", true, "")

	assert.Equal(t, StepComplete, f.Step())
	assert.Equal(t, "/", f.Redirect())

	f.Back()
	assert.Equal(t, StepComplete, f.Step(), "Complete is terminal")
}

func TestVerificationFlow_CustomCooldown(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f := NewVerificationFlow("", true, "", false, "", WithFlowClock(clock.Now), WithResendCooldown(10*time.Second))

	require.NoError(t, f.SelectPhone())
	f.MarkSent(ChannelPhone, "9876543210")
	assert.Equal(t, 10, f.State().PhoneResendIn)

	clock.Advance(10 * time.Second)
	assert.NoError(t, f.CanSend(ChannelPhone), "Resend allowed from phone-otp once cooldown elapsed")
}
