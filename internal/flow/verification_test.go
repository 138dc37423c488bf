package flow

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerification(gw Gateway, nav Navigator, sched *ManualScheduler) *Verification {
	q := url.Values{"contact": {"jane@woodeoo.com"}}
	return NewVerification(q, gw, nav, testOptions(sched), nil)
}

func TestVerification_RedirectsWithoutContact(t *testing.T) {
	nav := &recorder{}
	sched := NewManualScheduler()
	v := NewVerification(url.Values{}, &stubGateway{}, nav, testOptions(sched), nil)

	assert.Equal(t, []string{"/auth/forgot-password"}, nav.visited())
	assert.Equal(t, StatusRedirected, v.State().Status)
	assert.Equal(t, 0, sched.Pending())
	assert.ErrorIs(t, v.Submit(context.Background()), ErrRedirected)
}

func TestVerification_AcceptsLegacyEmailParam(t *testing.T) {
	nav := &recorder{}
	v := NewVerification(url.Values{"email": {"jane@woodeoo.com"}}, &stubGateway{}, nav, testOptions(NewManualScheduler()), nil)

	assert.Empty(t, nav.visited())
	assert.Equal(t, "jane@woodeoo.com", v.State().Contact)
}

func TestVerification_TypingDropsNonDigits(t *testing.T) {
	v := newTestVerification(&stubGateway{}, &recorder{}, NewManualScheduler())

	for _, r := range "12a34" {
		v.Type(r)
		assert.Regexp(t, `^\d*$`, v.State().Code)
	}
	assert.Equal(t, "1234", v.State().Code)
}

func TestVerification_CapsAtSixDigits(t *testing.T) {
	v := newTestVerification(&stubGateway{}, &recorder{}, NewManualScheduler())

	for _, r := range "1234567" {
		v.Type(r)
	}
	assert.Equal(t, "123456", v.State().Code)
	assert.True(t, v.CanSubmit())

	assert.False(t, v.Input("1234567"))
	assert.False(t, v.Input("12 345"))
	assert.True(t, v.Input(""))
	assert.False(t, v.CanSubmit())
}

func TestVerification_Backspace(t *testing.T) {
	v := newTestVerification(&stubGateway{}, &recorder{}, NewManualScheduler())
	v.Input("123")
	v.Backspace()
	assert.Equal(t, "12", v.State().Code)
	v.Backspace()
	v.Backspace()
	v.Backspace()
	assert.Empty(t, v.State().Code)
}

func TestVerification_IncompleteCode(t *testing.T) {
	gw := &stubGateway{}
	v := newTestVerification(gw, &recorder{}, NewManualScheduler())
	v.Input("12345")

	assert.ErrorIs(t, v.Submit(context.Background()), ErrIncompleteCode)
	assert.Equal(t, MsgIncompleteCode, v.State().Error)
	assert.Zero(t, gw.count("verify"))
}

func TestVerification_Accepted(t *testing.T) {
	gw := &stubGateway{}
	nav := &recorder{}
	sched := NewManualScheduler()
	v := newTestVerification(gw, nav, sched)
	v.Input("482913")

	require.NoError(t, v.Submit(context.Background()))

	assert.Equal(t, StatusAccepted, v.State().Status)
	assert.Equal(t, [][2]string{{"jane@woodeoo.com", "482913"}}, gw.verified)
	assert.Equal(t, []string{"/auth/reset-password?code=482913&contact=jane%40woodeoo.com"}, nav.visited())
	assert.Equal(t, 0, sched.Pending(), "countdown stops once the code is accepted")
	assert.ErrorIs(t, v.Submit(context.Background()), ErrAlreadyDone)
}

func TestVerification_RejectedThenEditing(t *testing.T) {
	gw := &stubGateway{verifyErr: &RemoteError{Status: 400}}
	nav := &recorder{}
	v := newTestVerification(gw, nav, NewManualScheduler())
	v.Input("111111")

	require.Error(t, v.Submit(context.Background()))
	st := v.State()
	assert.Equal(t, StatusRejected, st.Status)
	assert.Equal(t, MsgIncorrectCode, st.Error)
	assert.Empty(t, nav.visited())

	v.Backspace()
	st = v.State()
	assert.Equal(t, StatusEntering, st.Status)
	assert.Empty(t, st.Error)
}

func TestVerification_ResendCooldown(t *testing.T) {
	gw := &stubGateway{}
	sched := NewManualScheduler()
	v := newTestVerification(gw, &recorder{}, sched)

	st := v.State()
	assert.Equal(t, 60, st.Cooldown)
	assert.False(t, st.CanResend)

	sent, err := v.Resend(context.Background())
	require.NoError(t, err)
	assert.False(t, sent, "resend is a no-op while locked")
	assert.Zero(t, gw.count("resend"))

	sched.Advance(60 * time.Second)
	st = v.State()
	assert.Equal(t, 0, st.Cooldown)
	assert.True(t, st.CanResend)

	sent, err = v.Resend(context.Background())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, gw.count("resend"))

	st = v.State()
	assert.Equal(t, 60, st.Cooldown)
	assert.False(t, st.CanResend)
}

func TestVerification_ResendFailureShowsError(t *testing.T) {
	gw := &stubGateway{resendErr: &RemoteError{Status: 429, Message: "Please wait before requesting a new code"}}
	sched := NewManualScheduler()
	v := newTestVerification(gw, &recorder{}, sched)
	sched.Advance(time.Minute)

	sent, err := v.Resend(context.Background())
	assert.True(t, sent)
	assert.Error(t, err)
	assert.Equal(t, "Please wait before requesting a new code", v.State().Error)
}

func TestVerification_TickObserver(t *testing.T) {
	sched := NewManualScheduler()
	var last int
	v := NewVerification(url.Values{"contact": {"+33612345678"}}, &stubGateway{}, &recorder{}, testOptions(sched),
		func(remaining int) { last = remaining })

	sched.Advance(5 * time.Second)
	assert.Equal(t, 55, last)
	assert.Equal(t, 55, v.State().Cooldown)
}

func TestVerification_CloseStopsCountdown(t *testing.T) {
	sched := NewManualScheduler()
	v := newTestVerification(&stubGateway{}, &recorder{}, sched)
	sched.Advance(10 * time.Second)

	v.Close()
	sched.Advance(time.Minute)

	assert.Equal(t, 50, v.State().Cooldown)
	assert.Equal(t, 0, sched.Pending())
	_, err := v.Resend(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
