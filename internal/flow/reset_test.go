package flow

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetQuery() url.Values {
	return url.Values{"contact": {"jane@woodeoo.com"}, "code": {"482913"}}
}

func TestReset_GuardedEntry(t *testing.T) {
	tests := []struct {
		name        string
		query       url.Values
		requireCode bool
		redirect    bool
	}{
		{name: "no contact", query: url.Values{}, requireCode: true, redirect: true},
		{name: "no contact, code optional", query: url.Values{"code": {"1"}}, requireCode: false, redirect: true},
		{name: "no code", query: url.Values{"contact": {"jane@woodeoo.com"}}, requireCode: true, redirect: true},
		{name: "no code, code optional", query: url.Values{"email": {"jane@woodeoo.com"}}, requireCode: false, redirect: false},
		{name: "contact and code", query: resetQuery(), requireCode: true, redirect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &recorder{}
			opts := Options{Scheduler: NewManualScheduler(), RequireResetCode: tt.requireCode}
			r := NewReset(tt.query, &stubGateway{}, nav, opts)

			if tt.redirect {
				assert.Equal(t, []string{"/auth/forgot-password"}, nav.visited())
				assert.False(t, r.State().ShowForm)
				assert.ErrorIs(t, r.Submit(context.Background()), ErrRedirected)
				return
			}
			assert.Empty(t, nav.visited())
			assert.True(t, r.State().ShowForm)
		})
	}
}

func TestReset_SubmitGuards(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{name: "empty", wantErr: ErrMissingFields},
		{name: "empty confirmation", password: "Abc123!@", wantErr: ErrMissingFields},
		{name: "weak", password: "ALLCAPS123!", confirm: "ALLCAPS123!", wantErr: ErrWeakPassword},
		{name: "mismatch", password: "Abc123!@", confirm: "Abc123!@x", wantErr: ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			r := NewReset(resetQuery(), gw, &recorder{}, testOptions(NewManualScheduler()))
			r.SetPassword(tt.password)
			r.SetConfirmPassword(tt.confirm)

			err := r.Submit(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr.Error(), r.State().Error)
			assert.Zero(t, gw.count("reset"))
		})
	}
}

func TestReset_SuccessRedirectsAfterDelay(t *testing.T) {
	gw := &stubGateway{}
	nav := &recorder{}
	sched := NewManualScheduler()
	r := NewReset(resetQuery(), gw, nav, testOptions(sched))
	r.SetPassword("Abc123!@")
	r.SetConfirmPassword("Abc123!@")

	require.NoError(t, r.Submit(context.Background()))

	st := r.State()
	assert.Equal(t, MsgResetSuccess, st.Success)
	assert.True(t, st.Done)
	assert.Equal(t, [][3]string{{"jane@woodeoo.com", "482913", "Abc123!@"}}, gw.resets)
	assert.Empty(t, nav.visited())

	sched.Advance(1999 * time.Millisecond)
	assert.Empty(t, nav.visited())

	sched.Advance(time.Millisecond)
	assert.Equal(t, []string{"/auth/login"}, nav.visited())
}

func TestReset_ServerErrorShowsNoSuccess(t *testing.T) {
	gw := &stubGateway{resetErr: &RemoteError{Status: 400, Message: "Invalid or expired code"}}
	sched := NewManualScheduler()
	r := NewReset(resetQuery(), gw, &recorder{}, testOptions(sched))
	r.SetPassword("Abc123!@")
	r.SetConfirmPassword("Abc123!@")

	require.Error(t, r.Submit(context.Background()))
	st := r.State()
	assert.Empty(t, st.Success)
	assert.Equal(t, "Invalid or expired code", st.Error)
	assert.Equal(t, 0, sched.Pending())
}

func TestReset_CloseCancelsRedirect(t *testing.T) {
	nav := &recorder{}
	sched := NewManualScheduler()
	r := NewReset(resetQuery(), &stubGateway{}, nav, testOptions(sched))
	r.SetPassword("Abc123!@")
	r.SetConfirmPassword("Abc123!@")
	require.NoError(t, r.Submit(context.Background()))

	r.Close()
	sched.Advance(time.Minute)

	assert.Empty(t, nav.visited())
}
