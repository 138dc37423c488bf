package flow

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_RegisteredNotice(t *testing.T) {
	l := NewLogin(url.Values{"registered": {"1"}}, &stubGateway{}, &recorder{}, Options{})
	assert.Equal(t, MsgRegistered, l.State().Notice)

	l = NewLogin(nil, &stubGateway{}, &recorder{}, Options{})
	assert.Empty(t, l.State().Notice)
}

func TestLogin_Submit(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		gw := &stubGateway{}
		l := NewLogin(nil, gw, &recorder{}, Options{})
		l.SetEmail("jane@woodeoo.com")

		assert.ErrorIs(t, l.Submit(context.Background()), ErrMissingCredentials)
		assert.Equal(t, MsgMissingCredentials, l.State().Error)
		assert.Zero(t, gw.count("login"))
	})

	t.Run("rejected without message", func(t *testing.T) {
		l := NewLogin(nil, &stubGateway{loginErr: &RemoteError{Status: 401}}, &recorder{}, Options{})
		l.SetEmail("jane@woodeoo.com")
		l.SetPassword("wrong")

		require.Error(t, l.Submit(context.Background()))
		assert.Equal(t, MsgInvalidCredentials, l.State().Error)
	})

	t.Run("success", func(t *testing.T) {
		session := &Session{UserID: "u1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
		nav := &recorder{}
		l := NewLogin(nil, &stubGateway{session: session}, nav, Options{})
		l.SetEmail("jane@woodeoo.com")
		l.SetPassword("Abc123!@")

		require.NoError(t, l.Submit(context.Background()))
		assert.Equal(t, session, l.Session())
		assert.Empty(t, l.State().Password)
		assert.Equal(t, []string{"/"}, nav.visited())
	})
}

func TestSignup_Submit(t *testing.T) {
	t.Run("weak password", func(t *testing.T) {
		s := NewSignup(&stubGateway{}, &recorder{}, Options{})
		s.SetEmail("jane@woodeoo.com")
		s.SetPassword("abc")

		assert.ErrorIs(t, s.Submit(context.Background()), ErrWeakPassword)
		assert.False(t, s.State().Criteria.IsValid())
	})

	t.Run("network failure", func(t *testing.T) {
		s := NewSignup(&stubGateway{registerErr: errors.New("dial tcp: refused")}, &recorder{}, Options{})
		s.SetEmail("jane@woodeoo.com")
		s.SetPassword("Abc123!@")

		require.Error(t, s.Submit(context.Background()))
		assert.Equal(t, MsgUnavailable, s.State().Error)
	})

	t.Run("success registers a client", func(t *testing.T) {
		gw := &stubGateway{}
		nav := &recorder{}
		s := NewSignup(gw, nav, Options{})
		s.SetEmail("jane@woodeoo.com")
		s.SetPassword("Abc123!@")

		require.NoError(t, s.Submit(context.Background()))
		require.Len(t, gw.registered, 1)
		assert.Equal(t, "client", gw.registered[0].AccountType)
		assert.Equal(t, []string{"/dashboard"}, nav.visited())
	})
}

func TestForgot_Submit(t *testing.T) {
	t.Run("invalid contact", func(t *testing.T) {
		gw := &stubGateway{}
		f := NewForgot(gw, &recorder{}, Options{})
		f.SetContact("not a contact")

		assert.ErrorIs(t, f.Submit(context.Background()), ErrInvalidContact)
		assert.Equal(t, MsgInvalidContact, f.State().Error)
		assert.Zero(t, gw.count("forgot"))
	})

	t.Run("phone contact", func(t *testing.T) {
		nav := &recorder{}
		f := NewForgot(&stubGateway{}, nav, Options{})
		f.SetContact("+33612345678")

		assert.Equal(t, "phone", string(f.State().Kind))
		require.NoError(t, f.Submit(context.Background()))
		assert.Equal(t, []string{"/auth/verify-code?contact=%2B33612345678"}, nav.visited())
	})

	t.Run("surrounding whitespace is not trimmed", func(t *testing.T) {
		gw := &stubGateway{}
		nav := &recorder{}
		f := NewForgot(gw, nav, Options{})

		for _, v := range []string{" jane@woodeoo.com ", "+33612345678 ", "\tjane@woodeoo.com"} {
			f.SetContact(v)
			assert.Equal(t, "invalid", string(f.State().Kind), "%q", v)
			assert.ErrorIs(t, f.Submit(context.Background()), ErrInvalidContact, "%q", v)
		}
		assert.Zero(t, gw.count("forgot"))
		assert.Empty(t, nav.visited())
	})

	t.Run("server rejection", func(t *testing.T) {
		gw := &stubGateway{forgotErr: &RemoteError{Status: 429, Message: "Too many requests"}}
		nav := &recorder{}
		f := NewForgot(gw, nav, Options{})
		f.SetContact("jane@woodeoo.com")

		require.Error(t, f.Submit(context.Background()))
		assert.Equal(t, "Too many requests", f.State().Error)
		assert.Empty(t, nav.visited())
	})
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultCooldownSeconds, o.CooldownSeconds)
	assert.Equal(t, DefaultRedirectDelay, o.RedirectDelay)
	assert.Equal(t, "/auth/login", o.Routes.Path("login"))
	assert.NotNil(t, o.Logger)
	assert.True(t, DefaultOptions().RequireResetCode)
}
