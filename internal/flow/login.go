package flow

import (
	"context"
	"net/url"
	"sync"

	"woodeoo-auth/internal/routes"

	"go.uber.org/zap"
)

type LoginState struct {
	Email        string
	Password     string
	ShowPassword bool
	// Notice is shown above the form after a successful registration.
	Notice     string
	Error      string
	Submitting bool
	Session    *Session
}

type Login struct {
	mu      sync.Mutex
	gateway Gateway
	nav     Navigator
	opts    Options
	life    *lifecycle

	email        string
	password     string
	showPassword bool
	notice       string
	err          string
	submitting   bool
	session      *Session
}

// NewLogin opens the login page with the query it was navigated with.
func NewLogin(query url.Values, gateway Gateway, nav Navigator, opts Options) *Login {
	l := &Login{gateway: gateway, nav: nav, opts: opts.withDefaults(), life: newLifecycle()}
	if query.Get(routes.ParamRegistered) != "" {
		l.notice = MsgRegistered
	}
	return l
}

func (l *Login) SetEmail(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.email = v
	l.err = ""
}

func (l *Login) SetPassword(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.password = v
	l.err = ""
}

func (l *Login) TogglePasswordVisibility() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showPassword = !l.showPassword
}

func (l *Login) Submit(ctx context.Context) error {
	l.mu.Lock()
	if l.life.closed() {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.submitting {
		l.mu.Unlock()
		return ErrBusy
	}
	if l.email == "" || l.password == "" {
		l.err = MsgMissingCredentials
		l.mu.Unlock()
		return ErrMissingCredentials
	}
	email, password := l.email, l.password
	l.err = ""
	l.submitting = true
	l.mu.Unlock()

	callCtx, cancel := l.life.join(ctx)
	session, err := l.gateway.Login(callCtx, email, password)
	cancel()

	l.mu.Lock()
	l.submitting = false
	if l.life.closed() {
		l.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		l.err = describe(l.opts.Logger, "login", err, MsgInvalidCredentials)
		l.mu.Unlock()
		return err
	}
	l.session = session
	l.password = ""
	target := l.opts.Routes.Path(routes.Home)
	l.mu.Unlock()

	if session != nil {
		l.opts.Logger.Info("login succeeded", zap.String("user_id", session.UserID))
	}
	l.nav.Navigate(target)
	return nil
}

// Session returns the session of the last successful login, if any.
func (l *Login) Session() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

func (l *Login) State() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoginState{
		Email:        l.email,
		Password:     l.password,
		ShowPassword: l.showPassword,
		Notice:       l.notice,
		Error:        l.err,
		Submitting:   l.submitting,
		Session:      l.session,
	}
}

func (l *Login) Close() {
	l.life.close()
}
