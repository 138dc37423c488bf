package flow

import (
	"context"
	"sync"

	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/validation"
)

type SignupState struct {
	Email        string
	Password     string
	Criteria     validation.PasswordCriteria
	ShowPassword bool
	Error        string
	Submitting   bool
}

// Signup is the short client sign-up page: email and password only.
type Signup struct {
	mu      sync.Mutex
	gateway Gateway
	nav     Navigator
	opts    Options
	life    *lifecycle

	email        string
	password     string
	criteria     validation.PasswordCriteria
	showPassword bool
	err          string
	submitting   bool
}

func NewSignup(gateway Gateway, nav Navigator, opts Options) *Signup {
	return &Signup{gateway: gateway, nav: nav, opts: opts.withDefaults(), life: newLifecycle()}
}

func (s *Signup) SetEmail(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = v
	s.err = ""
}

func (s *Signup) SetPassword(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = v
	s.criteria = validation.EvaluatePassword(v)
	s.err = ""
}

func (s *Signup) TogglePasswordVisibility() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showPassword = !s.showPassword
}

func (s *Signup) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.life.closed() {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.email == "" || s.password == "" {
		s.err = MsgFillAllFields
		s.mu.Unlock()
		return ErrMissingFields
	}
	if !validation.EvaluatePassword(s.password).IsValid() {
		s.err = MsgWeakPassword
		s.mu.Unlock()
		return ErrWeakPassword
	}

	in := RegisterInput{Email: s.email, Password: s.password, AccountType: string(AccountClient)}
	s.err = ""
	s.submitting = true
	s.mu.Unlock()

	callCtx, cancel := s.life.join(ctx)
	err := s.gateway.Register(callCtx, in)
	cancel()

	s.mu.Lock()
	s.submitting = false
	if s.life.closed() {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.err = describe(s.opts.Logger, "signup", err, MsgRequestRejected)
		s.mu.Unlock()
		return err
	}
	target := s.opts.Routes.Path(routes.Dashboard)
	s.mu.Unlock()

	s.nav.Navigate(target)
	return nil
}

func (s *Signup) State() SignupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SignupState{
		Email:        s.email,
		Password:     s.password,
		Criteria:     s.criteria,
		ShowPassword: s.showPassword,
		Error:        s.err,
		Submitting:   s.submitting,
	}
}

func (s *Signup) Close() {
	s.life.close()
}
