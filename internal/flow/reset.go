package flow

import (
	"context"
	"net/url"
	"sync"

	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/validation"
)

type ResetState struct {
	Contact         string
	Password        string
	ConfirmPassword string
	Criteria        validation.PasswordCriteria
	ShowPasswords   bool
	// ShowForm is false when the page redirected on entry.
	ShowForm   bool
	Success    string
	Error      string
	Submitting bool
	Done       bool
}

// Reset is the page that sets a new password after the code was verified.
// On success it shows a message and moves to login after a short delay.
type Reset struct {
	mu      sync.Mutex
	gateway Gateway
	nav     Navigator
	opts    Options
	life    *lifecycle

	contact       string
	code          string
	redirected    bool
	password      string
	confirm       string
	criteria      validation.PasswordCriteria
	showPasswords bool
	success       string
	err           string
	submitting    bool
	done          bool
	redirect      Timer
}

func NewReset(query url.Values, gateway Gateway, nav Navigator, opts Options) *Reset {
	r := &Reset{gateway: gateway, nav: nav, opts: opts.withDefaults(), life: newLifecycle()}

	r.contact = contactFrom(query)
	r.code = query.Get(routes.ParamCode)
	if r.contact == "" || (r.opts.RequireResetCode && r.code == "") {
		r.redirected = true
		r.life.close()
		r.nav.Navigate(r.opts.Routes.Path(routes.ForgotPassword))
	}
	return r
}

func (r *Reset) SetPassword(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.password = v
	r.criteria = validation.EvaluatePassword(v)
	r.err = ""
}

func (r *Reset) SetConfirmPassword(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirm = v
	r.err = ""
}

func (r *Reset) TogglePasswordVisibility() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showPasswords = !r.showPasswords
}

func (r *Reset) Submit(ctx context.Context) error {
	r.mu.Lock()
	switch {
	case r.redirected:
		r.mu.Unlock()
		return ErrRedirected
	case r.life.closed():
		r.mu.Unlock()
		return ErrClosed
	case r.done:
		r.mu.Unlock()
		return ErrAlreadyDone
	case r.submitting:
		r.mu.Unlock()
		return ErrBusy
	}
	if err := checkPasswordForm(false, r.password, r.confirm); err != nil {
		r.err = err.Error()
		r.mu.Unlock()
		return err
	}
	contact, code, password := r.contact, r.code, r.password
	r.err = ""
	r.submitting = true
	r.mu.Unlock()

	callCtx, cancel := r.life.join(ctx)
	err := r.gateway.ResetPassword(callCtx, contact, code, password)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.submitting = false
	if r.life.closed() {
		return ErrClosed
	}
	if err != nil {
		r.err = describe(r.opts.Logger, "reset password", err, MsgRequestRejected)
		return err
	}

	r.done = true
	r.success = MsgResetSuccess
	r.password, r.confirm = "", ""
	target := r.opts.Routes.Path(routes.Login)
	r.redirect = r.opts.Scheduler.AfterFunc(r.opts.RedirectDelay, func() {
		if r.life.closed() {
			return
		}
		r.nav.Navigate(target)
	})
	return nil
}

func (r *Reset) State() ResetState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResetState{
		Contact:         r.contact,
		Password:        r.password,
		ConfirmPassword: r.confirm,
		Criteria:        r.criteria,
		ShowPasswords:   r.showPasswords,
		ShowForm:        !r.redirected,
		Success:         r.success,
		Error:           r.err,
		Submitting:      r.submitting,
		Done:            r.done,
	}
}

// Close cancels the pending redirect and any in-flight request.
func (r *Reset) Close() {
	r.mu.Lock()
	if r.redirect != nil {
		r.redirect.Stop()
		r.redirect = nil
	}
	r.mu.Unlock()
	r.life.close()
}
