package flow

import (
	"context"
	"net/url"
	"sync"

	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/validation"
)

type ForgotState struct {
	Contact    string
	Kind       validation.ContactKind
	Error      string
	Submitting bool
}

// Forgot asks for the email or phone number a reset code is sent to.
type Forgot struct {
	mu      sync.Mutex
	gateway Gateway
	nav     Navigator
	opts    Options
	life    *lifecycle

	contact    string
	kind       validation.ContactKind
	err        string
	submitting bool
}

func NewForgot(gateway Gateway, nav Navigator, opts Options) *Forgot {
	return &Forgot{
		gateway: gateway,
		nav:     nav,
		opts:    opts.withDefaults(),
		life:    newLifecycle(),
		kind:    validation.ContactInvalid,
	}
}

func (f *Forgot) SetContact(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contact = v
	f.kind = validation.ClassifyContact(v)
	f.err = ""
}

func (f *Forgot) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.life.closed() {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if !f.kind.Valid() {
		f.err = MsgInvalidContact
		f.mu.Unlock()
		return ErrInvalidContact
	}
	contact := f.contact
	f.err = ""
	f.submitting = true
	f.mu.Unlock()

	callCtx, cancel := f.life.join(ctx)
	err := f.gateway.ForgotPassword(callCtx, contact)
	cancel()

	f.mu.Lock()
	f.submitting = false
	if f.life.closed() {
		f.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		f.err = describe(f.opts.Logger, "forgot password", err, MsgRequestRejected)
		f.mu.Unlock()
		return err
	}
	target := f.opts.Routes.URL(routes.VerifyCode, url.Values{routes.ParamContact: {contact}})
	f.mu.Unlock()

	f.nav.Navigate(target)
	return nil
}

func (f *Forgot) State() ForgotState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ForgotState{Contact: f.contact, Kind: f.kind, Error: f.err, Submitting: f.submitting}
}

func (f *Forgot) Close() {
	f.life.close()
}
