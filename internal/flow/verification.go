package flow

import (
	"context"
	"net/url"
	"regexp"
	"sync"

	"woodeoo-auth/internal/routes"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

var partialCode = regexp.MustCompile(`^\d{0,6}$`)

type VerificationStatus string

const (
	StatusEntering   VerificationStatus = "entering"
	StatusAccepted   VerificationStatus = "accepted"
	StatusRejected   VerificationStatus = "rejected"
	StatusRedirected VerificationStatus = "redirected"
)

type VerificationState struct {
	Contact    string
	Code       string
	Status     VerificationStatus
	CanSubmit  bool
	Cooldown   int
	CanResend  bool
	Error      string
	Submitting bool
}

// Verification is the page where the user types the code sent to their
// contact. Entering it without a contact redirects back to forgot-password.
type Verification struct {
	mu       sync.Mutex
	gateway  Gateway
	nav      Navigator
	opts     Options
	life     *lifecycle
	cooldown *Cooldown

	contact    string
	code       string
	status     VerificationStatus
	err        string
	submitting bool
}

// NewVerification opens the page with its navigation query. onTick, when not
// nil, observes the resend countdown.
func NewVerification(query url.Values, gateway Gateway, nav Navigator, opts Options, onTick func(remaining int)) *Verification {
	v := &Verification{
		gateway: gateway,
		nav:     nav,
		opts:    opts.withDefaults(),
		life:    newLifecycle(),
		status:  StatusEntering,
	}
	v.cooldown = NewCooldown(v.opts.Scheduler, v.opts.CooldownSeconds, onTick)

	v.contact = contactFrom(query)
	if v.contact == "" {
		v.status = StatusRedirected
		v.life.close()
		v.nav.Navigate(v.opts.Routes.Path(routes.ForgotPassword))
		return v
	}

	v.cooldown.Start()
	return v
}

// Input replaces the code when value is zero to six digits and reports
// whether it was accepted. Anything else is dropped.
func (v *Verification) Input(value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputLocked(value)
}

// Type applies a single keystroke.
func (v *Verification) Type(r rune) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputLocked(v.code + string(r))
}

func (v *Verification) Backspace() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.code == "" {
		return
	}
	v.inputLocked(v.code[:len(v.code)-1])
}

func (v *Verification) inputLocked(value string) bool {
	if !v.editableLocked() || !partialCode.MatchString(value) {
		return false
	}
	v.code = value
	v.err = ""
	v.status = StatusEntering
	return true
}

func (v *Verification) editableLocked() bool {
	return !v.submitting && (v.status == StatusEntering || v.status == StatusRejected)
}

// CanSubmit is true with exactly six digits entered.
func (v *Verification) CanSubmit() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.code) == CodeLength
}

func (v *Verification) Submit(ctx context.Context) error {
	v.mu.Lock()
	switch {
	case v.status == StatusRedirected:
		v.mu.Unlock()
		return ErrRedirected
	case v.life.closed():
		v.mu.Unlock()
		return ErrClosed
	case v.status == StatusAccepted:
		v.mu.Unlock()
		return ErrAlreadyDone
	case v.submitting:
		v.mu.Unlock()
		return ErrBusy
	case len(v.code) != CodeLength:
		v.err = MsgIncompleteCode
		v.mu.Unlock()
		return ErrIncompleteCode
	}
	contact, code := v.contact, v.code
	v.err = ""
	v.submitting = true
	v.mu.Unlock()

	callCtx, cancel := v.life.join(ctx)
	err := v.gateway.VerifyCode(callCtx, contact, code)
	cancel()

	v.mu.Lock()
	v.submitting = false
	if v.life.closed() {
		v.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		v.status = StatusRejected
		v.err = describe(v.opts.Logger, "verify code", err, MsgIncorrectCode)
		v.mu.Unlock()
		return err
	}
	v.status = StatusAccepted
	target := v.opts.Routes.URL(routes.ResetPassword, url.Values{
		routes.ParamContact: {contact},
		routes.ParamCode:    {code},
	})
	v.mu.Unlock()

	v.cooldown.Stop()
	v.nav.Navigate(target)
	return nil
}

// Resend asks for a new code once the countdown has reached zero and reports
// whether a request was made. While the countdown runs it does nothing.
func (v *Verification) Resend(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if v.status == StatusRedirected {
		v.mu.Unlock()
		return false, ErrRedirected
	}
	if v.life.closed() {
		v.mu.Unlock()
		return false, ErrClosed
	}
	contact := v.contact
	v.mu.Unlock()

	if !v.cooldown.Restart() {
		return false, nil
	}

	callCtx, cancel := v.life.join(ctx)
	err := v.gateway.ResendCode(callCtx, contact)
	cancel()

	if err != nil {
		v.mu.Lock()
		if !v.life.closed() {
			v.err = describe(v.opts.Logger, "resend code", err, MsgRequestRejected)
		}
		v.mu.Unlock()
		return true, err
	}
	return true, nil
}

func (v *Verification) State() VerificationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VerificationState{
		Contact:    v.contact,
		Code:       v.code,
		Status:     v.status,
		CanSubmit:  len(v.code) == CodeLength,
		Cooldown:   v.cooldown.Remaining(),
		CanResend:  v.cooldown.Ready(),
		Error:      v.err,
		Submitting: v.submitting,
	}
}

// Close stops the countdown and cancels a pending request.
func (v *Verification) Close() {
	v.cooldown.Stop()
	v.life.close()
}

// contactFrom reads the contact, accepting the older email parameter.
func contactFrom(query url.Values) string {
	if c := query.Get(routes.ParamContact); c != "" {
		return c
	}
	return query.Get(routes.ParamEmail)
}
