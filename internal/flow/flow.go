// Package flow implements the authentication pages as headless state
// machines: registration, signup, login, forgot-password, code verification
// and password reset. A view renders State() and forwards user events; the
// flows talk to a Gateway and move between pages through a Navigator.
//
// Every flow is safe for concurrent use. Close cancels pending timers and
// in-flight gateway calls; results arriving afterwards are dropped.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"woodeoo-auth/internal/routes"

	"go.uber.org/zap"
)

// User-visible texts.
const (
	MsgFillAllFields      = "Please fill in all fields."
	MsgWeakPassword       = "The password does not meet the security requirements."
	MsgPasswordMismatch   = "Passwords do not match."
	MsgMissingCredentials = "Please enter your email and password."
	MsgInvalidCredentials = "Invalid credentials."
	MsgInvalidContact     = "Please enter a valid email address or phone number."
	MsgIncompleteCode     = "The code must contain 6 digits."
	MsgIncorrectCode      = "Incorrect code. Please try again."
	MsgRequestRejected    = "The request could not be completed."
	MsgUnavailable        = "An error occurred. Please try again later."
	MsgResetSuccess       = "Password changed successfully! Redirecting..."
	MsgRegistered         = "Your account has been created. You can now sign in."
)

// Validation failures detected before any gateway call.
var (
	ErrMissingFields      = errors.New(MsgFillAllFields)
	ErrWeakPassword       = errors.New(MsgWeakPassword)
	ErrPasswordMismatch   = errors.New(MsgPasswordMismatch)
	ErrMissingCredentials = errors.New(MsgMissingCredentials)
	ErrInvalidContact     = errors.New(MsgInvalidContact)
	ErrIncompleteCode     = errors.New(MsgIncompleteCode)
)

// Lifecycle and usage errors.
var (
	ErrBusy               = errors.New("flow: a request is already in progress")
	ErrClosed             = errors.New("flow: closed")
	ErrNoAccountType      = errors.New("flow: select an account type first")
	ErrUnknownAccountType = errors.New("flow: unknown account type")
	ErrFieldUnavailable   = errors.New("flow: field not shown for this account type")
	ErrRedirected         = errors.New("flow: page was redirected on entry")
	ErrAlreadyDone        = errors.New("flow: already completed")
)

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

const (
	DefaultCooldownSeconds = 60
	DefaultRedirectDelay   = 2 * time.Second
)

// Options shared by every flow. Zero values take defaults.
type Options struct {
	Routes          routes.Table
	Scheduler       Scheduler
	Logger          *zap.Logger
	CooldownSeconds int
	RedirectDelay   time.Duration
	// RequireResetCode makes the reset page also demand the verified code.
	RequireResetCode bool
}

// DefaultOptions uses the canonical routes, real timers and requires the code on reset.
func DefaultOptions() Options {
	return Options{RequireResetCode: true}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Routes.IsZero() {
		o.Routes = routes.Default()
	}
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.CooldownSeconds <= 0 {
		o.CooldownSeconds = DefaultCooldownSeconds
	}
	if o.RedirectDelay <= 0 {
		o.RedirectDelay = DefaultRedirectDelay
	}
	return o
}

// lifecycle ties gateway calls to the owning flow.
type lifecycle struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newLifecycle() *lifecycle {
	ctx, cancel := context.WithCancel(context.Background())
	return &lifecycle{ctx: ctx, cancel: cancel}
}

// join returns a context cancelled by either the caller or the flow's Close.
func (l *lifecycle) join(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (l *lifecycle) close() {
	l.once.Do(l.cancel)
}

func (l *lifecycle) closed() bool {
	return l.ctx.Err() != nil
}

// describe turns a gateway error into the text shown to the user: the
// backend's message verbatim, the fallback when it sent none, or a generic
// text for network failures.
func describe(log *zap.Logger, op string, err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		log.Info(op+" rejected", zap.Int("status", remote.Status), zap.String("message", remote.Message))
		if remote.Message != "" {
			return remote.Message
		}
		return fallback
	}
	log.Error(op+" failed", zap.Error(err))
	return MsgUnavailable
}
