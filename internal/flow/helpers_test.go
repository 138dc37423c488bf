package flow

import (
	"context"
	"sync"
)

type recorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *recorder) Navigate(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
}

func (r *recorder) visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// stubGateway records calls and answers with the configured errors.
type stubGateway struct {
	mu    sync.Mutex
	calls []string

	registered []RegisterInput
	verified   [][2]string
	resets     [][3]string

	registerErr error
	loginErr    error
	forgotErr   error
	resendErr   error
	verifyErr   error
	resetErr    error
	session     *Session

	// block, when set, holds every call until it is closed or ctx ends.
	block chan struct{}
}

func (g *stubGateway) record(name string) {
	g.mu.Lock()
	g.calls = append(g.calls, name)
	g.mu.Unlock()
}

func (g *stubGateway) wait(ctx context.Context) error {
	if g.block == nil {
		return nil
	}
	select {
	case <-g.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *stubGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (g *stubGateway) Register(ctx context.Context, in RegisterInput) error {
	g.record("register")
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.registered = append(g.registered, in)
	g.mu.Unlock()
	return g.registerErr
}

func (g *stubGateway) Login(ctx context.Context, email, password string) (*Session, error) {
	g.record("login")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if g.loginErr != nil {
		return nil, g.loginErr
	}
	return g.session, nil
}

func (g *stubGateway) ForgotPassword(ctx context.Context, contact string) error {
	g.record("forgot")
	if err := g.wait(ctx); err != nil {
		return err
	}
	return g.forgotErr
}

func (g *stubGateway) ResendCode(ctx context.Context, contact string) error {
	g.record("resend")
	return g.resendErr
}

func (g *stubGateway) VerifyCode(ctx context.Context, contact, code string) error {
	g.record("verify")
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.verified = append(g.verified, [2]string{contact, code})
	g.mu.Unlock()
	return g.verifyErr
}

func (g *stubGateway) ResetPassword(ctx context.Context, contact, code, newPassword string) error {
	g.record("reset")
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.resets = append(g.resets, [3]string{contact, code, newPassword})
	g.mu.Unlock()
	return g.resetErr
}

func testOptions(s *ManualScheduler) Options {
	return Options{Scheduler: s, RequireResetCode: true}
}
