package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"woodeoo-auth/internal/client"
	"woodeoo-auth/internal/data/repository/memory"
	"woodeoo-auth/internal/flow"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/internal/validation"
	"woodeoo-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type discard struct{}

func (discard) Send(context.Context, notify.Message) error { return nil }

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	config := &utils.Config{
		Session: utils.SessionConfig{ExpiryHours: 24},
		Verification: utils.VerificationConfig{
			CodeLength:      6,
			ExpiryMinutes:   10,
			MaxAttempts:     5,
			CooldownSeconds: 60,
		},
	}
	service := usecase.NewService(memory.NewRepository(nil), config, discard{}, zap.NewNop())

	out := &bytes.Buffer{}
	sh := newShell(out, client.NewLocalGateway(service.Auth, zap.NewNop()), flow.Options{
		Routes:           routes.Default(),
		Scheduler:        flow.NewManualScheduler(),
		Logger:           zap.NewNop(),
		RequireResetCode: true,
	})
	return sh, out
}

func TestShell_RegisterThenLogin(t *testing.T) {
	sh, out := newTestShell(t)

	script := strings.Join([]string{
		"open /auth/register",
		"type client",
		"set email jane@woodeoo.com",
		"set phone +33612345678",
		"set password Abc123!@",
		"set confirm_password Abc123!@",
		"submit",
		"set email jane@woodeoo.com",
		"set password Abc123!@",
		"submit",
		"quit",
	}, "\n")

	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "-> /auth/login?registered=1")
	assert.Contains(t, text, flow.MsgRegistered)
	assert.Contains(t, text, "-> /")
	assert.Contains(t, text, "[home] signed in as")
	assert.NotContains(t, text, "Abc123!@", "passwords are masked")
}

func TestShell_ValidationErrorsAreShown(t *testing.T) {
	sh, out := newTestShell(t)

	script := "open /auth/signup\nset email jane@woodeoo.com\nset password short\nsubmit\n"
	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script)))

	assert.Contains(t, out.String(), "! "+flow.MsgWeakPassword)
	_, ok := sh.current().(*flow.Signup)
	assert.True(t, ok, "still on the signup page")
}

func TestShell_VerifyWithoutContactRedirects(t *testing.T) {
	sh, out := newTestShell(t)

	require.NoError(t, sh.open("/auth/verify-code"))

	_, ok := sh.current().(*flow.Forgot)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "-> /auth/forgot-password")
	assert.NotContains(t, out.String(), "-> /auth/verify-code")
}

func TestShell_LegacyPathsAndUnknownPages(t *testing.T) {
	sh, _ := newTestShell(t)

	require.NoError(t, sh.open("/login?registered=1"))
	login, ok := sh.current().(*flow.Login)
	require.True(t, ok)
	assert.Equal(t, flow.MsgRegistered, login.State().Notice)

	assert.Error(t, sh.open("/checkout"))
	assert.Error(t, sh.exec(context.Background(), "dance"))
}

func TestCriteria(t *testing.T) {
	assert.Equal(t, "(password ok)", criteria(validation.EvaluatePassword("Abc123!@")))
	assert.Equal(t, "(missing: One digit, One special character (!@#$%^&*))",
		criteria(validation.EvaluatePassword("Abcdefgh")))
}
