// Package client provides flow.Gateway implementations: one speaking JSON
// over HTTP to the auth API and one calling the auth service in process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/dto/response"
	"woodeoo-auth/internal/flow"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// envelope mirrors the server's JSON answer.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HTTPGateway calls the /api/auth endpoints of a running server.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewHTTPGateway(baseURL string, log *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log.With(zap.String("gateway", "http")),
	}
}

func (g *HTTPGateway) Register(ctx context.Context, in flow.RegisterInput) error {
	return g.post(ctx, "/api/auth/register", in, nil)
}

func (g *HTTPGateway) Login(ctx context.Context, email, password string) (*flow.Session, error) {
	var auth response.AuthResponse
	err := g.post(ctx, "/api/auth/login", request.LoginRequest{Email: email, Password: password}, &auth)
	if err != nil {
		return nil, err
	}
	return sessionFrom(&auth), nil
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, contact string) error {
	return g.post(ctx, "/api/auth/forgot-password", request.ContactRequest{Contact: contact}, nil)
}

func (g *HTTPGateway) ResendCode(ctx context.Context, contact string) error {
	return g.post(ctx, "/api/auth/resend-code", request.ContactRequest{Contact: contact}, nil)
}

func (g *HTTPGateway) VerifyCode(ctx context.Context, contact, code string) error {
	return g.post(ctx, "/api/auth/verify-code", request.VerifyCodeRequest{Contact: contact, Code: code}, nil)
}

func (g *HTTPGateway) ResetPassword(ctx context.Context, contact, code, newPassword string) error {
	return g.post(ctx, "/api/auth/reset-password", request.ResetPasswordRequest{
		Contact:     contact,
		Code:        code,
		NewPassword: newPassword,
	}, nil)
}

// post sends body as JSON and decodes the data field into out. Non-2xx
// answers become *flow.RemoteError carrying the server's error text.
func (g *HTTPGateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.log.Debug("Request rejected", zap.String("path", path), zap.Int("status", resp.StatusCode))
		message := env.Error
		if message == "" {
			message = env.Message
		}
		return &flow.RemoteError{Status: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return nil
}

func sessionFrom(auth *response.AuthResponse) *flow.Session {
	s := &flow.Session{UserID: auth.UserID, Token: auth.Token}
	if auth.ExpiresAt != nil {
		s.ExpiresAt = *auth.ExpiresAt
	}
	return s
}
