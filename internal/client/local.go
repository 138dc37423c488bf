package client

import (
	"context"

	"woodeoo-auth/internal/adaptor"
	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/flow"
	"woodeoo-auth/internal/usecase"

	"go.uber.org/zap"
)

// LocalGateway runs the flows against an in-process auth service. Service
// errors are reported with the status the HTTP API would have used.
type LocalGateway struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewLocalGateway(service usecase.AuthService, log *zap.Logger) *LocalGateway {
	return &LocalGateway{
		service: service,
		log:     log.With(zap.String("gateway", "local")),
	}
}

func (g *LocalGateway) Register(ctx context.Context, in flow.RegisterInput) error {
	_, err := g.service.Register(ctx, &request.RegisterRequest{
		Username:    in.Username,
		Email:       in.Email,
		Password:    in.Password,
		Phone:       in.Phone,
		AccountType: in.AccountType,
		CompanyName: in.CompanyName,
		TaxID:       in.TaxID,
	})
	return g.remote(err)
}

func (g *LocalGateway) Login(ctx context.Context, email, password string) (*flow.Session, error) {
	auth, err := g.service.Login(ctx, &request.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, g.remote(err)
	}
	return sessionFrom(auth), nil
}

func (g *LocalGateway) ForgotPassword(ctx context.Context, contact string) error {
	return g.remote(g.service.ForgotPassword(ctx, &request.ContactRequest{Contact: contact}))
}

func (g *LocalGateway) ResendCode(ctx context.Context, contact string) error {
	return g.remote(g.service.ResendCode(ctx, &request.ContactRequest{Contact: contact}))
}

func (g *LocalGateway) VerifyCode(ctx context.Context, contact, code string) error {
	return g.remote(g.service.VerifyCode(ctx, &request.VerifyCodeRequest{Contact: contact, Code: code}))
}

func (g *LocalGateway) ResetPassword(ctx context.Context, contact, code, newPassword string) error {
	return g.remote(g.service.ResetPassword(ctx, &request.ResetPasswordRequest{
		Contact:     contact,
		Code:        code,
		NewPassword: newPassword,
	}))
}

func (g *LocalGateway) remote(err error) error {
	if err == nil {
		return nil
	}
	if usecase.ErrorCode(err) == usecase.EINTERNAL {
		g.log.Error("Service call failed", zap.Error(err))
	}
	return &flow.RemoteError{Status: adaptor.StatusCode(err), Message: usecase.ErrorMessage(err)}
}

var (
	_ flow.Gateway = (*HTTPGateway)(nil)
	_ flow.Gateway = (*LocalGateway)(nil)
)
