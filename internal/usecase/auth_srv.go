package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"woodeoo-auth/internal/data/entity"
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/dto/response"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/internal/validation"
	"woodeoo-auth/pkg/metrics"
	"woodeoo-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req *request.ContactRequest) error
	ResendCode(ctx context.Context, req *request.ContactRequest) error
	VerifyCode(ctx context.Context, req *request.VerifyCodeRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidCode        = "Invalid or expired code"
	msgTooManyAttempts    = "Too many attempts. Please request a new code."
)

type authService struct {
	repo     *repository.Repository
	config   *utils.Config
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	notifier notify.Notifier,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		config:   config,
		notifier: notifier,
		log:      log.With(zap.String("service", "auth")),
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	const op = "auth.register"

	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, invalidFields(op, errs)
	}

	accountType := entity.AccountType(req.AccountType)
	if accountType == "" {
		accountType = entity.AccountClient
	}

	// 2. Email must be free
	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, internal(op, err)
	}
	if existing != nil {
		s.log.Warn("Register with taken email")
		return nil, conflict(op, "Email already registered")
	}

	// 3. Phone must be free
	var phone *string
	if req.Phone != "" {
		existing, err = s.repo.User.FindByPhone(ctx, req.Phone)
		if err != nil {
			return nil, internal(op, err)
		}
		if existing != nil {
			s.log.Warn("Register with taken phone")
			return nil, conflict(op, "Phone number already registered")
		}
		phone = &req.Phone
	}

	// 4. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, internal(op, err)
	}

	// 5. Build user, business fields only for artisans
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Phone:        phone,
		Role:         entity.RoleUser,
		AccountType:  accountType,
		IsActive:     true,
	}
	if accountType == entity.AccountArtisan {
		user.CompanyName = optional(req.CompanyName)
		user.TaxID = optional(req.TaxID)
	}

	// 6. Save user
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, internal(op, err)
	}
	metrics.RegistrationsTotal.WithLabelValues(string(accountType)).Inc()

	// 7. Send the email verification code (async)
	go s.sendEmailVerification(user)

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("account_type", string(accountType)))

	resp := response.AuthToResponse(user, nil)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	const op = "auth.login"

	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, invalidFields(op, errs)
	}

	// 2. Find user by email or phone
	user, err := s.findByContact(ctx, req.Email)
	if err != nil {
		return nil, internal(op, err)
	}

	// 3. Unknown user and wrong password answer the same
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Login failed")
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, unauthorized(op, msgInvalidCredentials)
	}

	// 4. Check if user is active
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		metrics.LoginsTotal.WithLabelValues("inactive").Inc()
		return nil, forbidden(op, "Account is deactivated")
	}

	// 5. Create session
	session, err := s.createSession(ctx, user.ID, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, internal(op, err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	const op = "auth.logout"

	// 1. Parse token
	tokenUUID, err := utils.ParseUUID(token)
	if err != nil {
		s.log.Warn("Invalid token format", zap.Error(err))
		return invalid(op, "Invalid token format")
	}

	// 2. Revoke session
	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return unauthorized(op, "Session not found or already ended")
		}
		return internal(op, err)
	}

	s.log.Info("User logged out")
	return nil
}

// ForgotPassword issues a reset code to the contact. Unknown contacts get the
// same answer as known ones.
func (s *authService) ForgotPassword(ctx context.Context, req *request.ContactRequest) error {
	return s.issueResetCode(ctx, "auth.forgot_password", req)
}

// ResendCode issues a fresh reset code, subject to the same cooldown.
func (s *authService) ResendCode(ctx context.Context, req *request.ContactRequest) error {
	return s.issueResetCode(ctx, "auth.resend_code", req)
}

func (s *authService) issueResetCode(ctx context.Context, op string, req *request.ContactRequest) error {
	// 1. Validate
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidFields(op, errs)
	}

	// 2. Cooldown per contact, before the lookup so unknown contacts answer the same
	contact := codeKey(req.Contact)
	if err := s.checkCooldown(ctx, op, contact, entity.PurposePasswordReset); err != nil {
		return err
	}

	// 3. Find user
	user, err := s.findByContact(ctx, req.Contact)
	if err != nil {
		return internal(op, err)
	}
	if user == nil || !user.IsActive {
		s.log.Info("Reset code requested for unknown contact")
		return nil
	}

	// 4. Issue and deliver
	return s.issueCode(ctx, op, user, contact, entity.PurposePasswordReset)
}

// VerifyCode checks a reset code without consuming it; ResetPassword consumes it.
func (s *authService) VerifyCode(ctx context.Context, req *request.VerifyCodeRequest) error {
	const op = "auth.verify_code"

	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidFields(op, errs)
	}

	_, err := s.checkCode(ctx, op, req.Contact, entity.PurposePasswordReset, req.Code)
	return err
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	const op = "auth.reset_password"

	// 1. Validate
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidFields(op, errs)
	}

	// 2. Check code
	code, err := s.checkCode(ctx, op, req.Contact, entity.PurposePasswordReset, req.Code)
	if err != nil {
		return err
	}

	// 3. Load user
	user, err := s.repo.User.FindByID(ctx, code.UserID)
	if err != nil {
		return internal(op, err)
	}
	if user == nil {
		return invalid(op, msgInvalidCode)
	}

	// 4. Consume code
	if err := s.repo.Verification.MarkUsed(ctx, code.ID); err != nil {
		return internal(op, err)
	}

	// 5. Update password
	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return internal(op, err)
	}
	user.PasswordHash = hashedPassword
	user.UpdatedAt = s.now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return internal(op, err)
	}

	// 6. End every session of the user
	if err := s.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
		s.log.Warn("Failed to revoke sessions after reset", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	const op = "auth.verify_email"

	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidFields(op, errs)
	}

	// 2. Check code
	code, err := s.checkCode(ctx, op, req.Email, entity.PurposeEmailVerification, req.Code)
	if err != nil {
		return err
	}

	// 3. Mark code as used
	if err := s.repo.Verification.MarkUsed(ctx, code.ID); err != nil {
		return internal(op, err)
	}

	// 4. Find user
	user, err := s.repo.User.FindByID(ctx, code.UserID)
	if err != nil {
		return internal(op, err)
	}
	if user == nil {
		return notFound(op, "User not found")
	}

	// 5. Update verification status
	user.EmailVerified = true
	user.UpdatedAt = s.now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return internal(op, err)
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) findByContact(ctx context.Context, contact string) (*entity.User, error) {
	switch validation.ClassifyContact(contact) {
	case validation.ContactEmail:
		return s.repo.User.FindByEmail(ctx, contact)
	case validation.ContactPhone:
		return s.repo.User.FindByPhone(ctx, contact)
	default:
		return nil, nil
	}
}

// codeKey is the contact under which codes and cooldowns are stored. Email
// lookups ignore case, so email keys are lowercased.
func codeKey(contact string) string {
	if validation.ClassifyContact(contact) == validation.ContactEmail {
		return strings.ToLower(contact)
	}
	return contact
}

func (s *authService) checkCooldown(ctx context.Context, op, contact string, purpose entity.CodePurpose) error {
	cooldown := time.Duration(s.config.Verification.CooldownSeconds) * time.Second
	if cooldown <= 0 {
		return nil
	}

	now := s.now()
	last, err := s.repo.Verification.ClaimRequest(ctx, contact, purpose, now, cooldown)
	if err != nil {
		return internal(op, err)
	}
	if last == nil {
		return nil
	}

	wait := last.Add(cooldown).Sub(now)
	seconds := int((wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	s.log.Warn("Code requested during cooldown", zap.Int("wait_seconds", seconds))
	return rateLimited(op, fmt.Sprintf("Please wait %d seconds before requesting a new code", seconds))
}

func (s *authService) issueCode(ctx context.Context, op string, user *entity.User, contact string, purpose entity.CodePurpose) error {
	code, err := utils.GenerateCode(s.config.Verification.CodeLength)
	if err != nil {
		return internal(op, err)
	}

	contact = codeKey(contact)
	channel := entity.ChannelEmail
	deliverTo := user.Email
	if validation.ClassifyContact(contact) == validation.ContactPhone {
		channel = entity.ChannelSMS
		deliverTo = contact
	}

	now := s.now()
	record := &entity.VerificationCode{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Contact:   contact,
		Channel:   channel,
		Purpose:   purpose,
		CodeHash:  utils.HashCode(code),
		ExpiresAt: now.Add(time.Duration(s.config.Verification.ExpiryMinutes) * time.Minute),
	}
	if err := s.repo.Verification.Create(ctx, record); err != nil {
		return internal(op, err)
	}

	msg := s.codeMessage(channel, deliverTo, purpose, code)
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Error("Failed to deliver code",
			zap.Error(err),
			zap.String("channel", string(channel)),
			zap.String("purpose", string(purpose)))
		return internal(op, err)
	}

	metrics.CodesIssuedTotal.WithLabelValues(string(purpose), string(channel)).Inc()
	return nil
}

func (s *authService) codeMessage(channel entity.Channel, contact string, purpose entity.CodePurpose, code string) notify.Message {
	subject := fmt.Sprintf("%s password reset code", s.config.App.Name)
	if purpose == entity.PurposeEmailVerification {
		subject = fmt.Sprintf("Verify your %s account", s.config.App.Name)
	}
	body := fmt.Sprintf("Your %s code is %s. It expires in %d minutes.",
		s.config.App.Name, code, s.config.Verification.ExpiryMinutes)

	return notify.Message{
		Channel: notify.Channel(channel),
		To:      contact,
		Subject: subject,
		Body:    body,
	}
}

// checkCode finds the active code for the contact and compares it. Every
// check claims an attempt before the compare so parallel guesses cannot
// exceed the limit; a match gives its attempt back.
func (s *authService) checkCode(ctx context.Context, op, contact string, purpose entity.CodePurpose, code string) (*entity.VerificationCode, error) {
	record, err := s.repo.Verification.FindLatestActive(ctx, codeKey(contact), purpose)
	if err != nil {
		return nil, internal(op, err)
	}
	if record == nil {
		metrics.CodeChecksTotal.WithLabelValues("missing").Inc()
		return nil, invalid(op, msgInvalidCode)
	}

	maxAttempts := s.config.Verification.MaxAttempts
	attempts, claimed, err := s.repo.Verification.ClaimAttempt(ctx, record.ID, maxAttempts)
	if err != nil {
		return nil, internal(op, err)
	}
	if !claimed {
		metrics.CodeChecksTotal.WithLabelValues("locked").Inc()
		return nil, rateLimited(op, msgTooManyAttempts)
	}

	if !utils.CodeMatches(code, record.CodeHash) {
		metrics.CodeChecksTotal.WithLabelValues("mismatch").Inc()
		s.log.Warn("Wrong verification code", zap.Int("attempts", attempts))
		if attempts >= maxAttempts {
			return nil, rateLimited(op, msgTooManyAttempts)
		}
		return nil, invalid(op, msgInvalidCode)
	}

	if err := s.repo.Verification.ReleaseAttempt(ctx, record.ID); err != nil {
		s.log.Warn("Failed to release attempt", zap.Error(err))
	}
	record.Attempts = attempts - 1

	metrics.CodeChecksTotal.WithLabelValues("match").Inc()
	return record, nil
}

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, userAgent, ipAddress string) (*entity.Session, error) {
	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		UserAgent: optional(clip(userAgent, 512)),
		IPAddress: optional(clip(ipAddress, 64)),
		ExpiresAt: now.Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *authService) sendEmailVerification(user *entity.User) {
	const op = "auth.send_email_verification"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.issueCode(ctx, op, user, user.Email, entity.PurposeEmailVerification); err != nil {
		s.log.Error("Failed to send verification code", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
}

func clip(v string, n int) string {
	if len(v) > n {
		return v[:n]
	}
	return v
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
