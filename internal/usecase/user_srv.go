package usecase

import (
	"context"
	"errors"

	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/dto/response"
	"woodeoo-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	const op = "user.profile"

	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, internal(op, err)
	}
	if user == nil {
		return nil, notFound(op, "User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	const op = "user.list"

	req.Normalize()

	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, internal(op, err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, internal(op, err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	const op = "user.delete"

	id, err := utils.ParseUUID(userID)
	if err != nil {
		return invalid(op, "Invalid user ID")
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(op, "User not found")
		}
		return internal(op, err)
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}
