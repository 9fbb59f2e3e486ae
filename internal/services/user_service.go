package services

import (
	"context"
	"errors"
	"strings"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/models"
	"abacus_backend/internal/pkg/email"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

type UserService interface {
	Create(ctx context.Context, actor auth.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, actor auth.Actor, userID string) (*dto.UserResponse, error)
	List(ctx context.Context, actor auth.Actor, req dto.ListUsersRequest) (*dto.UserListResponse, error)
	Update(ctx context.Context, actor auth.Actor, userID string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	ChangeRole(ctx context.Context, actor auth.Actor, userID string, req dto.ChangeRoleRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor auth.Actor, userID string) error
}

type userService struct {
	userRepo    repositories.UserRepository
	activitySvc ActivityService
	emailSender email.Sender
}

func NewUserService(userRepo repositories.UserRepository, activitySvc ActivityService, emailSender email.Sender) UserService {
	return &userService{
		userRepo:    userRepo,
		activitySvc: activitySvc,
		emailSender: emailSender,
	}
}

func (s *userService) Create(ctx context.Context, actor auth.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.CanCreateUsers() {
		return nil, apperrors.NewForbiddenError("Only the super admin can create users")
	}
	if !models.ValidUserRole(req.Role) {
		return nil, apperrors.NewBadRequestError("Invalid role")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.NewConflictError("user", "Email is already registered")
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "CREATE", "User", user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  string(user.Role),
	}); err != nil {
		return nil, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcome(user.Email, user.FirstName); err != nil {
			logger.CtxWarn(ctx, "welcome email failed", "error", err)
		}
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, actor auth.Actor, userID string) (*dto.UserResponse, error) {
	if !actor.CanListUsers() && actor.UserID != userID {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, actor auth.Actor, req dto.ListUsersRequest) (*dto.UserListResponse, error) {
	if !actor.CanListUsers() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	users, total, err := s.userRepo.FindWithFilter(repositories.UserFilter{
		Role:     req.Role,
		IsActive: req.IsActive,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.UserListResponse{
		Users: []dto.UserResponse{},
		Pagination: dto.Pagination{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}
	for i := range users {
		resp.Users = append(resp.Users, dto.ToUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *userService) Update(ctx context.Context, actor auth.Actor, userID string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !actor.CanManageUsers() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "UPDATE", "User", user.ID, nil); err != nil {
		return nil, err
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// ChangeRole is the sole privilege of the super admin; an admin asking is
// denied like everyone else.
func (s *userService) ChangeRole(ctx context.Context, actor auth.Actor, userID string, req dto.ChangeRoleRequest) (*dto.UserResponse, error) {
	if !actor.CanChangeRole() {
		return nil, apperrors.NewForbiddenError("Only the super admin can change roles")
	}
	if actor.UserID == userID {
		return nil, apperrors.NewBadRequestError("You cannot change your own role")
	}
	if !models.ValidUserRole(req.Role) {
		return nil, apperrors.NewBadRequestError("Invalid role")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	oldRole := user.Role
	user.Role = req.Role
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "CHANGE_ROLE", "User", user.ID, map[string]interface{}{
		"old_role": string(oldRole),
		"new_role": string(req.Role),
	}); err != nil {
		return nil, err
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Delete rejects self-deletion regardless of role.
func (s *userService) Delete(ctx context.Context, actor auth.Actor, userID string) error {
	if !actor.CanDeleteUsers() {
		return apperrors.NewForbiddenError("Only the super admin can delete users")
	}
	if actor.UserID == userID {
		return apperrors.NewBadRequestError("You cannot delete your own account")
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "User not found")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DELETE", "User", userID, nil)
}
