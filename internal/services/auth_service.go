package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/models"
	"abacus_backend/internal/pkg/email"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

const resetTokenTTL = time.Hour

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, actor auth.Actor, req dto.ChangePasswordRequest) error
	Me(ctx context.Context, actor auth.Actor) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor auth.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type authService struct {
	userRepo    repositories.UserRepository
	activitySvc ActivityService
	emailSender email.Sender
	cfg         AuthConfig
}

func NewAuthService(userRepo repositories.UserRepository, activitySvc ActivityService, emailSender email.Sender, cfg AuthConfig) AuthService {
	return &authService{
		userRepo:    userRepo,
		activitySvc: activitySvc,
		emailSender: emailSender,
		cfg:         cfg,
	}
}

// Register is self-service signup; the account always starts as a client
// viewer. Privileged accounts are created through the user admin API.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRoleClientViewer,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.NewConflictError("user", "Email is already registered")
		}
		return nil, apperrors.InternalError(err)
	}

	actor := auth.Actor{UserID: user.ID, Role: user.Role}
	if err := s.activitySvc.Record(ctx, actor, "REGISTER", "User", user.ID, map[string]interface{}{"email": user.Email}); err != nil {
		return nil, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcome(user.Email, user.FirstName); err != nil {
			logger.CtxWarn(ctx, "welcome email failed", "error", err)
		}
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
	}
	if !user.IsActive {
		return nil, apperrors.NewForbiddenError("Account is deactivated")
	}

	actor := auth.Actor{UserID: user.ID, Role: user.Role}
	if err := s.activitySvc.Record(ctx, actor, "LOGIN", "User", user.ID, nil); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// ForgotPassword responds identically whether or not the email exists.
func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(user.ID, token, expiresAt); err != nil {
		return apperrors.InternalError(err)
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordReset(user.Email, user.FirstName, token); err != nil {
			logger.CtxWarn(ctx, "reset email failed", "error", err)
		}
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByResetToken(req.Token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewBadRequestError("Invalid or expired reset token")
		}
		return apperrors.InternalError(err)
	}
	if user.ResetTokenExp == nil || user.ResetTokenExp.Before(time.Now()) {
		return apperrors.NewBadRequestError("Invalid or expired reset token")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.ClearResetToken(user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	actor := auth.Actor{UserID: user.ID, Role: user.Role}
	return s.activitySvc.Record(ctx, actor, "RESET_PASSWORD", "User", user.ID, nil)
}

func (s *authService) ChangePassword(ctx context.Context, actor auth.Actor, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "User not found")
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.NewBadRequestError("Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "CHANGE_PASSWORD", "User", user.ID, nil)
}

func (s *authService) Me(ctx context.Context, actor auth.Actor) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor auth.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(actor.UserID)
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
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "UPDATE", "User", user.ID, nil); err != nil {
		return nil, err
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *authService) issueToken(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(s.cfg.JWTSecret, s.cfg.TokenTTL, user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	}, nil
}
