package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abacus_backend/internal/models"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

func TestRegisterDefaultsToClientViewer(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.authSvc.Register(context.Background(), dto.RegisterRequest{
		Email:     "new@abacus.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.UserRoleClientViewer, resp.User.Role)
	assert.Equal(t, 1, env.mail.SentCount())
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "new@abacus.com", Password: "secret123", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)

	// Unknown email yields the same error shape.
	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "ghost@abacus.com", Password: "whatever"})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "new@abacus.com", Password: "secret123", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "secret123"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestForgotPasswordIsSilentForUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.authSvc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{
		Email: "nobody@abacus.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.mail.SentCount())
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "new@abacus.com", Password: "secret123", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	require.NoError(t, env.authSvc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "new@abacus.com"}))

	// The mock sender records the raw token in the body.
	require.Equal(t, 2, env.mail.SentCount())
	token := env.mail.Sent[1].Body
	require.NotEmpty(t, token)

	require.NoError(t, env.authSvc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Token: token, Password: "brandnew1",
	}))

	// Old password out, new password in, token single-use.
	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "secret123"})
	require.Error(t, err)
	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "brandnew1"})
	require.NoError(t, err)

	err = env.authSvc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, Password: "again123"})
	require.Error(t, err)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "new@abacus.com", Password: "secret123", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	user, err := env.userRepo.FindByID(resp.User.ID)
	require.NoError(t, err)
	actor := actorFor(user)

	err = env.authSvc.ChangePassword(ctx, actor, dto.ChangePasswordRequest{
		CurrentPassword: "nope", NewPassword: "another123",
	})
	require.Error(t, err)

	require.NoError(t, env.authSvc.ChangePassword(ctx, actor, dto.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "rotated99",
	}))
	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "rotated99"})
	require.NoError(t, err)
}

func TestRegisterLowercasesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "MiXeD@Abacus.COM", Password: "secret123", FirstName: "Mixed", LastName: "Case",
	})
	require.NoError(t, err)
	assert.Equal(t, "mixed@abacus.com", resp.User.Email)

	// Login matches regardless of the casing the client sends.
	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "MIXED@abacus.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestLoginWritesAuditRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.authSvc.Register(ctx, dto.RegisterRequest{
		Email: "new@abacus.com", Password: "secret123", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	_, err = env.authSvc.Login(ctx, dto.LoginRequest{Email: "new@abacus.com", Password: "secret123"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).
		Where("action = ? AND user_id = ?", "LOGIN", resp.User.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
