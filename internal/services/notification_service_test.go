package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/models"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

func TestNotifyWritesRowThenPublishes(t *testing.T) {
	env := newTestEnv(t)
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)
	bob := env.createUser(t, "bob@abacus.com", models.UserRoleDesigner)

	err := env.notification.Notify(context.Background(), actorFor(actor),
		[]string{alice.ID, bob.ID}, "Heads up", "Something happened")
	require.NoError(t, err)

	var rows []models.Notification
	require.NoError(t, env.db.Order("created_at").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "Heads up", row.Title)
		assert.False(t, row.IsRead)
	}

	pushed := env.publisher.ofType("notification")
	assert.Len(t, pushed, 2)
}

func TestNotifySkipsActorBlankAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)

	err := env.notification.Notify(context.Background(), actorFor(actor),
		[]string{actor.ID, "", alice.ID, alice.ID}, "Heads up", "msg")
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMarkAsReadEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)
	mallory := env.createUser(t, "mallory@abacus.com", models.UserRoleWriter)

	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "Hi", "msg"))

	var row models.Notification
	require.NoError(t, env.db.First(&row).Error)

	// Someone else's notification reads as missing, not forbidden.
	err := env.notification.MarkAsRead(ctx, actorFor(mallory), row.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, env.notification.MarkAsRead(ctx, actorFor(alice), row.ID))
	require.NoError(t, env.db.First(&row, "id = ?", row.ID).Error)
	assert.True(t, row.IsRead)
}

func TestMarkAllAsReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)

	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "One", "msg"))
	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "Two", "msg"))

	require.NoError(t, env.notification.MarkAllAsRead(ctx, actorFor(alice)))
	unread, err := env.notificationRepo.CountUnread(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Second run with nothing unread succeeds quietly.
	require.NoError(t, env.notification.MarkAllAsRead(ctx, actorFor(alice)))

	// An empty inbox is also fine.
	nobody := auth.Actor{UserID: "no-such-user", Role: models.UserRoleWriter}
	require.NoError(t, env.notification.MarkAllAsRead(ctx, nobody))
}

func TestNotificationListAndUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)

	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "One", "msg"))
	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "Two", "msg"))

	var row models.Notification
	require.NoError(t, env.db.Where("title = ?", "One").First(&row).Error)
	require.NoError(t, env.notification.MarkAsRead(ctx, actorFor(alice), row.ID))

	all, err := env.notification.List(ctx, actorFor(alice), dto.ListNotificationsRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, all.Notifications, 2)
	assert.Equal(t, int64(1), all.UnreadCount)

	unreadOnly, err := env.notification.List(ctx, actorFor(alice), dto.ListNotificationsRequest{
		UnreadOnly: true, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, unreadOnly.Notifications, 1)
	assert.Equal(t, "Two", unreadOnly.Notifications[0].Title)
}

func TestUnreadCountStandsAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.createUser(t, "actor@abacus.com", models.UserRoleAdmin)
	alice := env.createUser(t, "alice@abacus.com", models.UserRoleWriter)

	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "One", "first"))
	require.NoError(t, env.notification.Notify(ctx, actorFor(actor), []string{alice.ID}, "Two", "second"))

	count, err := env.notification.UnreadCount(ctx, actorFor(alice))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.notification.MarkAllAsRead(ctx, actorFor(alice)))
	count, err = env.notification.UnreadCount(ctx, actorFor(alice))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
