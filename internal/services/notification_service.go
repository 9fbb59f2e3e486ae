package services

import (
	"context"
	"errors"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/events"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

type NotificationService interface {
	// Notify writes a durable notification row for each recipient and then
	// pushes a live event. The actor is always excluded from recipients.
	Notify(ctx context.Context, actor auth.Actor, recipientIDs []string, title, message string) error

	// PublishToUser pushes a live event without a durable row, for
	// ephemeral updates like new comments on an open task view.
	PublishToUser(ctx context.Context, userID, eventType string, payload any)

	List(ctx context.Context, actor auth.Actor, req dto.ListNotificationsRequest) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, actor auth.Actor) (int64, error)
	MarkAsRead(ctx context.Context, actor auth.Actor, notificationID string) error
	MarkAllAsRead(ctx context.Context, actor auth.Actor) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	publisher        events.Publisher
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, publisher events.Publisher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify stores first, publishes second. The row is the contract; the push
// is best-effort and a failed publish only logs.
func (s *notificationService) Notify(ctx context.Context, actor auth.Actor, recipientIDs []string, title, message string) error {
	seen := make(map[string]bool)
	for _, recipientID := range recipientIDs {
		if recipientID == "" || recipientID == actor.UserID || seen[recipientID] {
			continue
		}
		seen[recipientID] = true

		notification := &models.Notification{
			UserID:  recipientID,
			Title:   title,
			Message: message,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			return apperrors.InternalError(err)
		}

		s.PublishToUser(ctx, recipientID, "notification", dto.ToNotificationResponse(notification))
	}
	return nil
}

func (s *notificationService) PublishToUser(ctx context.Context, userID, eventType string, payload any) {
	err := s.publisher.Publish(ctx, events.Event{
		UserID:  userID,
		Type:    eventType,
		Payload: payload,
	})
	if err != nil {
		logger.CtxWarn(ctx, "event publish failed", "event_type", eventType, "error", err)
	}
}

func (s *notificationService) List(ctx context.Context, actor auth.Actor, req dto.ListNotificationsRequest) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindForUser(actor.UserID, req.UnreadOnly, req.Page, req.PageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.notificationRepo.CountUnread(actor.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.NotificationListResponse{
		Notifications: []dto.NotificationResponse{},
		UnreadCount:   unread,
		Pagination: dto.Pagination{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}
	for i := range notifications {
		resp.Notifications = append(resp.Notifications, dto.ToNotificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor auth.Actor) (int64, error) {
	count, err := s.notificationRepo.CountUnread(actor.UserID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// MarkAsRead hides another user's notification behind a not-found; ownership
// is never disclosed.
func (s *notificationService) MarkAsRead(ctx context.Context, actor auth.Actor, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notification", "Notification not found")
		}
		return apperrors.InternalError(err)
	}
	if notification.UserID != actor.UserID {
		return apperrors.NewNotFoundError("notification", "Notification not found")
	}
	if err := s.notificationRepo.MarkAsRead(notificationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, actor auth.Actor) error {
	if err := s.notificationRepo.MarkAllAsRead(actor.UserID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
