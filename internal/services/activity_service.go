package services

import (
	"context"
	"errors"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// ActivityService is the audit sink. Record is called inside every mutating
// operation; a failed write fails the whole operation rather than losing
// the trail entry.
type ActivityService interface {
	Record(ctx context.Context, actor auth.Actor, action, entity, entityID string, metadata map[string]interface{}) error
	Get(ctx context.Context, actor auth.Actor, activityID string) (*dto.ActivityResponse, error)
	List(ctx context.Context, actor auth.Actor, req dto.ListActivityRequest) (*dto.ActivityListResponse, error)
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) Record(ctx context.Context, actor auth.Actor, action, entity, entityID string, metadata map[string]interface{}) error {
	entry := &models.ActivityLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		UserID:   actor.UserID,
	}
	if metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}
	if err := s.activityRepo.Create(entry); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *activityService) Get(ctx context.Context, actor auth.Actor, activityID string) (*dto.ActivityResponse, error) {
	if !actor.CanViewActivity() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	entry, err := s.activityRepo.FindByID(activityID)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			return nil, apperrors.NewNotFoundError("activity", "Activity entry not found")
		}
		return nil, apperrors.InternalError(err)
	}

	resp := dto.ToActivityResponse(entry)
	return &resp, nil
}

func (s *activityService) List(ctx context.Context, actor auth.Actor, req dto.ListActivityRequest) (*dto.ActivityListResponse, error) {
	if !actor.CanViewActivity() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	entries, total, err := s.activityRepo.FindWithFilter(repositories.ActivityFilter{
		Entity:   req.Entity,
		EntityID: req.EntityID,
		UserID:   req.UserID,
		Action:   req.Action,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.ActivityListResponse{
		Entries: []dto.ActivityResponse{},
		Pagination: dto.Pagination{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, dto.ToActivityResponse(&entries[i]))
	}
	return resp, nil
}
