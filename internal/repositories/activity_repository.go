package repositories

import (
	"errors"

	"abacus_backend/internal/models"

	"gorm.io/gorm"
)

var ErrActivityNotFound = errors.New("activity entry not found")

type ActivityRepository interface {
	Create(entry *models.ActivityLog) error
	FindByID(id string) (*models.ActivityLog, error)
	FindWithFilter(criteria ActivityFilter) ([]models.ActivityLog, int64, error)
}

type ActivityRepositoryImpl struct {
	db *gorm.DB
}

type ActivityFilter struct {
	Entity   string
	EntityID string
	UserID   string
	Action   string
	Page     int
	PageSize int
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (r *ActivityRepositoryImpl) Create(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *ActivityRepositoryImpl) FindByID(id string) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	err := r.db.Preload("User").First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ActivityRepositoryImpl) FindWithFilter(criteria ActivityFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.Model(&models.ActivityLog{})

	if criteria.Entity != "" {
		query = query.Where("entity = ?", criteria.Entity)
	}
	if criteria.EntityID != "" {
		query = query.Where("entity_id = ?", criteria.EntityID)
	}
	if criteria.UserID != "" {
		query = query.Where("user_id = ?", criteria.UserID)
	}
	if criteria.Action != "" {
		query = query.Where("action = ?", criteria.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var entries []models.ActivityLog
	err := query.Preload("User").Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
