package repositories

import (
	"errors"

	"abacus_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrCalendarExists   = errors.New("calendar already exists")
	ErrScopeNotFound    = errors.New("calendar scope not found")
)

// CalendarFilter narrows calendar listings. Zero values mean "any".
type CalendarFilter struct {
	BrandID string
	Year    int
	Month   int
}

type CalendarRepository interface {
	FindByID(id string) (*models.Calendar, error)
	FindByBrandMonthYear(brandID string, month, year int) (*models.Calendar, error)
	FindByBrand(brandID string) ([]models.Calendar, error)
	FindWithFilter(filter CalendarFilter) ([]models.Calendar, error)
	Create(calendar *models.Calendar) error
	Update(calendar *models.Calendar) error
	Delete(calendarID string) error

	UpsertScope(calendarID string, contentType models.ContentType, quantity int) (*models.CalendarScope, error)
	DeleteScope(calendarID, scopeID string) error
}

type CalendarRepositoryImpl struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &CalendarRepositoryImpl{db: db}
}

func (r *CalendarRepositoryImpl) FindByID(id string) (*models.Calendar, error) {
	var calendar models.Calendar
	err := r.db.Preload("Brand").Preload("Scopes").First(&calendar, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepositoryImpl) FindByBrandMonthYear(brandID string, month, year int) (*models.Calendar, error) {
	var calendar models.Calendar
	err := r.db.Preload("Scopes").
		First(&calendar, "brand_id = ? AND month = ? AND year = ?", brandID, month, year).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepositoryImpl) FindByBrand(brandID string) ([]models.Calendar, error) {
	var calendars []models.Calendar
	err := r.db.Preload("Scopes").
		Where("brand_id = ?", brandID).
		Order("year DESC, month DESC").
		Find(&calendars).Error
	return calendars, err
}

func (r *CalendarRepositoryImpl) FindWithFilter(filter CalendarFilter) ([]models.Calendar, error) {
	query := r.db.Preload("Brand").Preload("Scopes")
	if filter.BrandID != "" {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.Month != 0 {
		query = query.Where("month = ?", filter.Month)
	}

	var calendars []models.Calendar
	err := query.Order("year DESC, month DESC").Find(&calendars).Error
	return calendars, err
}

// Create maps the (brand, month, year) unique index violation to
// ErrCalendarExists so concurrent creates of the same month can be told
// apart from real failures.
func (r *CalendarRepositoryImpl) Create(calendar *models.Calendar) error {
	err := r.db.Create(calendar).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCalendarExists
	}
	return err
}

func (r *CalendarRepositoryImpl) Update(calendar *models.Calendar) error {
	result := r.db.Save(calendar)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

func (r *CalendarRepositoryImpl) Delete(calendarID string) error {
	result := r.db.Delete(&models.Calendar{}, "id = ?", calendarID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

// UpsertScope keeps a single row per (calendar, content type) pair, replacing
// the quantity on repeat calls.
func (r *CalendarRepositoryImpl) UpsertScope(calendarID string, contentType models.ContentType, quantity int) (*models.CalendarScope, error) {
	var scope models.CalendarScope
	err := r.db.Where("calendar_id = ? AND content_type = ?", calendarID, contentType).First(&scope).Error
	switch {
	case err == nil:
		scope.Quantity = quantity
		if err := r.db.Save(&scope).Error; err != nil {
			return nil, err
		}
		return &scope, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		scope = models.CalendarScope{
			CalendarID:  calendarID,
			ContentType: contentType,
			Quantity:    quantity,
		}
		if err := r.db.Create(&scope).Error; err != nil {
			return nil, err
		}
		return &scope, nil
	default:
		return nil, err
	}
}

// DeleteScope requires the calendar id too, so a scope id from another
// calendar cannot be removed through the wrong URL.
func (r *CalendarRepositoryImpl) DeleteScope(calendarID, scopeID string) error {
	result := r.db.Delete(&models.CalendarScope{}, "id = ? AND calendar_id = ?", scopeID, calendarID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScopeNotFound
	}
	return nil
}
