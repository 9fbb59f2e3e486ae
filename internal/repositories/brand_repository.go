package repositories

import (
	"errors"

	"abacus_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBrandNotFound     = errors.New("brand not found")
	ErrBrandNameTaken    = errors.New("brand name already exists")
	ErrMemberExists      = errors.New("user is already a member of the brand")
	ErrMembershipMissing = errors.New("brand membership not found")
)

type BrandRepository interface {
	FindByID(id string) (*models.Brand, error)
	FindByName(name string) (*models.Brand, error)
	FindAll(criteria BrandFilter) ([]models.Brand, int64, error)
	Create(brand *models.Brand) error
	Update(brand *models.Brand) error
	Delete(brandID string) error

	AddMember(brandID, userID string) error
	RemoveMember(brandID, userID string) error
	IsMember(brandID, userID string) (bool, error)
	MemberIDs(brandID string) ([]string, error)
	BrandIDsForUser(userID string) ([]string, error)
}

type BrandRepositoryImpl struct {
	db *gorm.DB
}

type BrandFilter struct {
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &BrandRepositoryImpl{db: db}
}

func (r *BrandRepositoryImpl) FindByID(id string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.Preload("Users").Preload("Users.User").First(&brand, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepositoryImpl) FindByName(name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.First(&brand, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepositoryImpl) FindAll(criteria BrandFilter) ([]models.Brand, int64, error) {
	query := r.db.Model(&models.Brand{})

	if criteria.IsActive != nil {
		query = query.Where("is_active = ?", *criteria.IsActive)
	}
	if criteria.Search != "" {
		query = query.Where("name LIKE ?", "%"+criteria.Search+"%")
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
		pageSize = 20
	}

	var brands []models.Brand
	err := query.Preload("Users").Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&brands).Error
	if err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

func (r *BrandRepositoryImpl) Create(brand *models.Brand) error {
	var existing models.Brand
	if err := r.db.Where("name = ?", brand.Name).First(&existing).Error; err == nil {
		return ErrBrandNameTaken
	}
	return r.db.Create(brand).Error
}

func (r *BrandRepositoryImpl) Update(brand *models.Brand) error {
	result := r.db.Save(brand)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *BrandRepositoryImpl) Delete(brandID string) error {
	result := r.db.Delete(&models.Brand{}, "id = ?", brandID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *BrandRepositoryImpl) AddMember(brandID, userID string) error {
	var existing models.BrandUser
	err := r.db.Where("brand_id = ? AND user_id = ?", brandID, userID).First(&existing).Error
	if err == nil {
		return ErrMemberExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(&models.BrandUser{BrandID: brandID, UserID: userID}).Error
}

func (r *BrandRepositoryImpl) RemoveMember(brandID, userID string) error {
	result := r.db.Where("brand_id = ? AND user_id = ?", brandID, userID).Delete(&models.BrandUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipMissing
	}
	return nil
}

func (r *BrandRepositoryImpl) IsMember(brandID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BrandUser{}).
		Where("brand_id = ? AND user_id = ?", brandID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *BrandRepositoryImpl) MemberIDs(brandID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.BrandUser{}).
		Where("brand_id = ?", brandID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *BrandRepositoryImpl) BrandIDsForUser(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.BrandUser{}).
		Where("user_id = ?", userID).
		Pluck("brand_id", &ids).Error
	return ids, err
}
