package services

import (
	"context"
	"errors"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

type BrandService interface {
	Create(ctx context.Context, actor auth.Actor, req dto.CreateBrandRequest) (*dto.BrandResponse, error)
	Get(ctx context.Context, actor auth.Actor, brandID string) (*dto.BrandResponse, error)
	List(ctx context.Context, actor auth.Actor, req dto.ListBrandsRequest) (*dto.BrandListResponse, error)
	Update(ctx context.Context, actor auth.Actor, brandID string, req dto.UpdateBrandRequest) (*dto.BrandResponse, error)
	Delete(ctx context.Context, actor auth.Actor, brandID string) error

	AddMember(ctx context.Context, actor auth.Actor, brandID, userID string) error
	RemoveMember(ctx context.Context, actor auth.Actor, brandID, userID string) error
}

type brandService struct {
	brandRepo   repositories.BrandRepository
	userRepo    repositories.UserRepository
	activitySvc ActivityService
}

func NewBrandService(brandRepo repositories.BrandRepository, userRepo repositories.UserRepository, activitySvc ActivityService) BrandService {
	return &brandService{
		brandRepo:   brandRepo,
		userRepo:    userRepo,
		activitySvc: activitySvc,
	}
}

func (s *brandService) Create(ctx context.Context, actor auth.Actor, req dto.CreateBrandRequest) (*dto.BrandResponse, error) {
	if !actor.CanManageBrands() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	brand := &models.Brand{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		IsActive:    true,
	}
	if err := s.brandRepo.Create(brand); err != nil {
		if errors.Is(err, repositories.ErrBrandNameTaken) {
			return nil, apperrors.NewConflictError("brand", "Brand name already exists")
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "CREATE", "Brand", brand.ID, map[string]interface{}{"name": brand.Name}); err != nil {
		return nil, err
	}

	resp := dto.ToBrandResponse(brand)
	return &resp, nil
}

// Get is open to any authenticated user; non-admins only reach brands via
// task visibility anyway and the brand record itself holds no secrets.
func (s *brandService) Get(ctx context.Context, actor auth.Actor, brandID string) (*dto.BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(brandID)
	if err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return nil, apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToBrandResponse(brand)
	return &resp, nil
}

func (s *brandService) List(ctx context.Context, actor auth.Actor, req dto.ListBrandsRequest) (*dto.BrandListResponse, error) {
	brands, total, err := s.brandRepo.FindAll(repositories.BrandFilter{
		IsActive: req.IsActive,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.BrandListResponse{
		Brands: []dto.BrandResponse{},
		Pagination: dto.Pagination{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}
	for i := range brands {
		resp.Brands = append(resp.Brands, dto.ToBrandResponse(&brands[i]))
	}
	return resp, nil
}

func (s *brandService) Update(ctx context.Context, actor auth.Actor, brandID string, req dto.UpdateBrandRequest) (*dto.BrandResponse, error) {
	if !actor.CanManageBrands() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	brand, err := s.brandRepo.FindByID(brandID)
	if err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return nil, apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil && *req.Name != brand.Name {
		if _, err := s.brandRepo.FindByName(*req.Name); err == nil {
			return nil, apperrors.NewConflictError("brand", "Brand name already exists")
		}
		brand.Name = *req.Name
	}
	if req.Description != nil {
		brand.Description = *req.Description
	}
	if req.Logo != nil {
		brand.Logo = *req.Logo
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}
	if err := s.brandRepo.Update(brand); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "UPDATE", "Brand", brand.ID, nil); err != nil {
		return nil, err
	}

	resp := dto.ToBrandResponse(brand)
	return &resp, nil
}

func (s *brandService) Delete(ctx context.Context, actor auth.Actor, brandID string) error {
	if !actor.CanManageBrands() {
		return apperrors.NewForbiddenError("Access denied")
	}

	if err := s.brandRepo.Delete(brandID); err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DELETE", "Brand", brandID, nil)
}

func (s *brandService) AddMember(ctx context.Context, actor auth.Actor, brandID, userID string) error {
	if !actor.CanManageBrands() {
		return apperrors.NewForbiddenError("Access denied")
	}

	if _, err := s.brandRepo.FindByID(brandID); err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return apperrors.InternalError(err)
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "User not found")
		}
		return apperrors.InternalError(err)
	}

	if err := s.brandRepo.AddMember(brandID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberExists) {
			return apperrors.NewConflictError("brand", "User is already a member of the brand")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "ADD_MEMBER", "Brand", brandID, map[string]interface{}{"member_id": userID})
}

func (s *brandService) RemoveMember(ctx context.Context, actor auth.Actor, brandID, userID string) error {
	if !actor.CanManageBrands() {
		return apperrors.NewForbiddenError("Access denied")
	}

	if err := s.brandRepo.RemoveMember(brandID, userID); err != nil {
		if errors.Is(err, repositories.ErrMembershipMissing) {
			return apperrors.NewNotFoundError("brand", "Membership not found")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "REMOVE_MEMBER", "Brand", brandID, map[string]interface{}{"member_id": userID})
}
