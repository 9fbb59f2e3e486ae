package dto

import "abacus_backend/internal/models"

type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type UpdateBrandRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	IsActive    *bool   `json:"is_active"`
}

type AddBrandMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type ListBrandsRequest struct {
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

type BrandResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Logo        string         `json:"logo"`
	IsActive    bool           `json:"is_active"`
	Members     []UserResponse `json:"members,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

type BrandListResponse struct {
	Brands     []BrandResponse `json:"brands"`
	Pagination Pagination      `json:"pagination"`
}

func ToBrandResponse(brand *models.Brand) BrandResponse {
	resp := BrandResponse{
		ID:          brand.ID,
		Name:        brand.Name,
		Description: brand.Description,
		Logo:        brand.Logo,
		IsActive:    brand.IsActive,
		CreatedAt:   brand.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, membership := range brand.Users {
		if membership.User != nil {
			resp.Members = append(resp.Members, ToUserResponse(membership.User))
		}
	}
	return resp
}
