package dto

import "abacus_backend/internal/models"

type CreateUserRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=6"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name" binding:"required"`
	Role      models.UserRole `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsActive  *bool   `json:"is_active"`
}

type ChangeRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

type ListUsersRequest struct {
	Role     models.UserRole `form:"role"`
	IsActive *bool           `form:"is_active"`
	Search   string          `form:"search"`
	Page     int             `form:"page,default=1"`
	PageSize int             `form:"page_size,default=20"`
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}
