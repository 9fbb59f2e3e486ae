package dto

import "abacus_backend/internal/models"

type ListActivityRequest struct {
	Entity   string `form:"entity"`
	EntityID string `form:"entity_id"`
	UserID   string `form:"user_id"`
	Action   string `form:"action"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=50"`
}

type ActivityResponse struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	User      *UserResponse          `json:"user,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

type ActivityListResponse struct {
	Entries    []ActivityResponse `json:"entries"`
	Pagination Pagination         `json:"pagination"`
}

func ToActivityResponse(entry *models.ActivityLog) ActivityResponse {
	resp := ActivityResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if entry.User != nil {
		user := ToUserResponse(entry.User)
		resp.User = &user
	}
	return resp
}
