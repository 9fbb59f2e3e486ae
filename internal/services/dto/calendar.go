package dto

import "abacus_backend/internal/models"

type ListCalendarsRequest struct {
	BrandID string `form:"brand_id"`
	Year    int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Month   int    `form:"month" binding:"omitempty,min=1,max=12"`
}

// ScopeItem carries one content type's quantity. StartDate, when given, must
// be in 2006-01-02 form and overrides the first day of the calendar month for
// that content type's generated tasks.
type ScopeItem struct {
	ContentType models.ContentType `json:"content_type" binding:"required"`
	Quantity    int                `json:"quantity" binding:"required,min=1"`
	StartDate   string             `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
}

type CreateCalendarRequest struct {
	BrandID string      `json:"brand_id" binding:"required"`
	Month   int         `json:"month" binding:"required,min=1,max=12"`
	Year    int         `json:"year" binding:"required,min=2000,max=2100"`
	Scopes  []ScopeItem `json:"scopes" binding:"omitempty,dive"`
}

type UpdateCalendarRequest struct {
	Status *models.CalendarStatus `json:"status"`
}

type UpsertScopeRequest struct {
	ContentType models.ContentType `json:"content_type" binding:"required"`
	Quantity    int                `json:"quantity" binding:"required,min=1"`
}

type GenerateTasksRequest struct {
	Scopes []ScopeItem `json:"scopes" binding:"required,min=1,dive"`
}

type ScopeResponse struct {
	ID          string             `json:"id"`
	ContentType models.ContentType `json:"content_type"`
	Quantity    int                `json:"quantity"`
	Completed   int                `json:"completed"`
}

// ProgressItem is the derived completion view for one content type. Totals
// come from counting tasks, not from the stored scope row.
type ProgressItem struct {
	ContentType models.ContentType `json:"content_type"`
	Total       int64              `json:"total"`
	Completed   int64              `json:"completed"`
}

type CalendarResponse struct {
	ID        string                `json:"id"`
	BrandID   string                `json:"brand_id"`
	BrandName string                `json:"brand_name,omitempty"`
	Month     int                   `json:"month"`
	Year      int                   `json:"year"`
	Status    models.CalendarStatus `json:"status"`
	Scopes    []ScopeResponse       `json:"scopes"`
	TaskCount int64                 `json:"task_count"`
	Progress  []ProgressItem        `json:"progress,omitempty"`
	Tasks     []TaskResponse        `json:"tasks,omitempty"`
	CreatedAt string                `json:"created_at"`
}

type GenerateTasksResponse struct {
	Calendar CalendarResponse `json:"calendar"`
	Tasks    []TaskResponse   `json:"tasks"`
	Count    int              `json:"count"`
}

func ToScopeResponse(scope *models.CalendarScope) ScopeResponse {
	return ScopeResponse{
		ID:          scope.ID,
		ContentType: scope.ContentType,
		Quantity:    scope.Quantity,
		Completed:   scope.Completed,
	}
}

func ToCalendarResponse(calendar *models.Calendar) CalendarResponse {
	resp := CalendarResponse{
		ID:        calendar.ID,
		BrandID:   calendar.BrandID,
		Month:     calendar.Month,
		Year:      calendar.Year,
		Status:    calendar.Status,
		Scopes:    []ScopeResponse{},
		CreatedAt: calendar.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if calendar.Brand != nil {
		resp.BrandName = calendar.Brand.Name
	}
	for i := range calendar.Scopes {
		resp.Scopes = append(resp.Scopes, ToScopeResponse(&calendar.Scopes[i]))
	}
	return resp
}
