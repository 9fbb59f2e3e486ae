package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

// Spacing between consecutive posts of one content type, and the lead time
// the team gets before each posting date.
const (
	postingIntervalDays = 3
	dueDateLeadDays     = 2
)

type CalendarService interface {
	// Create has ensure semantics: when a calendar already exists for the
	// (brand, month, year) key it is returned instead of erroring, with
	// any provided scopes applied to it.
	Create(ctx context.Context, actor auth.Actor, req dto.CreateCalendarRequest) (*dto.CalendarResponse, error)
	Get(ctx context.Context, actor auth.Actor, calendarID string) (*dto.CalendarResponse, error)
	List(ctx context.Context, actor auth.Actor, req dto.ListCalendarsRequest) ([]dto.CalendarResponse, error)
	ListByBrand(ctx context.Context, actor auth.Actor, brandID string) ([]dto.CalendarResponse, error)
	Update(ctx context.Context, actor auth.Actor, calendarID string, req dto.UpdateCalendarRequest) (*dto.CalendarResponse, error)
	Delete(ctx context.Context, actor auth.Actor, calendarID string) error
	UpsertScope(ctx context.Context, actor auth.Actor, calendarID string, req dto.UpsertScopeRequest) (*dto.ScopeResponse, error)
	DeleteScope(ctx context.Context, actor auth.Actor, calendarID, scopeID string) error
	GenerateTasks(ctx context.Context, actor auth.Actor, calendarID string, req dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error)
}

type calendarService struct {
	calendarRepo repositories.CalendarRepository
	brandRepo    repositories.BrandRepository
	taskRepo     repositories.TaskRepository
	activitySvc  ActivityService
}

func NewCalendarService(
	calendarRepo repositories.CalendarRepository,
	brandRepo repositories.BrandRepository,
	taskRepo repositories.TaskRepository,
	activitySvc ActivityService,
) CalendarService {
	return &calendarService{
		calendarRepo: calendarRepo,
		brandRepo:    brandRepo,
		taskRepo:     taskRepo,
		activitySvc:  activitySvc,
	}
}

func (s *calendarService) Create(ctx context.Context, actor auth.Actor, req dto.CreateCalendarRequest) (*dto.CalendarResponse, error) {
	if !actor.CanManageCalendars() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	if _, err := s.brandRepo.FindByID(req.BrandID); err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return nil, apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return nil, apperrors.InternalError(err)
	}
	for _, item := range req.Scopes {
		if !models.ValidContentType(item.ContentType) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid content type: %s", item.ContentType))
		}
	}

	calendar, err := s.calendarRepo.FindByBrandMonthYear(req.BrandID, req.Month, req.Year)
	switch {
	case err == nil:
		// Existing month: ensure semantics, apply scopes only.
	case errors.Is(err, repositories.ErrCalendarNotFound):
		calendar = &models.Calendar{
			BrandID:     req.BrandID,
			Month:       req.Month,
			Year:        req.Year,
			Status:      models.CalendarStatusDraft,
			CreatedByID: actor.UserID,
		}
		if err := s.calendarRepo.Create(calendar); err != nil {
			// Lost the race against a concurrent create of the same month.
			if errors.Is(err, repositories.ErrCalendarExists) {
				return nil, apperrors.NewConflictError("calendar", "Calendar already exists for this brand and month")
			}
			return nil, apperrors.InternalError(err)
		}
		if err := s.activitySvc.Record(ctx, actor, "CREATE", "Calendar", calendar.ID, map[string]interface{}{
			"brand_id": req.BrandID,
			"month":    req.Month,
			"year":     req.Year,
		}); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.InternalError(err)
	}

	for _, item := range req.Scopes {
		if _, err := s.calendarRepo.UpsertScope(calendar.ID, item.ContentType, item.Quantity); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return s.reload(calendar.ID)
}

// Get includes the calendar's tasks in posting order; the other operations
// return the calendar without them.
func (s *calendarService) Get(ctx context.Context, actor auth.Actor, calendarID string) (*dto.CalendarResponse, error) {
	resp, err := s.reload(calendarID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.TasksForCalendar(calendarID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, dto.ToTaskResponse(&tasks[i]))
	}
	return resp, nil
}

func (s *calendarService) List(ctx context.Context, actor auth.Actor, req dto.ListCalendarsRequest) ([]dto.CalendarResponse, error) {
	calendars, err := s.calendarRepo.FindWithFilter(repositories.CalendarFilter{
		BrandID: req.BrandID,
		Year:    req.Year,
		Month:   req.Month,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.toListResponse(calendars)
}

func (s *calendarService) ListByBrand(ctx context.Context, actor auth.Actor, brandID string) ([]dto.CalendarResponse, error) {
	calendars, err := s.calendarRepo.FindByBrand(brandID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.toListResponse(calendars)
}

func (s *calendarService) toListResponse(calendars []models.Calendar) ([]dto.CalendarResponse, error) {
	resp := []dto.CalendarResponse{}
	for i := range calendars {
		item := dto.ToCalendarResponse(&calendars[i])
		count, err := s.taskRepo.CountByCalendar(calendars[i].ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		item.TaskCount = count
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *calendarService) Update(ctx context.Context, actor auth.Actor, calendarID string, req dto.UpdateCalendarRequest) (*dto.CalendarResponse, error) {
	if !actor.CanManageCalendars() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, repositories.ErrCalendarNotFound) {
			return nil, apperrors.NewNotFoundError("calendar", "Calendar not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Status != nil {
		calendar.Status = *req.Status
	}
	if err := s.calendarRepo.Update(calendar); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "UPDATE", "Calendar", calendar.ID, nil); err != nil {
		return nil, err
	}

	return s.reload(calendar.ID)
}

func (s *calendarService) Delete(ctx context.Context, actor auth.Actor, calendarID string) error {
	if !actor.CanDeleteCalendars() {
		return apperrors.NewForbiddenError("Access denied")
	}

	if err := s.calendarRepo.Delete(calendarID); err != nil {
		if errors.Is(err, repositories.ErrCalendarNotFound) {
			return apperrors.NewNotFoundError("calendar", "Calendar not found")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DELETE", "Calendar", calendarID, nil)
}

func (s *calendarService) UpsertScope(ctx context.Context, actor auth.Actor, calendarID string, req dto.UpsertScopeRequest) (*dto.ScopeResponse, error) {
	if !actor.CanManageCalendars() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}
	if !models.ValidContentType(req.ContentType) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid content type: %s", req.ContentType))
	}

	if _, err := s.calendarRepo.FindByID(calendarID); err != nil {
		if errors.Is(err, repositories.ErrCalendarNotFound) {
			return nil, apperrors.NewNotFoundError("calendar", "Calendar not found")
		}
		return nil, apperrors.InternalError(err)
	}

	scope, err := s.calendarRepo.UpsertScope(calendarID, req.ContentType, req.Quantity)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.ToScopeResponse(scope)
	return &resp, nil
}

func (s *calendarService) DeleteScope(ctx context.Context, actor auth.Actor, calendarID, scopeID string) error {
	if !actor.CanManageCalendars() {
		return apperrors.NewForbiddenError("Access denied")
	}

	if err := s.calendarRepo.DeleteScope(calendarID, scopeID); err != nil {
		if errors.Is(err, repositories.ErrScopeNotFound) {
			return apperrors.NewNotFoundError("calendar", "Scope not found")
		}
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DELETE", "CalendarScope", scopeID, map[string]interface{}{
		"calendar_id": calendarID,
	})
}

// GenerateTasks expands scope quantities into draft tasks. Each content type
// starts at the base date and advances three days per task; the due date
// sits two days before each posting date. Generation is additive: running
// it twice doubles the tasks, it never reconciles against existing ones.
func (s *calendarService) GenerateTasks(ctx context.Context, actor auth.Actor, calendarID string, req dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error) {
	if !actor.CanManageCalendars() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, repositories.ErrCalendarNotFound) {
			return nil, apperrors.NewNotFoundError("calendar", "Calendar not found")
		}
		return nil, apperrors.InternalError(err)
	}

	brand, err := s.brandRepo.FindByID(calendar.BrandID)
	if err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return nil, apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return nil, apperrors.InternalError(err)
	}

	for _, item := range req.Scopes {
		if !models.ValidContentType(item.ContentType) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid content type: %s", item.ContentType))
		}
		if item.StartDate != "" {
			if _, err := time.Parse("2006-01-02", item.StartDate); err != nil {
				return nil, apperrors.NewBadRequestError("Invalid start date")
			}
		}
	}

	monthStart := time.Date(calendar.Year, time.Month(calendar.Month), 1, 0, 0, 0, 0, time.UTC)

	var tasks []models.Task
	for _, item := range req.Scopes {
		if _, err := s.calendarRepo.UpsertScope(calendar.ID, item.ContentType, item.Quantity); err != nil {
			return nil, apperrors.InternalError(err)
		}

		// Each scope item schedules from its own start date.
		baseDate := monthStart
		if item.StartDate != "" {
			baseDate, _ = time.Parse("2006-01-02", item.StartDate)
		}

		label := humanizeContentType(item.ContentType)
		for i := 0; i < item.Quantity; i++ {
			postingDate := baseDate.AddDate(0, 0, i*postingIntervalDays)
			dueDate := postingDate.AddDate(0, 0, -dueDateLeadDays)
			contentType := item.ContentType

			tasks = append(tasks, models.Task{
				Title:       fmt.Sprintf("%s #%d", label, i+1),
				Description: fmt.Sprintf("Create %s for %s", strings.ToLower(label), brand.Name),
				Status:      models.TaskStatusTodo,
				Priority:    models.TaskPriorityMedium,
				BrandID:     calendar.BrandID,
				CalendarID:  &calendar.ID,
				ContentType: &contentType,
				PostingDate: &postingDate,
				DueDate:     &dueDate,
				CreatedByID: actor.UserID,
			})
		}
	}

	if err := s.taskRepo.CreateBatch(tasks); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// One audit row per generation run, not one per task.
	scopesMeta := make([]map[string]interface{}, 0, len(req.Scopes))
	for _, item := range req.Scopes {
		scopesMeta = append(scopesMeta, map[string]interface{}{
			"content_type": string(item.ContentType),
			"quantity":     item.Quantity,
		})
	}
	if err := s.activitySvc.Record(ctx, actor, "GENERATE", "CalendarTasks", calendar.ID, map[string]interface{}{
		"count":  len(tasks),
		"scopes": scopesMeta,
	}); err != nil {
		return nil, err
	}

	calendarResp, err := s.reload(calendar.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerateTasksResponse{
		Calendar: *calendarResp,
		Tasks:    []dto.TaskResponse{},
		Count:    len(tasks),
	}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, dto.ToTaskResponse(&tasks[i]))
	}
	return resp, nil
}

func (s *calendarService) reload(calendarID string) (*dto.CalendarResponse, error) {
	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, repositories.ErrCalendarNotFound) {
			return nil, apperrors.NewNotFoundError("calendar", "Calendar not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToCalendarResponse(calendar)

	count, err := s.taskRepo.CountByCalendar(calendarID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.TaskCount = count

	progress, err := s.taskRepo.ProgressByContentType(calendarID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for _, row := range progress {
		resp.Progress = append(resp.Progress, dto.ProgressItem{
			ContentType: row.ContentType,
			Total:       row.Total,
			Completed:   row.Completed,
		})
	}
	return &resp, nil
}

// humanizeContentType replaces only the first underscore, so BLOG_POST
// becomes "BLOG POST" while hypothetical longer names keep their tail.
func humanizeContentType(ct models.ContentType) string {
	return strings.Replace(string(ct), "_", " ", 1)
}
