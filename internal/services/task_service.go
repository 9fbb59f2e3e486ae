package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/internal/storage"
	"abacus_backend/pkg/apperrors"
)

// AttachmentUpload carries an incoming file from the HTTP layer.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
	Description string
}

type TaskService interface {
	Create(ctx context.Context, actor auth.Actor, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Get(ctx context.Context, actor auth.Actor, taskID string) (*dto.TaskResponse, error)
	List(ctx context.Context, actor auth.Actor, req dto.ListTasksRequest) (*dto.TaskListResponse, error)
	Update(ctx context.Context, actor auth.Actor, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, actor auth.Actor, taskID string) error

	AddComment(ctx context.Context, actor auth.Actor, taskID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, actor auth.Actor, taskID string) ([]dto.CommentResponse, error)

	AddAttachment(ctx context.Context, actor auth.Actor, taskID string, upload AttachmentUpload) (*dto.AttachmentResponse, error)
	ListAttachments(ctx context.Context, actor auth.Actor, taskID string) ([]dto.AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, actor auth.Actor, taskID, attachmentID string) error
}

type taskService struct {
	taskRepo        repositories.TaskRepository
	brandRepo       repositories.BrandRepository
	userRepo        repositories.UserRepository
	notificationSvc NotificationService
	activitySvc     ActivityService
	files           storage.Storage
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	brandRepo repositories.BrandRepository,
	userRepo repositories.UserRepository,
	notificationSvc NotificationService,
	activitySvc ActivityService,
	files storage.Storage,
) TaskService {
	return &taskService{
		taskRepo:        taskRepo,
		brandRepo:       brandRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		activitySvc:     activitySvc,
		files:           files,
	}
}

func (s *taskService) Create(ctx context.Context, actor auth.Actor, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if _, err := s.brandRepo.FindByID(req.BrandID); err != nil {
		if errors.Is(err, repositories.ErrBrandNotFound) {
			return nil, apperrors.NewNotFoundError("brand", "Brand not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if req.AssignedToID != nil {
		if _, err := s.userRepo.FindByID(*req.AssignedToID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.NewNotFoundError("user", "Assignee not found")
			}
			return nil, apperrors.InternalError(err)
		}
	}
	if req.ContentType != nil && !models.ValidContentType(*req.ContentType) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid content type: %s", *req.ContentType))
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.TaskStatusTodo,
		Priority:     priority,
		BrandID:      req.BrandID,
		CalendarID:   req.CalendarID,
		ContentType:  req.ContentType,
		PostingDate:  req.PostingDate,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
		CreatedByID:  actor.UserID,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "CREATE", "Task", task.ID, map[string]interface{}{"title": task.Title}); err != nil {
		return nil, err
	}

	if err := s.notifyTaskParties(ctx, actor, task, "New Task",
		fmt.Sprintf("Task \"%s\" has been created", task.Title)); err != nil {
		return nil, err
	}

	return s.reload(task.ID)
}

func (s *taskService) Get(ctx context.Context, actor auth.Actor, taskID string) (*dto.TaskResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToTaskResponse(task)
	return &resp, nil
}

// List applies the actor row filter for everyone who is not an admin: a
// task is visible when assigned to the actor, created by the actor, or
// belonging to a brand the actor is a member of. Explicit query filters
// are ANDed on top.
func (s *taskService) List(ctx context.Context, actor auth.Actor, req dto.ListTasksRequest) (*dto.TaskListResponse, error) {
	criteria := repositories.TaskFilter{
		Status:       req.Status,
		Priority:     req.Priority,
		ContentType:  req.ContentType,
		BrandID:      req.BrandID,
		CalendarID:   req.CalendarID,
		AssignedToID: req.AssignedToID,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if !actor.IsAdmin() {
		criteria.RestrictToUser = actor.UserID
	}

	tasks, total, err := s.taskRepo.FindWithFilter(criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.TaskListResponse{
		Tasks: []dto.TaskResponse{},
		Pagination: dto.Pagination{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, dto.ToTaskResponse(&tasks[i]))
	}
	return resp, nil
}

func (s *taskService) Update(ctx context.Context, actor auth.Actor, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.ContentType != nil {
		if !models.ValidContentType(*req.ContentType) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid content type: %s", *req.ContentType))
		}
		task.ContentType = req.ContentType
	}
	if req.PostingDate != nil {
		task.PostingDate = req.PostingDate
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssignedToID != nil {
		if *req.AssignedToID != "" {
			if _, err := s.userRepo.FindByID(*req.AssignedToID); err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return nil, apperrors.NewNotFoundError("user", "Assignee not found")
				}
				return nil, apperrors.InternalError(err)
			}
			task.AssignedToID = req.AssignedToID
		} else {
			task.AssignedToID = nil
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "UPDATE", "Task", task.ID, nil); err != nil {
		return nil, err
	}

	if err := s.notifyTaskParties(ctx, actor, task, "Task Updated",
		fmt.Sprintf("Task \"%s\" has been updated", task.Title)); err != nil {
		return nil, err
	}

	return s.reload(task.ID)
}

func (s *taskService) Delete(ctx context.Context, actor auth.Actor, taskID string) error {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DELETE", "Task", task.ID, map[string]interface{}{"title": task.Title})
}

func (s *taskService) AddComment(ctx context.Context, actor auth.Actor, taskID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:   task.ID,
		AuthorID: actor.UserID,
		Content:  req.Content,
	}
	if err := s.taskRepo.CreateComment(comment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "COMMENT", "Task", task.ID, nil); err != nil {
		return nil, err
	}

	if err := s.notifyTaskParties(ctx, actor, task, "New Comment",
		fmt.Sprintf("New comment on task \"%s\"", task.Title)); err != nil {
		return nil, err
	}
	for _, recipientID := range s.taskRecipients(actor, task) {
		s.notificationSvc.PublishToUser(ctx, recipientID, "new-comment", dto.ToCommentResponse(comment))
	}

	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}

func (s *taskService) ListComments(ctx context.Context, actor auth.Actor, taskID string) ([]dto.CommentResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.taskRepo.CommentsForTask(task.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := []dto.CommentResponse{}
	for i := range comments {
		resp = append(resp, dto.ToCommentResponse(&comments[i]))
	}
	return resp, nil
}

func (s *taskService) ListAttachments(ctx context.Context, actor auth.Actor, taskID string) ([]dto.AttachmentResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}

	resp := []dto.AttachmentResponse{}
	for i := range task.Attachments {
		resp = append(resp, dto.ToAttachmentResponse(&task.Attachments[i]))
	}
	return resp, nil
}

func (s *taskService) AddAttachment(ctx context.Context, actor auth.Actor, taskID string, upload AttachmentUpload) (*dto.AttachmentResponse, error) {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("tasks/%s/%s%s", task.ID, uuid.NewString(), filepath.Ext(upload.FileName))
	if err := s.files.Save(ctx, path, upload.Reader, upload.ContentType); err != nil {
		return nil, apperrors.InternalError(err)
	}
	fileURL, err := s.files.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	attachment := &models.Attachment{
		TaskID:      task.ID,
		FileName:    upload.FileName,
		FileURL:     fileURL,
		FileType:    upload.ContentType,
		FileSize:    upload.Size,
		Description: upload.Description,
	}
	if err := s.taskRepo.CreateAttachment(attachment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.activitySvc.Record(ctx, actor, "ATTACH", "Task", task.ID, map[string]interface{}{
		"file_name": upload.FileName,
	}); err != nil {
		return nil, err
	}

	if err := s.notifyTaskParties(ctx, actor, task, "New Attachment",
		fmt.Sprintf("New file on task \"%s\": %s", task.Title, upload.FileName)); err != nil {
		return nil, err
	}
	for _, recipientID := range s.taskRecipients(actor, task) {
		s.notificationSvc.PublishToUser(ctx, recipientID, "new-attachment", dto.ToAttachmentResponse(attachment))
	}

	resp := dto.ToAttachmentResponse(attachment)
	return &resp, nil
}

func (s *taskService) DeleteAttachment(ctx context.Context, actor auth.Actor, taskID, attachmentID string) error {
	task, err := s.loadVisible(actor, taskID)
	if err != nil {
		return err
	}

	attachment, err := s.taskRepo.FindAttachment(attachmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrAttachmentNotFound) {
			return apperrors.NewNotFoundError("attachment", "Attachment not found")
		}
		return apperrors.InternalError(err)
	}
	if attachment.TaskID != task.ID {
		return apperrors.NewNotFoundError("attachment", "Attachment not found")
	}

	if err := s.taskRepo.DeleteAttachment(attachmentID); err != nil {
		return apperrors.InternalError(err)
	}

	return s.activitySvc.Record(ctx, actor, "DETACH", "Task", task.ID, map[string]interface{}{
		"file_name": attachment.FileName,
	})
}

// loadVisible fetches a task and hides it behind a not-found when the actor
// has no line of sight to it.
func (s *taskService) loadVisible(actor auth.Actor, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "Task not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if actor.IsAdmin() {
		return task, nil
	}
	if task.CreatedByID == actor.UserID {
		return task, nil
	}
	if task.AssignedToID != nil && *task.AssignedToID == actor.UserID {
		return task, nil
	}
	member, err := s.brandRepo.IsMember(task.BrandID, actor.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if member {
		return task, nil
	}
	return nil, apperrors.NewNotFoundError("task", "Task not found")
}

// taskRecipients is the fan-out set: assignee and creator, minus the actor
// and any unset side.
func (s *taskService) taskRecipients(actor auth.Actor, task *models.Task) []string {
	seen := make(map[string]bool)
	var recipients []string
	add := func(id string) {
		if id == "" || id == actor.UserID || seen[id] {
			return
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	if task.AssignedToID != nil {
		add(*task.AssignedToID)
	}
	add(task.CreatedByID)
	return recipients
}

func (s *taskService) notifyTaskParties(ctx context.Context, actor auth.Actor, task *models.Task, title, message string) error {
	return s.notificationSvc.Notify(ctx, actor, s.taskRecipients(actor, task), title, message)
}

func (s *taskService) reload(taskID string) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToTaskResponse(task)
	return &resp, nil
}
