package dto

import (
	"time"

	"abacus_backend/internal/models"
)

type CreateTaskRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	BrandID      string              `json:"brand_id" binding:"required"`
	CalendarID   *string             `json:"calendar_id"`
	ContentType  *models.ContentType `json:"content_type"`
	Priority     models.TaskPriority `json:"priority"`
	PostingDate  *time.Time          `json:"posting_date"`
	DueDate      *time.Time          `json:"due_date"`
	AssignedToID *string             `json:"assigned_to_id"`
}

type UpdateTaskRequest struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Status       *models.TaskStatus   `json:"status"`
	Priority     *models.TaskPriority `json:"priority"`
	ContentType  *models.ContentType  `json:"content_type"`
	PostingDate  *time.Time           `json:"posting_date"`
	DueDate      *time.Time           `json:"due_date"`
	AssignedToID *string              `json:"assigned_to_id"`
}

type ListTasksRequest struct {
	Status       models.TaskStatus   `form:"status"`
	Priority     models.TaskPriority `form:"priority"`
	ContentType  models.ContentType  `form:"content_type"`
	BrandID      string              `form:"brand_id"`
	CalendarID   string              `form:"calendar_id"`
	AssignedToID string              `form:"assigned_to_id"`
	Page         int                 `form:"page,default=1"`
	PageSize     int                 `form:"page_size,default=20"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CreateAttachmentRequest struct {
	Description string `form:"description"`
}

type TaskResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    models.TaskPriority  `json:"priority"`
	BrandID     string               `json:"brand_id"`
	BrandName   string               `json:"brand_name,omitempty"`
	CalendarID  *string              `json:"calendar_id,omitempty"`
	ContentType *models.ContentType  `json:"content_type,omitempty"`
	PostingDate *time.Time           `json:"posting_date,omitempty"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	AssignedTo  *UserResponse        `json:"assigned_to,omitempty"`
	CreatedBy   *UserResponse        `json:"created_by,omitempty"`
	Comments    []CommentResponse    `json:"comments,omitempty"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

type CommentResponse struct {
	ID        string        `json:"id"`
	TaskID    string        `json:"task_id"`
	Content   string        `json:"content"`
	Author    *UserResponse `json:"author,omitempty"`
	CreatedAt string        `json:"created_at"`
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func ToTaskResponse(task *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		BrandID:     task.BrandID,
		CalendarID:  task.CalendarID,
		ContentType: task.ContentType,
		PostingDate: task.PostingDate,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if task.Brand != nil {
		resp.BrandName = task.Brand.Name
	}
	if task.AssignedTo != nil {
		assignee := ToUserResponse(task.AssignedTo)
		resp.AssignedTo = &assignee
	}
	if task.CreatedBy != nil {
		creator := ToUserResponse(task.CreatedBy)
		resp.CreatedBy = &creator
	}
	for i := range task.Comments {
		resp.Comments = append(resp.Comments, ToCommentResponse(&task.Comments[i]))
	}
	for i := range task.Attachments {
		resp.Attachments = append(resp.Attachments, ToAttachmentResponse(&task.Attachments[i]))
	}
	return resp
}

func ToCommentResponse(comment *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if comment.Author != nil {
		author := ToUserResponse(comment.Author)
		resp.Author = &author
	}
	return resp
}

func ToAttachmentResponse(attachment *models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          attachment.ID,
		TaskID:      attachment.TaskID,
		FileName:    attachment.FileName,
		FileURL:     attachment.FileURL,
		FileType:    attachment.FileType,
		FileSize:    attachment.FileSize,
		Description: attachment.Description,
		CreatedAt:   attachment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
