package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/services"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

type TaskHandler struct {
	*BaseHandler
	taskService   services.TaskService
	maxUploadSize int64
	allowedTypes  map[string]bool
}

func NewTaskHandler(base *BaseHandler, taskService services.TaskService, maxUploadSize int64, allowedTypes []string) *TaskHandler {
	typeSet := make(map[string]bool)
	for _, t := range allowedTypes {
		typeSet[t] = true
	}
	return &TaskHandler{
		BaseHandler:   base,
		taskService:   taskService,
		maxUploadSize: maxUploadSize,
		allowedTypes:  typeSet,
	}
}

func (h *TaskHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	tasks := r.Group("/tasks")
	tasks.Use(authMW)
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.GET("/:taskId", h.Get)
		tasks.PUT("/:taskId", h.Update)
		tasks.DELETE("/:taskId", h.Delete)

		tasks.POST("/:taskId/comments", h.AddComment)
		tasks.GET("/:taskId/comments", h.ListComments)

		tasks.POST("/:taskId/attachments", h.AddAttachment)
		tasks.GET("/:taskId/attachments", h.ListAttachments)
		tasks.DELETE("/:taskId/attachments/:attachmentId", h.DeleteAttachment)
	}
}

func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.taskService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ListTasksRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp, err := h.taskService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.taskService.Get(c.Request.Context(), actor, c.Param("taskId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.taskService.Update(c.Request.Context(), actor, c.Param("taskId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, c.Param("taskId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.taskService.AddComment(c.Request.Context(), actor, c.Param("taskId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) ListComments(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.taskService.ListComments(c.Request.Context(), actor, c.Param("taskId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": resp})
}

// AddAttachment expects multipart form data with a "file" part and an
// optional "description" field.
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing file"))
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		apperrors.HandleError(c, apperrors.NewBadRequestError(
			fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadSize)))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if len(h.allowedTypes) > 0 && !h.allowedTypes[contentType] {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File type is not allowed: "+contentType))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	resp, svcErr := h.taskService.AddAttachment(c.Request.Context(), actor, c.Param("taskId"), services.AttachmentUpload{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Reader:      file,
		Description: c.PostForm("description"),
	})
	if svcErr != nil {
		h.HandleServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) ListAttachments(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.taskService.ListAttachments(c.Request.Context(), actor, c.Param("taskId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": resp})
}

func (h *TaskHandler) DeleteAttachment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	err := h.taskService.DeleteAttachment(c.Request.Context(), actor, c.Param("taskId"), c.Param("attachmentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}
