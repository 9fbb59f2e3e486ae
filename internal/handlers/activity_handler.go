package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/middleware"
	"abacus_backend/internal/models"
	"abacus_backend/internal/services"
	"abacus_backend/internal/services/dto"
)

type ActivityHandler struct {
	*BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(base *BaseHandler, activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     base,
		activityService: activityService,
	}
}

func (h *ActivityHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	activity := r.Group("/activity")
	activity.Use(authMW, middleware.RequireRoles(models.UserRoleSuperAdmin, models.UserRoleAdmin))
	{
		activity.GET("", h.List)
		activity.GET("/:activityId", h.Get)
	}
}

func (h *ActivityHandler) Get(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.activityService.Get(c.Request.Context(), actor, c.Param("activityId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ListActivityRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp, err := h.activityService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
