package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/services"
	"abacus_backend/internal/services/dto"
)

type CalendarHandler struct {
	*BaseHandler
	calendarService services.CalendarService
}

func NewCalendarHandler(base *BaseHandler, calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler:     base,
		calendarService: calendarService,
	}
}

func (h *CalendarHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	calendars := r.Group("/calendars")
	calendars.Use(authMW)
	{
		calendars.POST("", h.Create)
		calendars.GET("", h.List)
		calendars.GET("/:calendarId", h.Get)
		calendars.PUT("/:calendarId", h.Update)
		calendars.DELETE("/:calendarId", h.Delete)
		calendars.PUT("/:calendarId/scopes", h.UpsertScope)
		calendars.DELETE("/:calendarId/scopes/:scopeId", h.DeleteScope)
		calendars.POST("/:calendarId/generate-tasks", h.GenerateTasks)
	}
}

func (h *CalendarHandler) Create(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCalendarRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.calendarService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CalendarHandler) List(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ListCalendarsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp, err := h.calendarService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendars": resp})
}

func (h *CalendarHandler) Get(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.calendarService.Get(c.Request.Context(), actor, c.Param("calendarId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalendarHandler) Update(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCalendarRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.calendarService.Update(c.Request.Context(), actor, c.Param("calendarId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalendarHandler) Delete(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.calendarService.Delete(c.Request.Context(), actor, c.Param("calendarId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Calendar deleted"})
}

func (h *CalendarHandler) UpsertScope(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpsertScopeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.calendarService.UpsertScope(c.Request.Context(), actor, c.Param("calendarId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalendarHandler) DeleteScope(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	err := h.calendarService.DeleteScope(c.Request.Context(), actor, c.Param("calendarId"), c.Param("scopeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scope deleted"})
}

func (h *CalendarHandler) GenerateTasks(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.calendarService.GenerateTasks(c.Request.Context(), actor, c.Param("calendarId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
