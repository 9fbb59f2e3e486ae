package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/services"
	"abacus_backend/internal/services/dto"
)

type BrandHandler struct {
	*BaseHandler
	brandService    services.BrandService
	calendarService services.CalendarService
}

func NewBrandHandler(base *BaseHandler, brandService services.BrandService, calendarService services.CalendarService) *BrandHandler {
	return &BrandHandler{
		BaseHandler:     base,
		brandService:    brandService,
		calendarService: calendarService,
	}
}

func (h *BrandHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	brands := r.Group("/brands")
	brands.Use(authMW)
	{
		brands.POST("", h.Create)
		brands.GET("", h.List)
		brands.GET("/:brandId", h.Get)
		brands.PUT("/:brandId", h.Update)
		brands.DELETE("/:brandId", h.Delete)
		brands.POST("/:brandId/members", h.AddMember)
		brands.DELETE("/:brandId/members/:userId", h.RemoveMember)
		brands.GET("/:brandId/calendars", h.ListCalendars)
	}
}

func (h *BrandHandler) Create(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateBrandRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.brandService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BrandHandler) List(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ListBrandsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp, err := h.brandService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BrandHandler) Get(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.brandService.Get(c.Request.Context(), actor, c.Param("brandId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BrandHandler) Update(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateBrandRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.brandService.Update(c.Request.Context(), actor, c.Param("brandId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BrandHandler) Delete(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.brandService.Delete(c.Request.Context(), actor, c.Param("brandId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted"})
}

func (h *BrandHandler) AddMember(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.AddBrandMemberRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.brandService.AddMember(c.Request.Context(), actor, c.Param("brandId"), req.UserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Member added"})
}

func (h *BrandHandler) RemoveMember(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.brandService.RemoveMember(c.Request.Context(), actor, c.Param("brandId"), c.Param("userId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func (h *BrandHandler) ListCalendars(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	resp, err := h.calendarService.ListByBrand(c.Request.Context(), actor, c.Param("brandId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendars": resp})
}
