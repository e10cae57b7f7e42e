package handler

import (
	"net/http"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartnerHandler struct {
	partnerService service.PartnerService
}

func NewPartnerHandler(partnerService service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *PartnerHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	admin := middleware.RequireRole(model.RoleAdmin)

	partners := router.Group("/partners")
	{
		partners.GET("", staff, h.ListPartners)
		partners.GET("/:id", staff, h.GetPartner)
		partners.POST("", admin, h.CreatePartner)
		partners.PUT("/:id", admin, h.UpdatePartner)
	}
}

// CreatePartner registers a profit-sharing partner
// @Summary      Create partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PartnerRequest  true  "Partner"
// @Success      201      {object}  response.Response{data=model.Partner}
// @Failure      400      {object}  response.Response
// @Router       /partners [post]
func (h *PartnerHandler) CreatePartner(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	partner, err := h.partnerService.CreatePartner(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, partner))
}

// UpdatePartner edits a partner's name, share or active flag
// @Summary      Update partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Partner ID"
// @Param        payload  body      service.PartnerRequest  true  "Partner"
// @Success      200      {object}  response.Response{data=model.Partner}
// @Failure      400      {object}  response.Response
// @Router       /partners/{id} [put]
func (h *PartnerHandler) UpdatePartner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	partner, err := h.partnerService.UpdatePartner(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, partner))
}

// ListPartners lists all partners
// @Summary      List partners
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Partner}
// @Router       /partners [get]
func (h *PartnerHandler) ListPartners(c *gin.Context) {
	partners, err := h.partnerService.ListPartners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, partners))
}

// GetPartner returns one partner
// @Summary      Get partner
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Partner ID"
// @Success      200  {object}  response.Response{data=model.Partner}
// @Failure      404  {object}  response.Response
// @Router       /partners/{id} [get]
func (h *PartnerHandler) GetPartner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	partner, err := h.partnerService.GetPartner(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Partner not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, partner))
}
