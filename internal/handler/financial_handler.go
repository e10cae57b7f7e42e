package handler

import (
	"net/http"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/pagination"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
)

type FinancialHandler struct {
	stateService service.FinancialStateService
}

func NewFinancialHandler(stateService service.FinancialStateService) *FinancialHandler {
	return &FinancialHandler{stateService: stateService}
}

type transitionRequest struct {
	State string `json:"state" binding:"required"`
}

type syncRequest struct {
	AllowDowngrade bool `json:"allow_downgrade"`
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *FinancialHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

	statuses := router.Group("/financial-statuses")
	{
		statuses.GET("", staff, h.ListStatuses)
		statuses.GET("/:id", staff, h.GetStatus)
		statuses.POST("/:id/transition", staff, h.Transition)
		statuses.POST("/:id/sync", staff, h.Sync)
	}
}

// ListStatuses lists financial statuses, optionally filtered by state
// @Summary      List financial statuses
// @Tags         financial
// @Produce      json
// @Security     BearerAuth
// @Param        state  query     string  false  "Filter by state"
// @Param        page   query     int     false  "Page"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.FinancialStatusResponse}
// @Router       /financial-statuses [get]
func (h *FinancialHandler) ListStatuses(c *gin.Context) {
	params := pagination.Parse(c)
	statuses, total, err := h.stateService.ListStatuses(c.Request.Context(), c.Query("state"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, statuses, total, params.Page, params.Limit))
}

// GetStatus returns one financial status with its order loaded
// @Summary      Get financial status
// @Tags         financial
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Financial status ID"
// @Success      200  {object}  response.Response{data=model.FinancialStatus}
// @Failure      404  {object}  response.Response
// @Router       /financial-statuses/{id} [get]
func (h *FinancialHandler) GetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	status, err := h.stateService.GetStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Financial status not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// Transition requests an explicit state change
// @Summary      Transition financial state
// @Tags         financial
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Financial status ID"
// @Param        payload  body      transitionRequest   true  "Target state"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      422      {object}  response.Response
// @Router       /financial-statuses/{id}/transition [post]
func (h *FinancialHandler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stateService.Transition(c.Request.Context(), id, req.State)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if !result.OK {
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, result.Message))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Sync re-derives the financial state from the order's operational status
// @Summary      Sync financial state
// @Tags         financial
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string       true   "Financial status ID"
// @Param        payload  body      syncRequest  false  "Sync options"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      422      {object}  response.Response
// @Router       /financial-statuses/{id}/sync [post]
func (h *FinancialHandler) Sync(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req syncRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.stateService.SyncFromOperational(c.Request.Context(), id, req.AllowDowngrade)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if !result.OK {
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, result.Message))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
