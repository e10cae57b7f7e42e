package handler

import (
	"net/http"
	"strconv"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/pagination"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WeekHandler struct {
	overheadService service.OverheadService
	closingService  service.ClosingService
}

func NewWeekHandler(overheadService service.OverheadService, closingService service.ClosingService) *WeekHandler {
	return &WeekHandler{overheadService: overheadService, closingService: closingService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *WeekHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	admin := middleware.RequireRole(model.RoleAdmin)

	weeks := router.Group("/weeks")
	{
		weeks.GET("/current", staff, h.CurrentWeek)
		weeks.GET("/:year/:week/preview", staff, h.Preview)
		weeks.POST("/:year/:week/close", admin, h.CloseWeek)
		weeks.GET("", staff, h.ListClosed)
		weeks.GET("/savings-total", staff, h.SavingsTotal)
	}

	distributions := router.Group("/distributions")
	{
		distributions.GET("/week/:id", staff, h.WeekDistributions)
		distributions.POST("/:id/pay", admin, h.PayDistribution)
	}
}

func yearWeekParams(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid year"))
		return 0, 0, false
	}
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid week number"))
		return 0, 0, false
	}
	return year, week, true
}

// CurrentWeek returns the running week with its live overhead numbers
// @Summary      Current week overhead
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.OverheadResult}
// @Router       /weeks/current [get]
func (h *WeekHandler) CurrentWeek(c *gin.Context) {
	week, err := h.overheadService.CurrentWeek(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	overhead, err := h.overheadService.ComputeForWeek(c.Request.Context(), week, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, overhead))
}

// Preview returns a week's numbers: computed live for open weeks, frozen
// snapshots for closed ones
// @Summary      Week preview
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Param        year  path      int  true  "Year"
// @Param        week  path      int  true  "ISO week number"
// @Success      200   {object}  response.Response{data=service.WeekPreview}
// @Failure      400   {object}  response.Response
// @Router       /weeks/{year}/{week}/preview [get]
func (h *WeekHandler) Preview(c *gin.Context) {
	year, week, ok := yearWeekParams(c)
	if !ok {
		return
	}

	preview, err := h.overheadService.LivePreview(c.Request.Context(), year, week)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// CloseWeek freezes a week and creates the partner distributions
// @Summary      Close week
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Param        year  path      int  true  "Year"
// @Param        week  path      int  true  "ISO week number"
// @Success      200   {object}  response.Response{data=service.CloseWeekResult}
// @Failure      409   {object}  response.Response
// @Router       /weeks/{year}/{week}/close [post]
func (h *WeekHandler) CloseWeek(c *gin.Context) {
	year, week, ok := yearWeekParams(c)
	if !ok {
		return
	}

	result, err := h.closingService.CloseWeek(c.Request.Context(), year, week, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if !result.OK {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, result.Message))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListClosed lists closed weeks, newest first
// @Summary      Week history
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.FinancialWeek}
// @Router       /weeks [get]
func (h *WeekHandler) ListClosed(c *gin.Context) {
	params := pagination.Parse(c)
	weeks, total, err := h.closingService.ListClosedWeeks(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, weeks, total, params.Page, params.Limit))
}

// SavingsTotal returns the accumulated savings across all closed weeks
// @Summary      Total savings
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /weeks/savings-total [get]
func (h *WeekHandler) SavingsTotal(c *gin.Context) {
	total, err := h.closingService.TotalSavings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"total_savings": total}))
}

// WeekDistributions lists the partner distributions of one week
// @Summary      Week distributions
// @Tags         weeks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Financial week ID"
// @Success      200  {object}  response.Response{data=[]model.PartnerDistribution}
// @Router       /distributions/week/{id} [get]
func (h *WeekHandler) WeekDistributions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	distributions, err := h.closingService.WeekDistributions(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, distributions))
}

type payDistributionRequest struct {
	AccountID string `json:"account_id"`
}

// PayDistribution marks a partner distribution paid
// @Summary      Pay distribution
// @Tags         weeks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true   "Distribution ID"
// @Param        request  body      payDistributionRequest  false  "Payout account (defaults to the configured distribution account)"
// @Success      200  {object}  response.Response{data=service.PayDistributionResult}
// @Failure      409  {object}  response.Response
// @Router       /distributions/{id}/pay [post]
func (h *WeekHandler) PayDistribution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// body is optional, the configured distribution account is the fallback
	var req payDistributionRequest
	_ = c.ShouldBindJSON(&req)
	var accountID *uuid.UUID
	if req.AccountID != "" {
		parsed, err := uuid.Parse(req.AccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid account id"))
			return
		}
		accountID = &parsed
	}

	result, err := h.closingService.PayDistribution(c.Request.Context(), id, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if !result.OK {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, result.Message))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
