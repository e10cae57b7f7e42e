package handler

import (
	"net/http"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
)

type CostingHandler struct {
	costingService service.CostingService
}

func NewCostingHandler(costingService service.CostingService) *CostingHandler {
	return &CostingHandler{costingService: costingService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *CostingHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	admin := middleware.RequireRole(model.RoleAdmin)

	costTypes := router.Group("/cost-types")
	{
		costTypes.GET("", staff, h.ListCostTypes)
		costTypes.POST("", admin, h.CreateCostType)
	}

	rules := router.Group("/cost-rules")
	{
		rules.GET("", staff, h.ListCostRules)
		rules.POST("", admin, h.CreateCostRule)
	}

	costs := router.Group("/orders/:kind/:id/costs")
	{
		costs.GET("", staff, h.ListOrderCosts)
		costs.POST("/recalculate", staff, h.Recalculate)
		costs.POST("/manual", staff, h.CreateManualCost)
	}

	breakdowns := router.Group("/cost-lines")
	{
		breakdowns.PUT("/:id", staff, h.UpdateManualCost)
		breakdowns.POST("/:id/post", admin, h.PostToAccounting)
	}
}

// CreateCostType registers a cost driver
// @Summary      Create cost type
// @Tags         costing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCostTypeRequest  true  "Cost type"
// @Success      201      {object}  response.Response{data=model.CostType}
// @Failure      400      {object}  response.Response
// @Router       /cost-types [post]
func (h *CostingHandler) CreateCostType(c *gin.Context) {
	var req service.CreateCostTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	costType, err := h.costingService.CreateCostType(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, costType))
}

// ListCostTypes lists all cost types
// @Summary      List cost types
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.CostType}
// @Router       /cost-types [get]
func (h *CostingHandler) ListCostTypes(c *gin.Context) {
	costTypes, err := h.costingService.ListCostTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, costTypes))
}

// CreateCostRule binds a cost type to a product type
// @Summary      Create cost rule
// @Tags         costing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCostRuleRequest  true  "Cost rule"
// @Success      201      {object}  response.Response{data=model.ProductCostRule}
// @Failure      400      {object}  response.Response
// @Router       /cost-rules [post]
func (h *CostingHandler) CreateCostRule(c *gin.Context) {
	var req service.CreateCostRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.costingService.CreateCostRule(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// ListCostRules lists all cost rules
// @Summary      List cost rules
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ProductCostRule}
// @Router       /cost-rules [get]
func (h *CostingHandler) ListCostRules(c *gin.Context) {
	rules, err := h.costingService.ListCostRules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// ListOrderCosts returns an order's cost lines and their total
// @Summary      List order cost lines
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Order kind (catalog|internal)"
// @Param        id    path      string  true  "Order ID"
// @Success      200   {object}  response.Response
// @Router       /orders/{kind}/{id}/costs [get]
func (h *CostingHandler) ListOrderCosts(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	lines, total, err := h.costingService.ListOrderCosts(c.Request.Context(), kind, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"lines": lines,
		"total": total,
	}))
}

// Recalculate rebuilds an order's estimated cost lines
// @Summary      Recalculate order costs
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Order kind (catalog|internal)"
// @Param        id    path      string  true  "Order ID"
// @Success      200   {object}  response.Response{data=service.CostingResult}
// @Failure      404   {object}  response.Response
// @Router       /orders/{kind}/{id}/costs/recalculate [post]
func (h *CostingHandler) Recalculate(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.costingService.CalculateOrderCosts(c.Request.Context(), kind, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateManualCost adds a manual cost line to an order
// @Summary      Create manual cost line
// @Tags         costing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string                     true  "Order kind (catalog|internal)"
// @Param        id       path      string                     true  "Order ID"
// @Param        payload  body      service.ManualCostRequest  true  "Manual cost"
// @Success      201      {object}  response.Response{data=model.OrderCostBreakdown}
// @Failure      400      {object}  response.Response
// @Router       /orders/{kind}/{id}/costs/manual [post]
func (h *CostingHandler) CreateManualCost(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ManualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	line, err := h.costingService.CreateManualCost(c.Request.Context(), kind, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, line))
}

// UpdateManualCost edits a manual, not yet posted cost line
// @Summary      Update manual cost line
// @Tags         costing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Cost line ID"
// @Param        payload  body      service.ManualCostRequest  true  "Manual cost"
// @Success      200      {object}  response.Response{data=model.OrderCostBreakdown}
// @Failure      400      {object}  response.Response
// @Router       /cost-lines/{id} [put]
func (h *CostingHandler) UpdateManualCost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ManualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	line, err := h.costingService.UpdateManualCost(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, line))
}

// PostToAccounting turns a cost line into a ledger expense
// @Summary      Post cost line to accounting
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cost line ID"
// @Success      200  {object}  response.Response{data=service.PostBreakdownResult}
// @Failure      409  {object}  response.Response
// @Router       /cost-lines/{id}/post [post]
func (h *CostingHandler) PostToAccounting(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.costingService.PostBreakdownToAccounting(c.Request.Context(), id)
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
