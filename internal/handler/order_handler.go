package handler

import (
	"net/http"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/pagination"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

	variants := router.Group("/variants")
	{
		variants.GET("", staff, h.ListVariants)
		variants.POST("", staff, h.CreateVariant)
	}

	orders := router.Group("/orders/:kind")
	{
		orders.GET("", staff, h.ListOrders)
		orders.POST("", staff, h.CreateOrder)
		orders.GET("/:id", staff, h.GetOrder)
		orders.PATCH("/:id/status", staff, h.UpdateStatus)
	}
}

// orderKind validates the :kind path segment.
func orderKind(c *gin.Context) (string, bool) {
	kind := c.Param("kind")
	if kind != model.OrderKindCatalog && kind != model.OrderKindInternal {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Order kind must be 'catalog' or 'internal'"))
		return "", false
	}
	return kind, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateVariant registers a product variant with its costing dimensions
// @Summary      Create product variant
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVariantRequest  true  "Variant"
// @Success      201      {object}  response.Response{data=model.ProductVariant}
// @Failure      400      {object}  response.Response
// @Router       /variants [post]
func (h *OrderHandler) CreateVariant(c *gin.Context) {
	var req service.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	variant, err := h.orderService.CreateVariant(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, variant))
}

// ListVariants lists all product variants
// @Summary      List product variants
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ProductVariant}
// @Router       /variants [get]
func (h *OrderHandler) ListVariants(c *gin.Context) {
	variants, err := h.orderService.ListVariants(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, variants))
}

// CreateOrder creates a catalog or internal order
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string  true  "Order kind (catalog|internal)"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /orders/{kind} [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}

	if kind == model.OrderKindCatalog {
		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
		order, err := h.orderService.CreateOrder(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
		return
	}

	var req service.CreateInternalOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	order, err := h.orderService.CreateInternalOrder(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders lists orders of one kind
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        kind   path      string  true   "Order kind (catalog|internal)"
// @Param        page   query     int     false  "Page"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /orders/{kind} [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), kind, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, orders, total, params.Page, params.Limit))
}

// GetOrder returns one order
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Order kind (catalog|internal)"
// @Param        id    path      string  true  "Order ID"
// @Success      200   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /orders/{kind}/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), kind, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Order not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus changes an order's operational status and syncs its financial
// state from it
// @Summary      Update order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string                            true  "Order kind (catalog|internal)"
// @Param        id       path      string                            true  "Order ID"
// @Param        payload  body      service.UpdateOrderStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      422      {object}  response.Response
// @Router       /orders/{kind}/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	kind, ok := orderKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.orderService.UpdateStatus(c.Request.Context(), kind, id, req.Status)
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

// currentUserID pulls the authenticated user's id out of the gin context.
func currentUserID(c *gin.Context) *uuid.UUID {
	raw, exists := c.Get("userID")
	if !exists {
		return nil
	}
	idStr, ok := raw.(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &id
}
