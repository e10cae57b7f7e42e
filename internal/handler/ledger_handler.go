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

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	admin := middleware.RequireRole(model.RoleAdmin)

	accounts := router.Group("/accounts")
	{
		accounts.GET("", staff, h.ListAccounts)
		accounts.POST("", admin, h.CreateAccount)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", staff, h.ListCategories)
		categories.POST("", admin, h.CreateCategory)
	}

	entries := router.Group("/ledger-entries")
	{
		entries.GET("", staff, h.ListEntries)
		entries.POST("", staff, h.RecordEntry)
	}
}

// CreateAccount registers a money account
// @Summary      Create account
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAccountRequest  true  "Account"
// @Success      201      {object}  response.Response{data=model.Account}
// @Failure      400      {object}  response.Response
// @Router       /accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// ListAccounts lists accounts with their running balances
// @Summary      List accounts
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Account}
// @Router       /accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, accounts))
}

// CreateCategory registers a transaction category
// @Summary      Create category
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCategoryRequest  true  "Category"
// @Success      201      {object}  response.Response{data=model.TransactionCategory}
// @Failure      400      {object}  response.Response
// @Router       /categories [post]
func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.ledgerService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// ListCategories lists transaction categories
// @Summary      List categories
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.TransactionCategory}
// @Router       /categories [get]
func (h *LedgerHandler) ListCategories(c *gin.Context) {
	categories, err := h.ledgerService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// RecordEntry records a manual ledger movement
// @Summary      Record ledger entry
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RecordEntryRequest  true  "Entry"
// @Success      201      {object}  response.Response{data=model.LedgerEntry}
// @Failure      400      {object}  response.Response
// @Router       /ledger-entries [post]
func (h *LedgerHandler) RecordEntry(c *gin.Context) {
	var req service.RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.RecordEntry(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// ListEntries lists ledger entries, newest first
// @Summary      List ledger entries
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.LedgerEntry}
// @Router       /ledger-entries [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	params := pagination.Parse(c)
	entries, total, err := h.ledgerService.ListEntries(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, entries, total, params.Page, params.Limit))
}
