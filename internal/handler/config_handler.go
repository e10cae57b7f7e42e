package handler

import (
	"net/http"

	"stickerops/internal/middleware"
	"stickerops/internal/model"
	"stickerops/internal/service"
	"stickerops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	configService service.ConfigService
}

func NewConfigHandler(configService service.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *ConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	config := router.Group("/config")
	{
		config.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.Get)
		config.PUT("", middleware.RequireRole(model.RoleAdmin), h.Update)
	}
}

// Get returns the job costing configuration
// @Summary      Get configuration
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.JobCostingConfig}
// @Router       /config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	config, err := h.configService.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}

// Update saves the profit split percentages and account assignments
// @Summary      Update configuration
// @Tags         config
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateConfigRequest  true  "Configuration"
// @Success      200      {object}  response.Response{data=model.JobCostingConfig}
// @Failure      400      {object}  response.Response
// @Router       /config [put]
func (h *ConfigHandler) Update(c *gin.Context) {
	var req service.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	config, err := h.configService.Update(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}
