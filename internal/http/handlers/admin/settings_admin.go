package admin

import (
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStoreSettings 店铺设置
func (h *Handler) GetStoreSettings(c *gin.Context) {
	settings, err := h.StoreSettingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, settings)
}

// UpdateStoreSettings 整体覆盖店铺设置，后写入者生效
func (h *Handler) UpdateStoreSettings(c *gin.Context) {
	var req service.StoreSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	settings, err := h.StoreSettingsService.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_store_settings_updated", "store_open", settings.StoreOpen)
	response.Success(c, settings)
}
