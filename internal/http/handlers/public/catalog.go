package public

import (
	"strconv"
	"strings"

	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSettings 店铺公开设置
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.StoreSettingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, settings)
}

// GetCategories 分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 在售商品列表，可按分类 slug 过滤
func (h *Handler) GetProducts(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("category"))
	popular, _ := strconv.ParseBool(c.DefaultQuery("popular", "false"))
	products, err := h.ProductService.ListPublic(c.Request.Context(), slug, popular)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, products)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}
	product, err := h.ProductService.GetPublic(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}
