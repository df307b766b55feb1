package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCategories 分类列表
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	category, err := h.CategoryService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "error.category_not_found")
	if !ok {
		return
	}
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	category, err := h.CategoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类，商品解除关联
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "error.category_not_found")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetAdminProducts 商品列表，包含下架商品
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		WithCategory: true,
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c)
			return
		}
		categoryID := uint(parsed)
		filter.CategoryID = &categoryID
	}
	products, total, err := h.ProductService.ListAdmin(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 商品详情
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品，不影响已有订单快照
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
