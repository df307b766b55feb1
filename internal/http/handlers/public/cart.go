package public

import (
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// UpdateCartItemRequest 调整数量请求，delta 可为负
type UpdateCartItemRequest struct {
	Delta int `json:"delta"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	cartID := h.resolveCartID(c)
	response.Success(c, h.CartService.Get(c.Request.Context(), cartID))
}

// AddCartItem 加入商品，已存在时数量加一
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	cartID := h.resolveCartID(c)
	view, err := h.CartService.AddProduct(c.Request.Context(), cartID, req.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 调整数量，降到 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	cartID := h.resolveCartID(c)
	view, err := h.CartService.UpdateQuantity(c.Request.Context(), cartID, c.Param("id"), req.Delta)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 移除商品
func (h *Handler) DeleteCartItem(c *gin.Context) {
	cartID := h.resolveCartID(c)
	view, err := h.CartService.RemoveItem(c.Request.Context(), cartID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	cartID := h.resolveCartID(c)
	view, err := h.CartService.Clear(c.Request.Context(), cartID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}
