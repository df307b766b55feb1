package admin

import (
	"strings"
	"time"

	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminOrders 订单列表
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Phone:    strings.TrimSpace(c.Query("phone")),
		Email:    strings.TrimSpace(c.Query("email")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	var ok bool
	if filter.CreatedFrom, ok = parseTimeQuery(c, "created_from"); !ok {
		badRequest(c)
		return
	}
	if filter.CreatedTo, ok = parseTimeQuery(c, "created_to"); !ok {
		badRequest(c)
		return
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetAdminOrder 订单详情，路径参数可以是数字 ID 或订单号
func (h *Handler) GetAdminOrder(c *gin.Context) {
	var (
		order *models.Order
		err   error
	)
	if id, parsed := handlershared.ParseUintParam(c, "id"); parsed {
		order, err = h.OrderService.GetOrderForAdmin(id)
	} else {
		order, err = h.OrderService.GetOrderByNoForAdmin(c.Param("id"))
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetAdminOrderTransitions 当前策略下允许的下一状态
func (h *Handler) GetAdminOrderTransitions(c *gin.Context) {
	id, ok := parseID(c, "error.order_not_found")
	if !ok {
		return
	}
	current, next, err := h.OrderService.AllowedTransitions(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"policy":   h.OrderService.Policy().Name(),
		"current":  current,
		"terminal": service.IsTerminalOrderStatus(current),
		"allowed":  next,
	})
}

// UpdateAdminOrderStatus 更新订单状态
func (h *Handler) UpdateAdminOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "error.order_not_found")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), id, req.Status, i18n.ResolveLocale(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// parseTimeQuery 解析 RFC3339 或 yyyy-mm-dd，缺省返回 nil
func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
