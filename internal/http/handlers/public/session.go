package public

import (
	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"

	"github.com/gin-gonic/gin"
)

// PhoneLoginRequest 手机号登录请求
type PhoneLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// PhoneLogin 以手机号建立顾客会话
func (h *Handler) PhoneLogin(c *gin.Context) {
	var req PhoneLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	session, err := h.PhoneSessionService.Login(c.Request.Context(), req.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	cfg := h.Config
	handlershared.SetSessionCookie(c, cfg.UserSession.CookieName, session.Token, h.PhoneSessionService.TTL(), cfg.Server.IsRelease())
	response.Success(c, gin.H{
		"phone":      session.Phone,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// PhoneLogout 清除顾客会话 Cookie
func (h *Handler) PhoneLogout(c *gin.Context) {
	cfg := h.Config
	handlershared.ClearSessionCookie(c, cfg.UserSession.CookieName, cfg.Server.IsRelease())
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.logged_out"), nil)
}

// GetMe 当前顾客
func (h *Handler) GetMe(c *gin.Context) {
	phone, ok := handlershared.GetCustomerPhone(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{"phone": phone})
}

// ListMyOrders 我的订单，按时间倒序
func (h *Handler) ListMyOrders(c *gin.Context) {
	phone, ok := handlershared.GetCustomerPhone(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrdersByPhone(phone, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetMySummary 我的订单统计
func (h *Handler) GetMySummary(c *gin.Context) {
	phone, ok := handlershared.GetCustomerPhone(c)
	if !ok {
		return
	}
	summary, err := h.OrderService.SummaryByPhone(phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, summary)
}
