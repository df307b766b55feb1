package public

import (
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutSessionRequest 开始结账请求，cart_id 缺省时取 X-Cart-ID
type CreateCheckoutSessionRequest struct {
	CartID string `json:"cart_id"`
}

// CheckoutDetailsRequest 顾客信息
type CheckoutDetailsRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

func (r CheckoutDetailsRequest) toDetails() service.CustomerDetails {
	return service.CustomerDetails{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		PaymentMethod: r.PaymentMethod,
	}
}

// ConfirmCheckoutRequest 提交验证码
type ConfirmCheckoutRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateCheckoutSession 以当前购物车开启结账会话
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CreateCheckoutSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}
	cartID := strings.TrimSpace(req.CartID)
	if cartID == "" {
		cartID = strings.TrimSpace(c.GetHeader(cartIDHeader))
	}
	session, err := h.CheckoutService.Start(c.Request.Context(), cartID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

// GetCheckoutSession 查询结账会话
func (h *Handler) GetCheckoutSession(c *gin.Context) {
	view, err := h.CheckoutService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// SubmitCheckoutDetails 校验顾客信息并发送验证码，成功后进入 otp 阶段
func (h *Handler) SubmitCheckoutDetails(c *gin.Context) {
	var req CheckoutDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	locale := i18n.ResolveLocale(c)
	session, err := h.CheckoutService.SubmitDetails(c.Request.Context(), c.Param("id"), req.toDetails(), locale)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.Sprintf(locale, "message.otp_sent", session.CustomerEmail), session)
}

// ResetCheckoutSession 返回信息填写阶段并作废验证码
func (h *Handler) ResetCheckoutSession(c *gin.Context) {
	session, err := h.CheckoutService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

// ConfirmCheckoutSession 校验验证码并落单
func (h *Handler) ConfirmCheckoutSession(c *gin.Context) {
	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	locale := i18n.ResolveLocale(c)
	order, err := h.CheckoutService.Confirm(c.Request.Context(), service.ConfirmInput{
		SessionID: c.Param("id"),
		Code:      req.Code,
		Locale:    locale,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "message.order_placed"), order)
}
