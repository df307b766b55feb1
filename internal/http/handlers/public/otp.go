package public

import (
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"

	"github.com/gin-gonic/gin"
)

// SendOtpRequest 发送验证码请求
type SendOtpRequest struct {
	CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
	Email             string `json:"email" binding:"required"`
}

// VerifyOtpRequest 校验验证码请求
type VerifyOtpRequest struct {
	CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
	Code              string `json:"code" binding:"required"`
}

// SendOtp 为结账会话发送邮箱验证码
func (h *Handler) SendOtp(c *gin.Context) {
	var req SendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	locale := i18n.ResolveLocale(c)
	challenge, err := h.CheckoutService.SendOtp(c.Request.Context(), req.CheckoutSessionID, req.Email, locale)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.Sprintf(locale, "message.otp_sent", challenge.Email), gin.H{
		"email":      challenge.Email,
		"expires_at": challenge.ExpiresAt,
	})
}

// VerifyOtp 校验验证码，不落单
func (h *Handler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	challenge, err := h.CheckoutService.VerifyOtp(c.Request.Context(), req.CheckoutSessionID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"verified":    true,
		"email":       challenge.Email,
		"verified_at": challenge.VerifiedAt,
	})
}
