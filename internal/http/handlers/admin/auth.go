package admin

import (
	"errors"

	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// AdminLogin 校验共享口令并写入 admin_session Cookie
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if h.CaptchaService.Enabled() {
		captchaID, captchaCode := req.Normalize()
		if err := h.CaptchaService.Verify(captchaID, captchaCode); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	session, err := h.AdminAuthService.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			requestLog(c).Warnw("admin_login_rejected", "client_ip", c.ClientIP())
		}
		respondServiceError(c, err)
		return
	}
	cfg := h.Config
	handlershared.SetSessionCookie(c, cfg.AdminAuth.CookieName, session.Token, h.AdminAuthService.TTL(), cfg.Server.IsRelease())
	response.Success(c, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// GetCaptcha 登录图片验证码，未启用时返回 enabled=false
func (h *Handler) GetCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// AdminLogout 吊销当前令牌并清除 Cookie
func (h *Handler) AdminLogout(c *gin.Context) {
	claims, ok := handlershared.GetAdminClaims(c)
	if !ok {
		return
	}
	if err := h.AdminAuthService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	cfg := h.Config
	handlershared.ClearSessionCookie(c, cfg.AdminAuth.CookieName, cfg.Server.IsRelease())
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.logged_out"), nil)
}

// GetAdminMe 当前管理员会话
func (h *Handler) GetAdminMe(c *gin.Context) {
	claims, ok := handlershared.GetAdminClaims(c)
	if !ok {
		return
	}
	var expiresAt interface{}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	response.Success(c, gin.H{
		"subject":    claims.Subject,
		"role":       claims.Role,
		"expires_at": expiresAt,
	})
}
