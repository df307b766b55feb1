package shared

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SetSessionCookie 写入 HttpOnly 会话 Cookie，release 模式下仅限 HTTPS。
func SetSessionCookie(c *gin.Context, name, value string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl/time.Second), "/", "", secure, true)
}

// ClearSessionCookie 清除会话 Cookie。
func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secure, true)
}

// ReadSessionToken 依次读取 Cookie 与 Bearer 头。
func ReadSessionToken(c *gin.Context, cookieName string) string {
	if value, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
