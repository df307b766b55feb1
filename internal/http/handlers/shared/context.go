package shared

import (
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// ContextKeyAdminClaims 管理员会话声明在上下文中的键
const ContextKeyAdminClaims = "admin_claims"

// GetAdminClaims 读取鉴权中间件写入的管理员声明。
func GetAdminClaims(c *gin.Context) (*service.AdminClaims, bool) {
	value, exists := c.Get(ContextKeyAdminClaims)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	claims, ok := value.(*service.AdminClaims)
	if !ok || claims == nil {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	return claims, true
}

// GetCustomerPhone 读取顾客会话中间件写入的手机号。
func GetCustomerPhone(c *gin.Context) (string, bool) {
	phone := strings.TrimSpace(c.GetString(constants.ContextKeyCustomer))
	if phone == "" {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	return phone, true
}
