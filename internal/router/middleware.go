package router

import (
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/authz"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = response.RequestIDKey
const requestIDHeader = "X-Request-ID"
const cartIDHeader = "X-Cart-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{requestIDHeader, cartIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if len(corsCfg.AllowMethods) == 0 {
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(corsCfg.AllowHeaders) == 0 {
		corsCfg.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Content-Length",
			"Accept-Language",
			"Authorization",
			cartIDHeader,
			requestIDHeader,
		}
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 || containsWildcard(origins) {
		// 携带凭证时不能返回 *，改为回显请求来源
		if cfg.AllowCredentials {
			corsCfg.AllowOriginFunc = func(origin string) bool { return true }
		} else {
			corsCfg.AllowAllOrigins = true
		}
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

// MetricsMiddleware 按路由模板记录请求量与耗时
func MetricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		reg.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), "error.unauthorized"))
	c.Abort()
}

// AdminAuthMiddleware 管理员会话鉴权，接受 Cookie 或 Bearer
func AdminAuthMiddleware(authService *service.AdminAuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			logger.Errorw("admin_auth_service_unavailable")
			abortUnauthorized(c)
			return
		}
		token := handlershared.ReadSessionToken(c, cookieName)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		claims, err := authService.ParseToken(c.Request.Context(), token)
		if err != nil || claims == nil {
			logger.Debugw("admin_auth_token_rejected", "path", c.Request.URL.Path, "error", err)
			abortUnauthorized(c)
			return
		}
		c.Set(handlershared.ContextKeyAdminClaims, claims)
		c.Set(constants.ContextKeyAdminSession, claims.ID)
		c.Set(constants.ContextKeyRole, claims.Role)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return roleEnforcer(authzService, "admin")
}

// CustomerSessionMiddleware 顾客手机号会话鉴权
func CustomerSessionMiddleware(sessionService *service.PhoneSessionService, authzService *authz.Service, cookieName string) gin.HandlerFunc {
	enforce := roleEnforcer(authzService, "customer")
	return func(c *gin.Context) {
		if sessionService == nil {
			logger.Errorw("customer_session_service_unavailable")
			abortUnauthorized(c)
			return
		}
		token := handlershared.ReadSessionToken(c, cookieName)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		phone, err := sessionService.Parse(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(constants.ContextKeyCustomer, phone)
		c.Set(constants.ContextKeyRole, constants.RoleCustomer)
		enforce(c)
	}
}

// roleEnforcer 以上下文中的访问角色执行 casbin 判定
func roleEnforcer(authzService *authz.Service, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.IsAborted() {
			return
		}
		if authzService == nil {
			logger.Errorw(scope + "_rbac_service_unavailable")
			abortUnauthorized(c)
			return
		}
		role := strings.TrimSpace(c.GetString(constants.ContextKeyRole))
		if role == "" {
			abortUnauthorized(c)
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw(scope+"_rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c)
			return
		}
		if !allowed {
			logger.Warnw(scope+"_rbac_permission_denied",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}

		c.Next()
	}
}
