package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/authz"
	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	adminhandlers "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/admin"
	publichandlers "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/public"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "monuchai"
	}
	redisClient := cache.Client()
	reg := c.Metrics

	adminLoginRule := RateLimitRule{
		Name:          "admin_login",
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limit_login",
	}
	phoneLoginRule := RateLimitRule{
		Name:          "phone_login",
		Prefix:        fmt.Sprintf("%s:rate:phone_login", redisPrefix),
		WindowSeconds: cfg.Security.PhoneRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PhoneRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limit_phone",
	}
	otpRule := RateLimitRule{
		Name:          "otp_send",
		Prefix:        fmt.Sprintf("%s:rate:otp", redisPrefix),
		WindowSeconds: cfg.Security.OtpRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OtpRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limit_otp",
	}
	// 结账详情与独立发送接口共用同一个按 IP 计数的验证码限流器
	otpLimiter := RateLimitMiddleware(redisClient, reg, otpRule, KeyByIP)
	otpVerifyRule := RateLimitRule{
		Name:          "otp_verify",
		Prefix:        fmt.Sprintf("%s:rate:otp_verify", redisPrefix),
		WindowSeconds: cfg.Security.OtpVerifyRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OtpVerifyRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limit_otp_verify",
	}
	// 独立校验与结账确认共用，猜测验证码的总次数按 IP 受限
	otpVerifyLimiter := RateLimitMiddleware(redisClient, reg, otpVerifyRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware(reg))
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/settings", publicHandler.GetSettings)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// 购物车（X-Cart-ID 标识）
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.PATCH("/items/:id", publicHandler.UpdateCartItem)
			cart.DELETE("/items/:id", publicHandler.DeleteCartItem)
		}

		// 结账流程 details -> otp -> success
		checkout := apiV1.Group("/checkout/sessions")
		{
			checkout.POST("", publicHandler.CreateCheckoutSession)
			checkout.GET("/:id", publicHandler.GetCheckoutSession)
			checkout.POST("/:id/details", otpLimiter, publicHandler.SubmitCheckoutDetails)
			checkout.POST("/:id/reset", publicHandler.ResetCheckoutSession)
			checkout.POST("/:id/confirm", otpVerifyLimiter, publicHandler.ConfirmCheckoutSession)
		}

		otp := apiV1.Group("/otp")
		{
			otp.POST("/send", otpLimiter, publicHandler.SendOtp)
			otp.POST("/verify", otpVerifyLimiter, publicHandler.VerifyOtp)
		}

		apiV1.POST("/orders", publicHandler.CreateOrder)

		// 顾客手机号会话
		session := apiV1.Group("/session")
		{
			session.POST("/login", RateLimitMiddleware(redisClient, reg, phoneLoginRule, KeyByJSONField("phone")), publicHandler.PhoneLogin)
			session.POST("/logout", publicHandler.PhoneLogout)
		}

		me := apiV1.Group("/me")
		me.Use(CustomerSessionMiddleware(c.PhoneSessionService, c.AuthzService, cfg.UserSession.CookieName))
		{
			me.GET("", publicHandler.GetMe)
			me.GET("/orders", publicHandler.ListMyOrders)
			me.GET("/summary", publicHandler.GetMySummary)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, reg, adminLoginRule, KeyByIP), adminHandler.AdminLogin)
			admin.GET("/captcha", adminHandler.GetCaptcha)

			// 需要鉴权的接口
			authorized := admin.Group("")
			authorized.Use(AdminAuthMiddleware(c.AdminAuthService, cfg.AdminAuth.CookieName), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.POST("/logout", adminHandler.AdminLogout)
				authorized.GET("/me", adminHandler.GetAdminMe)

				// 订单管理
				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.GET("/orders/:id/transitions", adminHandler.GetAdminOrderTransitions)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateAdminOrderStatus)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 商品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 店铺设置
				authorized.GET("/settings", adminHandler.GetStoreSettings)
				authorized.PUT("/settings", adminHandler.UpdateStoreSettings)

				// 权限目录，供 cafectl roles grant 参考
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/healthz", HealthHandler(models.DB))
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(reg.Handler()))
	}

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" || item.Path == "/api/v1/admin/captcha" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
