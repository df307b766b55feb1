package provider

import (
	"github.com/jaisdevansh/monu-bhiya/internal/authz"
	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/cart"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Registry

	// Repositories
	CategoryRepo        repository.CategoryRepository
	ProductRepo         repository.ProductRepository
	OrderRepo           repository.OrderRepository
	StoreSettingsRepo   repository.StoreSettingsRepository
	OtpChallengeRepo    repository.OtpChallengeRepository
	CheckoutSessionRepo repository.CheckoutSessionRepository

	// Services
	AuthzService         *authz.Service
	AdminAuthService     *service.AdminAuthService
	PhoneSessionService  *service.PhoneSessionService
	CaptchaService       *service.CaptchaService
	EmailService         *service.EmailService
	OtpService           *service.OtpService
	CategoryService      *service.CategoryService
	ProductService       *service.ProductService
	StoreSettingsService *service.StoreSettingsService
	CartService          *service.CartService
	OrderService         *service.OrderService
	CheckoutService      *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时为空操作客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics.Default(),
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices(models.DB)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.StoreSettingsRepo = repository.NewStoreSettingsRepository(db)
	c.OtpChallengeRepo = repository.NewOtpChallengeRepository(db)
	c.CheckoutSessionRepo = repository.NewCheckoutSessionRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	cfg := c.Config
	c.AdminAuthService = service.NewAdminAuthService(cfg.AdminAuth, service.NewSharedSecretVerifier(cfg.AdminAuth))
	c.PhoneSessionService = service.NewPhoneSessionService(cfg.UserSession, service.FormatOnlyPhoneVerifier{})
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)
	c.EmailService = service.NewEmailService(service.NewSMTPMailer(cfg.Email))
	c.OtpService = service.NewOtpService(c.OtpChallengeRepo, c.EmailService, cfg.Otp, c.Metrics)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.StoreSettingsService = service.NewStoreSettingsService(c.StoreSettingsRepo)
	c.CartService = service.NewCartService(cart.NewManager(cart.NewAdapter(nil, c.newCartStorage())), c.ProductRepo)

	policy := service.PolicyByName(cfg.Order.StatusPolicy)
	c.OrderService = service.NewOrderService(c.OrderRepo, policy, c.QueueClient, cfg.Order, cfg.Notify, c.Metrics)
	c.CheckoutService = service.NewCheckoutService(
		c.CheckoutSessionRepo,
		c.OrderRepo,
		c.OtpService,
		c.OrderService,
		c.CartService,
		c.StoreSettingsService,
		cfg.Checkout,
		cfg.Otp,
		cfg.Order,
	)
	logger.Infow("provider_services_ready",
		"status_policy", policy.Name(),
		"queue_enabled", c.QueueClient.Enabled(),
		"redis_enabled", cache.Enabled(),
	)
}

// newCartStorage 按配置选择购物车存储，失败时退回内存
func (c *Container) newCartStorage() cart.Storage {
	storage, err := cart.NewStorage(cart.StorageOptions{
		Kind:        c.Config.Cart.Storage,
		FileDir:     c.Config.Cart.FileDir,
		RedisClient: cache.Client(),
		RedisPrefix: cache.BuildKey("cart"),
		TTL:         c.Config.Cart.TTL(),
	})
	if err != nil {
		logger.Warnw("provider_init_cart_storage_failed", "storage", c.Config.Cart.Storage, "error", err)
		return cart.NewMemoryStorage()
	}
	return storage
}
