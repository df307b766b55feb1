package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cart"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sentOtp struct {
	to     string
	code   string
	locale string
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentOtp
	err  error
}

func (f *fakeDispatcher) SendOtpCode(ctx context.Context, toEmail, code string, ttl time.Duration, locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOtp{to: toEmail, code: code, locale: locale})
	return nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeNotifier struct {
	mu     sync.Mutex
	placed []queue.OrderPlacedEmailPayload
	status []queue.OrderStatusEmailPayload
}

func (f *fakeNotifier) EnqueueOrderPlacedEmail(ctx context.Context, payload queue.OrderPlacedEmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, payload)
	return nil
}

func (f *fakeNotifier) EnqueueOrderStatusEmail(ctx context.Context, payload queue.OrderStatusEmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, payload)
	return nil
}

// flakyOrderRepo 在 failCreate 为 true 时让订单写入失败
type flakyOrderRepo struct {
	repository.OrderRepository
	failCreate *bool
}

func (r *flakyOrderRepo) WithTx(tx *gorm.DB) repository.OrderRepository {
	return &flakyOrderRepo{OrderRepository: r.OrderRepository.WithTx(tx), failCreate: r.failCreate}
}

func (r *flakyOrderRepo) Create(order *models.Order, items []models.OrderItem) error {
	if *r.failCreate {
		return errors.New("disk full")
	}
	return r.OrderRepository.Create(order, items)
}

type serviceFixture struct {
	db          *gorm.DB
	dispatcher  *fakeDispatcher
	notifier    *fakeNotifier
	failCreate  bool
	codes       []string
	otp         *OtpService
	orders      *OrderService
	carts       *CartService
	settings    *StoreSettingsService
	checkout    *CheckoutService
	products    *ProductService
	categories  *CategoryService
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

type fixtureOptions struct {
	policy   TransitionPolicy
	otpCfg   config.OtpConfig
	notify   config.NotifyConfig
	settings *models.StoreSettings
}

func newServiceFixture(t *testing.T, opts ...func(*fixtureOptions)) *serviceFixture {
	t.Helper()
	options := fixtureOptions{
		policy: PermissivePolicy(),
		otpCfg: config.OtpConfig{TTLMinutes: 10},
		notify: config.NotifyConfig{OrderPlacedEmail: true},
	}
	for _, opt := range opts {
		opt(&options)
	}

	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	f := &serviceFixture{
		db:         db,
		dispatcher: &fakeDispatcher{},
		notifier:   &fakeNotifier{},
	}
	reg := metrics.New()
	f.orderRepo = &flakyOrderRepo{OrderRepository: repository.NewOrderRepository(db), failCreate: &f.failCreate}
	f.productRepo = repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	settingsRepo := repository.NewStoreSettingsRepository(db)
	if options.settings != nil {
		if err := settingsRepo.Upsert(options.settings); err != nil {
			t.Fatalf("seed settings failed: %v", err)
		}
	}

	f.otp = NewOtpService(repository.NewOtpChallengeRepository(db), f.dispatcher, options.otpCfg, reg)
	f.otp.generate = func() (string, error) {
		if len(f.codes) == 0 {
			return "111111", nil
		}
		code := f.codes[0]
		f.codes = f.codes[1:]
		return code, nil
	}
	f.orders = NewOrderService(f.orderRepo, options.policy, f.notifier, config.OrderConfig{}, options.notify, reg)
	f.carts = NewCartService(cart.NewManager(cart.NewAdapter(nil, cart.NewMemoryStorage())), f.productRepo)
	f.settings = NewStoreSettingsService(settingsRepo)
	f.products = NewProductService(f.productRepo, categoryRepo)
	f.categories = NewCategoryService(categoryRepo)
	f.checkout = NewCheckoutService(
		repository.NewCheckoutSessionRepository(db),
		f.orderRepo,
		f.otp,
		f.orders,
		f.carts,
		f.settings,
		config.CheckoutConfig{SessionTTLHours: 2},
		options.otpCfg,
		config.OrderConfig{DefaultPaymentMethod: "COD"},
	)
	return f
}

func (f *serviceFixture) seedProduct(t *testing.T, name string, price int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: name + " fresh from the stove",
		Price:       models.NewMoneyFromInt(price),
		Image:       "https://cdn.example.com/" + name + ".jpg",
		IsAvailable: true,
	}
	if err := f.productRepo.Create(product); err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func (f *serviceFixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return count
}

func validDetails(email string) CustomerDetails {
	return CustomerDetails{
		Name:    "Ravi Kumar",
		Email:   email,
		Phone:   "9876543210",
		Address: "Shop 4, NH24, Ghaziabad",
	}
}
