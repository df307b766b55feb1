package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"

	"gorm.io/gorm"
)

const orderNoAttempts = 5

// OrderNotifier 订单邮件任务入队接口，由 queue.Client 实现
type OrderNotifier interface {
	EnqueueOrderPlacedEmail(ctx context.Context, payload queue.OrderPlacedEmailPayload) error
	EnqueueOrderStatusEmail(ctx context.Context, payload queue.OrderStatusEmailPayload) error
}

// OrderService 订单服务
type OrderService struct {
	orderRepo    repository.OrderRepository
	policy       TransitionPolicy
	notifier     OrderNotifier
	notify       config.NotifyConfig
	metrics      *metrics.Registry
	listCacheTTL time.Duration
	now          func() time.Time
	generateNo   func(now time.Time) string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, policy TransitionPolicy, notifier OrderNotifier, orderCfg config.OrderConfig, notifyCfg config.NotifyConfig, reg *metrics.Registry) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		policy:       policy,
		notifier:     notifier,
		notify:       notifyCfg,
		metrics:      reg,
		listCacheTTL: time.Duration(orderCfg.ListCacheSeconds) * time.Second,
		now:          time.Now,
		generateNo:   generateOrderNo,
	}
}

// OrderDraft 落单所需的顾客信息与快照行
type OrderDraft struct {
	Name              string
	Email             string
	Phone             string
	Address           string
	PaymentMethod     string
	ClientIP          string
	CheckoutSessionID string
	Lines             models.DraftLines
}

// Policy 返回当前生效的状态流转表
func (s *OrderService) Policy() TransitionPolicy {
	return s.policy
}

// CreateOrderTx 在给定事务内写入订单及订单项，名称与单价取自草稿快照
func (s *OrderService) CreateOrderTx(tx *gorm.DB, draft OrderDraft) (*models.Order, error) {
	order, items, err := buildOrder(draft)
	if err != nil {
		return nil, err
	}
	repo := s.orderRepo.WithTx(tx)
	orderNo, err := s.nextOrderNo(repo)
	if err != nil {
		return nil, wrapPersistence(ErrOrderSaveFailed, err)
	}
	order.OrderNo = orderNo
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := repo.Create(order, items); err != nil {
		return nil, wrapPersistence(ErrOrderSaveFailed, err)
	}
	return order, nil
}

// AfterOrderCreated 事务提交后的收尾：指标、列表缓存失效、下单邮件
func (s *OrderService) AfterOrderCreated(ctx context.Context, order *models.Order, locale string) {
	if order == nil {
		return
	}
	s.metrics.OrderCreated(order.PaymentMethod)
	s.invalidateLists(ctx)
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_method", order.PaymentMethod,
		"total", order.TotalAmount.String(),
	)
	if !s.notify.OrderPlacedEmail || s.notifier == nil || strings.TrimSpace(order.CustomerEmail) == "" {
		return
	}
	if err := s.notifier.EnqueueOrderPlacedEmail(ctx, queue.OrderPlacedEmailPayload{
		OrderID: order.ID,
		Locale:  locale,
	}); err != nil {
		logger.Warnw("order_placed_email_enqueue_failed", "order_id", order.ID, "error", err)
	}
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNoForAdmin 管理端按订单号查询
func (s *OrderService) GetOrderByNoForAdmin(orderNo string) (*models.Order, error) {
	orderNo = strings.ToUpper(strings.TrimSpace(orderNo))
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByCheckoutSession 按结账会话查找已落库订单，不存在时返回 nil
func (s *OrderService) GetOrderByCheckoutSession(sessionID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByCheckoutSession(sessionID)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	return order, nil
}

type cachedOrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
}

// ListOrdersForAdmin 管理端订单列表，短时缓存并在状态变更后按版本号失效
func (s *OrderService) ListOrdersForAdmin(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !IsValidOrderStatus(filter.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	cacheKey := ""
	if s.listCacheTTL > 0 && cache.Enabled() {
		if key, err := cache.VersionedKey(ctx, cache.VersionOrders, adminListCacheSuffix(filter)); err == nil {
			cacheKey = key
			var page cachedOrderPage
			if hit, err := cache.GetJSON(ctx, cacheKey, &page); err == nil && hit {
				return page.Orders, page.Total, nil
			}
		}
	}

	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, wrapPersistence(nil, err)
	}
	if cacheKey != "" {
		if err := cache.SetJSON(ctx, cacheKey, cachedOrderPage{Orders: orders, Total: total}, s.listCacheTTL); err != nil {
			logger.Debugw("order_list_cache_set_failed", "error", err)
		}
	}
	return orders, total, nil
}

// ListOrdersByPhone 顾客按手机号查看订单，最新在前
func (s *OrderService) ListOrdersByPhone(phone string, page, pageSize int) ([]models.Order, int64, error) {
	if !phonePattern.MatchString(phone) {
		return nil, 0, ErrPhoneInvalid
	}
	orders, total, err := s.orderRepo.ListByPhone(phone, page, pageSize)
	if err != nil {
		return nil, 0, wrapPersistence(nil, err)
	}
	return orders, total, nil
}

// PhoneSummary 顾客订单概览
type PhoneSummary struct {
	OrderCount  int64          `json:"order_count"`
	TotalSpent  models.Money   `json:"total_spent"`
	ActiveOrder *models.Order  `json:"active_order"`
	Recent      []models.Order `json:"recent_orders"`
}

// SummaryByPhone 汇总订单数、累计消费、进行中订单与最近三单
func (s *OrderService) SummaryByPhone(phone string) (*PhoneSummary, error) {
	if !phonePattern.MatchString(phone) {
		return nil, ErrPhoneInvalid
	}
	stats, err := s.orderRepo.SummaryByPhone(phone)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	active, err := s.orderRepo.FindActiveByPhone(phone)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	recent, _, err := s.orderRepo.ListByPhone(phone, 1, 3)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	return &PhoneSummary{
		OrderCount:  stats.OrderCount,
		TotalSpent:  stats.TotalSpent,
		ActiveOrder: active,
		Recent:      recent,
	}, nil
}

// AllowedTransitions 返回订单当前状态与可流转目标
func (s *OrderService) AllowedTransitions(orderID uint) (string, []string, error) {
	order, err := s.GetOrderForAdmin(orderID)
	if err != nil {
		return "", nil, err
	}
	return order.Status, s.policy.Next(order.Status), nil
}

// UpdateOrderStatus 管理端更新订单状态，仅写状态列
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, target string, locale string) (*models.Order, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if !IsValidOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.GetOrderForAdmin(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}
	if !s.policy.Allowed(order.Status, target) {
		return nil, &TransitionError{From: order.Status, To: target}
	}

	now := s.now()
	affected, err := s.orderRepo.UpdateStatus(order.ID, target, now)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	previous := order.Status
	order.Status = target
	order.UpdatedAt = now

	s.metrics.StatusTransition(previous, target)
	s.invalidateLists(ctx)
	logger.Infow("order_status_updated",
		"order_id", order.ID,
		"from", previous,
		"to", target,
		"policy", s.policy.Name(),
	)

	if s.notify.OrderStatusEmail && s.notifier != nil && order.CustomerEmail != "" {
		if err := s.notifier.EnqueueOrderStatusEmail(ctx, queue.OrderStatusEmailPayload{
			OrderID: order.ID,
			Status:  target,
			Locale:  locale,
		}); err != nil {
			logger.Warnw("order_status_email_enqueue_failed", "order_id", order.ID, "status", target, "error", err)
		}
	}
	return order, nil
}

func (s *OrderService) invalidateLists(ctx context.Context) {
	if err := cache.BumpVersion(ctx, cache.VersionOrders); err != nil {
		logger.Warnw("order_list_cache_bump_failed", "error", err)
	}
}

func (s *OrderService) nextOrderNo(repo repository.OrderRepository) (string, error) {
	for i := 0; i < orderNoAttempts; i++ {
		orderNo := s.generateNo(s.now())
		count, err := repo.CountByOrderNo(orderNo)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return orderNo, nil
		}
	}
	return "", fmt.Errorf("order no collision after %d attempts", orderNoAttempts)
}

// buildOrder 根据草稿构造订单与快照订单项
func buildOrder(draft OrderDraft) (*models.Order, []models.OrderItem, error) {
	if len(draft.Lines) == 0 {
		return nil, nil, ErrCartEmpty
	}
	items := make([]models.OrderItem, 0, len(draft.Lines))
	total := models.Money{}
	for _, line := range draft.Lines {
		productID, err := strconv.ParseUint(strings.TrimSpace(line.ItemID), 10, 64)
		if err != nil || productID == 0 || line.Quantity <= 0 || line.UnitPrice.IsNegative() {
			return nil, nil, ErrCartItemInvalid
		}
		subtotal := line.Subtotal()
		items = append(items, models.OrderItem{
			ProductID:   uint(productID),
			ProductName: line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			TotalPrice:  subtotal,
		})
		total = total.Add(subtotal)
	}

	order := &models.Order{
		CustomerName:    draft.Name,
		CustomerEmail:   draft.Email,
		CustomerPhone:   draft.Phone,
		CustomerAddress: draft.Address,
		TotalAmount:     total,
		Status:          constants.OrderStatusPending,
		PaymentMethod:   draft.PaymentMethod,
		ClientIP:        draft.ClientIP,
	}
	if sessionID := strings.TrimSpace(draft.CheckoutSessionID); sessionID != "" {
		order.CheckoutSessionID = &sessionID
	}
	return order, items, nil
}

func adminListCacheSuffix(filter repository.OrderListFilter) string {
	from, to := "", ""
	if filter.CreatedFrom != nil {
		from = strconv.FormatInt(filter.CreatedFrom.Unix(), 10)
	}
	if filter.CreatedTo != nil {
		to = strconv.FormatInt(filter.CreatedTo.Unix(), 10)
	}
	return fmt.Sprintf("admin:%d:%d:%s:%s:%s:%s:%s:%s",
		filter.Page, filter.PageSize, filter.Status, filter.Phone,
		strings.ToLower(filter.Email), filter.OrderNo, from, to)
}

// generateOrderNo 生成 MC + 时间戳 + 4 位随机数的订单号
func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("%s%s%s", constants.OrderNoPrefix, now.Format("20060102150405"), randNumeric(4))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}
