package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cart"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errCommitRaced 事务内阶段守卫未命中，说明另一请求已完成落单
var errCommitRaced = errors.New("checkout session already committed")

// CheckoutService 结账流程：details -> otp -> success，订单只在验证码通过后落库一次
type CheckoutService struct {
	sessionRepo    repository.CheckoutSessionRepository
	orderRepo      repository.OrderRepository
	otp            *OtpService
	orders         *OrderService
	carts          *CartService
	settings       *StoreSettingsService
	sessionTTL     time.Duration
	purgeAfter     time.Duration
	defaultPayment string
	now            func() time.Time
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	sessionRepo repository.CheckoutSessionRepository,
	orderRepo repository.OrderRepository,
	otp *OtpService,
	orders *OrderService,
	carts *CartService,
	settings *StoreSettingsService,
	checkoutCfg config.CheckoutConfig,
	otpCfg config.OtpConfig,
	orderCfg config.OrderConfig,
) *CheckoutService {
	purgeAfter := time.Duration(otpCfg.PurgeAfterHours) * time.Hour
	if purgeAfter <= 0 {
		purgeAfter = 24 * time.Hour
	}
	return &CheckoutService{
		sessionRepo:    sessionRepo,
		orderRepo:      orderRepo,
		otp:            otp,
		orders:         orders,
		carts:          carts,
		settings:       settings,
		sessionTTL:     checkoutCfg.SessionTTL(),
		purgeAfter:     purgeAfter,
		defaultPayment: orderCfg.DefaultPaymentMethod,
		now:            time.Now,
	}
}

// CheckoutView 结账会话对外视图
type CheckoutView struct {
	Session      *models.CheckoutSession `json:"session"`
	OtpState     OtpState                `json:"otp_state"`
	OtpEmail     string                  `json:"otp_email,omitempty"`
	OtpExpiresAt *time.Time              `json:"otp_expires_at,omitempty"`
	Order        *models.Order           `json:"order,omitempty"`
}

// Start 为购物车开启新的结账会话，空购物车直接拒绝
func (s *CheckoutService) Start(ctx context.Context, cartID string) (*models.CheckoutSession, error) {
	cartID = strings.TrimSpace(cartID)
	if !cart.ValidID(cartID) {
		return nil, ErrCartEmpty
	}
	if s.carts.Get(ctx, cartID).ItemCount == 0 {
		return nil, ErrCartEmpty
	}
	now := s.now()
	session := &models.CheckoutSession{
		ID:         uuid.NewString(),
		CartID:     cartID,
		Stage:      constants.CheckoutStageDetails,
		DraftItems: models.DraftLines{},
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	logger.Infow("checkout_started", "session_id", session.ID, "cart_id", cartID)
	return session, nil
}

// Get 读取结账会话及验证码状态
func (s *CheckoutService) Get(ctx context.Context, sessionID string) (*CheckoutView, error) {
	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	view := &CheckoutView{Session: session, OtpState: OtpStateIdle}
	state, challenge, err := s.otp.State(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	view.OtpState = state
	if challenge != nil {
		view.OtpEmail = challenge.Email
		expiresAt := challenge.ExpiresAt
		view.OtpExpiresAt = &expiresAt
	}
	if session.Stage == constants.CheckoutStageSuccess {
		order, err := s.orders.GetOrderByCheckoutSession(session.ID)
		if err != nil {
			return nil, err
		}
		view.Order = order
	}
	return view, nil
}

// SubmitDetails 校验顾客信息并发送验证码，发送成功后进入 otp 阶段
func (s *CheckoutService) SubmitDetails(ctx context.Context, sessionID string, details CustomerDetails, locale string) (*models.CheckoutSession, error) {
	session, err := s.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != constants.CheckoutStageDetails {
		return nil, ErrCheckoutStageInvalid
	}

	details, err = validateCustomerDetails(details)
	if err != nil {
		return nil, err
	}
	method, err := s.checkStoreAccepts(ctx, details.PaymentMethod)
	if err != nil {
		return nil, err
	}
	details.PaymentMethod = method

	view := s.carts.Get(ctx, session.CartID)
	if view.ItemCount == 0 {
		return nil, ErrCartEmpty
	}
	lines := draftLinesFromCart(view.Items)

	if _, err := s.otp.RequestOtp(ctx, session.ID, details.Email, locale); err != nil {
		return nil, err
	}

	total := lines.Total()
	affected, err := s.sessionRepo.AdvanceStage(session.ID, constants.CheckoutStageDetails, constants.CheckoutStageOtp, map[string]interface{}{
		"customer_name":    details.Name,
		"customer_email":   details.Email,
		"customer_phone":   details.Phone,
		"customer_address": details.Address,
		"payment_method":   details.PaymentMethod,
		"draft_items":      lines,
		"draft_total":      total,
	})
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if affected == 0 {
		return nil, ErrCheckoutStageInvalid
	}

	session.Stage = constants.CheckoutStageOtp
	session.CustomerName = details.Name
	session.CustomerEmail = details.Email
	session.CustomerPhone = details.Phone
	session.CustomerAddress = details.Address
	session.PaymentMethod = details.PaymentMethod
	session.DraftItems = lines
	session.DraftTotal = total
	logger.Infow("checkout_details_submitted", "session_id", session.ID, "items", len(lines), "total", total.String())
	return session, nil
}

// Reset 更换邮箱：丢弃验证码并回到 details 阶段
func (s *CheckoutService) Reset(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Stage {
	case constants.CheckoutStageDetails:
		return session, nil
	case constants.CheckoutStageOtp:
	default:
		return nil, ErrCheckoutStageInvalid
	}
	if err := s.otp.Reset(ctx, session.ID); err != nil {
		return nil, err
	}
	affected, err := s.sessionRepo.AdvanceStage(session.ID, constants.CheckoutStageOtp, constants.CheckoutStageDetails, nil)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if affected == 0 {
		return nil, ErrCheckoutStageInvalid
	}
	session.Stage = constants.CheckoutStageDetails
	return session, nil
}

// ConfirmInput 提交验证码的输入
type ConfirmInput struct {
	SessionID string
	Code      string
	Locale    string
	ClientIP  string
}

// Confirm 校验验证码并落单；已成功的会话直接返回原订单
func (s *CheckoutService) Confirm(ctx context.Context, input ConfirmInput) (*models.Order, error) {
	session, err := s.loadSession(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage == constants.CheckoutStageSuccess {
		return s.existingOrder(session.ID)
	}
	if session.Expired(s.now()) {
		return nil, ErrCheckoutSessionExpired
	}
	// 仅经独立发送接口进入 otp 的会话没有订单快照，只能走直接下单
	if session.Stage != constants.CheckoutStageOtp || len(session.DraftItems) == 0 {
		return nil, ErrCheckoutStageInvalid
	}
	if _, err := s.otp.VerifyOtp(ctx, session.ID, session.CustomerEmail, input.Code); err != nil {
		return nil, err
	}

	draft := OrderDraft{
		Name:              session.CustomerName,
		Email:             session.CustomerEmail,
		Phone:             session.CustomerPhone,
		Address:           session.CustomerAddress,
		PaymentMethod:     session.PaymentMethod,
		ClientIP:          input.ClientIP,
		CheckoutSessionID: session.ID,
		Lines:             session.DraftItems,
	}
	return s.commit(ctx, session, draft, input.Locale, true)
}

// PlaceOrderInput 直接下单接口的输入，行项目与总额由客户端声明
type PlaceOrderInput struct {
	CheckoutSessionID string
	Details           CustomerDetails
	Items             models.DraftLines
	Total             models.Money
	Locale            string
	ClientIP          string
}

// PlaceOrder 直接下单：要求会话处于 otp 阶段且同一邮箱的验证码已通过，声明总额须与明细一致。
// 地址可选；只有声明的明细与购物车一致时才清空购物车。
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	session, err := s.loadSession(input.CheckoutSessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage == constants.CheckoutStageSuccess {
		return s.existingOrder(session.ID)
	}
	if session.Expired(s.now()) {
		return nil, ErrCheckoutSessionExpired
	}

	details, err := validateContact(input.Details)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrCartEmpty
	}
	for _, line := range input.Items {
		if strings.TrimSpace(line.ItemID) == "" || line.Quantity <= 0 || line.UnitPrice.IsNegative() {
			return nil, ErrCartItemInvalid
		}
	}
	if !input.Items.Total().Equal(input.Total) {
		return nil, ErrOrderTotalMismatch
	}
	method, err := s.checkStoreAccepts(ctx, details.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := s.otp.RequireVerified(ctx, session.ID, details.Email); err != nil {
		return nil, err
	}
	if session.Stage != constants.CheckoutStageOtp {
		return nil, ErrCheckoutStageInvalid
	}

	draft := OrderDraft{
		Name:              details.Name,
		Email:             details.Email,
		Phone:             details.Phone,
		Address:           details.Address,
		PaymentMethod:     method,
		ClientIP:          input.ClientIP,
		CheckoutSessionID: session.ID,
		Lines:             input.Items,
	}
	clearCart := linesMatchCart(input.Items, s.carts.Get(ctx, session.CartID).Items)
	return s.commit(ctx, session, draft, input.Locale, clearCart)
}

// SendOtp 独立的验证码发送接口，发送成功后会话从 details 进入 otp
func (s *CheckoutService) SendOtp(ctx context.Context, sessionID, email, locale string) (*models.OtpChallenge, error) {
	session, err := s.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage == constants.CheckoutStageSuccess {
		return nil, ErrCheckoutStageInvalid
	}
	challenge, err := s.otp.RequestOtp(ctx, session.ID, email, locale)
	if err != nil {
		return nil, err
	}
	if session.Stage == constants.CheckoutStageOtp {
		return challenge, nil
	}
	affected, err := s.sessionRepo.AdvanceStage(session.ID, constants.CheckoutStageDetails, constants.CheckoutStageOtp, map[string]interface{}{
		"customer_email": challenge.Email,
	})
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if affected == 0 {
		// 并发发送时另一请求已推进阶段
		current, err := s.loadSession(session.ID)
		if err != nil {
			return nil, err
		}
		if current.Stage != constants.CheckoutStageOtp {
			return nil, ErrCheckoutStageInvalid
		}
	}
	return challenge, nil
}

// VerifyOtp 独立的验证码校验接口
func (s *CheckoutService) VerifyOtp(ctx context.Context, sessionID, code string) (*models.OtpChallenge, error) {
	session, err := s.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.otp.VerifyOtp(ctx, session.ID, "", code)
}

// PurgeResult 清理结果
type PurgeResult struct {
	Challenges int64 `json:"challenges"`
	Sessions   int64 `json:"sessions"`
}

// PurgeExpired 清理过期验证码挑战与未下单的过期会话
func (s *CheckoutService) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	now := s.now()
	var result PurgeResult
	challenges, err := s.otp.PurgeExpired(ctx, now.Add(-s.purgeAfter))
	if err != nil {
		return result, wrapPersistence(nil, err)
	}
	result.Challenges = challenges
	sessions, err := s.sessionRepo.DeleteExpired(now)
	if err != nil {
		return result, wrapPersistence(nil, err)
	}
	result.Sessions = sessions
	if result.Challenges > 0 || result.Sessions > 0 {
		logger.Infow("checkout_purged", "challenges", result.Challenges, "sessions", result.Sessions)
	}
	return result, nil
}

// commit 在一个事务内写入订单并把会话从 otp 推进到 success；成功提交后才清空购物车
func (s *CheckoutService) commit(ctx context.Context, session *models.CheckoutSession, draft OrderDraft, locale string, clearCart bool) (*models.Order, error) {
	if session.Stage != constants.CheckoutStageOtp {
		return nil, ErrCheckoutStageInvalid
	}
	var order *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		created, err := s.orders.CreateOrderTx(tx, draft)
		if err != nil {
			return err
		}
		affected, err := s.sessionRepo.WithTx(tx).AdvanceStage(session.ID, constants.CheckoutStageOtp, constants.CheckoutStageSuccess, map[string]interface{}{
			"order_id": created.ID,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return errCommitRaced
		}
		order = created
		return nil
	})
	if err != nil {
		// 并发确认时落败的一方返回胜者的订单
		if existing, lookupErr := s.orders.GetOrderByCheckoutSession(session.ID); lookupErr == nil && existing != nil {
			return existing, nil
		}
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		logger.Errorw("checkout_commit_failed", "session_id", session.ID, "error", err)
		if errors.Is(err, ErrPersistence) {
			return nil, err
		}
		return nil, wrapPersistence(ErrOrderSaveFailed, err)
	}

	session.Stage = constants.CheckoutStageSuccess
	session.OrderID = &order.ID
	if !clearCart {
		logger.Infow("checkout_cart_kept", "session_id", session.ID, "cart_id", session.CartID)
	} else if _, err := s.carts.Clear(ctx, session.CartID); err != nil {
		logger.Warnw("checkout_cart_clear_failed", "session_id", session.ID, "cart_id", session.CartID, "error", err)
	}
	s.orders.AfterOrderCreated(ctx, order, locale)
	return order, nil
}

// checkStoreAccepts 营业中且支付方式已开放
func (s *CheckoutService) checkStoreAccepts(ctx context.Context, rawMethod string) (string, error) {
	method, err := resolvePaymentMethod(rawMethod, s.defaultPayment)
	if err != nil {
		return "", err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if !settings.StoreOpen {
		return "", ErrStoreClosed
	}
	if !settings.PaymentMethodEnabled(method) {
		return "", ErrPaymentMethodDisabled
	}
	return method, nil
}

func (s *CheckoutService) existingOrder(sessionID string) (*models.Order, error) {
	order, err := s.orders.GetOrderByCheckoutSession(sessionID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *CheckoutService) loadSession(sessionID string) (*models.CheckoutSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCheckoutSessionNotFound
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if session == nil {
		return nil, ErrCheckoutSessionNotFound
	}
	return session, nil
}

func (s *CheckoutService) loadActiveSession(sessionID string) (*models.CheckoutSession, error) {
	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != constants.CheckoutStageSuccess && session.Expired(s.now()) {
		return nil, ErrCheckoutSessionExpired
	}
	return session, nil
}

// draftLinesFromCart 以提交详情时的购物车内容作为订单快照
func draftLinesFromCart(items []cart.Item) models.DraftLines {
	lines := make(models.DraftLines, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.DraftLine{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageRef:  item.ImageRef,
		})
	}
	return lines
}

// linesMatchCart 声明的明细与购物车逐项同商品同数量
func linesMatchCart(lines models.DraftLines, items []cart.Item) bool {
	if len(lines) != len(items) {
		return false
	}
	want := make(map[string]int, len(items))
	for _, item := range items {
		want[item.ID] += item.Quantity
	}
	for _, line := range lines {
		id := strings.TrimSpace(line.ItemID)
		if want[id] != line.Quantity {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}
