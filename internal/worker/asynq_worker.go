package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/provider"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlacedEmail, c.handleOrderPlacedEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

// purger 结账服务未装配时返回 nil
func (c *Consumer) purger() Purger {
	if c == nil || c.Container == nil || c.CheckoutService == nil || c.Config == nil {
		return nil
	}
	return c.CheckoutService
}

func (c *Consumer) handleOrderPlacedEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_placed_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderPlacedEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_order_placed_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, ok, err := c.loadOrderForEmail("worker_order_placed_email", payload.OrderID)
	if !ok {
		return err
	}
	if err := c.EmailService.SendOrderPlaced(ctx, order, payload.Locale); err != nil {
		return handleSendError("worker_order_placed_email", order, err)
	}
	logger.Infow("worker_order_placed_email_sent", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderStatusEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, ok, err := c.loadOrderForEmail("worker_order_status_email", payload.OrderID)
	if !ok {
		return err
	}
	// 任务排队期间状态可能再次变化，只通知入队时的状态
	if status := strings.TrimSpace(payload.Status); status != "" && status != order.Status {
		logger.Debugw("worker_order_status_email_skip_stale",
			"order_id", order.ID,
			"payload_status", status,
			"current_status", order.Status,
		)
		return nil
	}
	if err := c.EmailService.SendOrderStatus(ctx, order, payload.Locale); err != nil {
		return handleSendError("worker_order_status_email", order, err)
	}
	logger.Infow("worker_order_status_email_sent", "order_id", order.ID, "order_no", order.OrderNo, "status", order.Status)
	return nil
}

// loadOrderForEmail 读取订单，ok=false 时直接返回 err（nil 表示跳过）
func (c *Consumer) loadOrderForEmail(event string, orderID uint) (*models.Order, bool, error) {
	if orderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", orderID)
		return nil, false, nil
	}
	if c.EmailService == nil || c.OrderRepo == nil {
		logger.Warnw(event+"_skip_service_nil", "order_id", orderID)
		return nil, false, nil
	}
	order, err := c.OrderRepo.GetByID(orderID)
	if err != nil {
		logger.Warnw(event+"_fetch_order_failed", "order_id", orderID, "error", err)
		return nil, false, err
	}
	if order == nil {
		logger.Debugw(event+"_skip_order_not_found", "order_id", orderID)
		return nil, false, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		logger.Debugw(event+"_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil, false, nil
	}
	return order, true, nil
}

// handleSendError 收件人或配置问题不重试，传输错误交给 asynq 重试
func handleSendError(event string, order *models.Order, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured):
		logger.Debugw(event+"_skip_mailer_unavailable", "order_id", order.ID, "error", err)
		return nil
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailRecipientRejected):
		logger.Warnw(event+"_recipient_rejected", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		logger.Warnw(event+"_send_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
		return err
	}
}
