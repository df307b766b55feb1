package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/provider"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject, body: body})
	return nil
}

func setupConsumer(t *testing.T) (*Consumer, *recordingMailer, *models.Order) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	orderRepo := repository.NewOrderRepository(db)
	order := &models.Order{
		OrderNo:         "MC202603091405071234",
		CustomerName:    "Ravi",
		CustomerEmail:   "ravi@example.com",
		CustomerPhone:   "9876543210",
		CustomerAddress: "12 Station Road",
		TotalAmount:     models.NewMoneyFromInt(50),
		Status:          "pending",
		PaymentMethod:   "COD",
	}
	items := []models.OrderItem{{
		ProductID:   1,
		ProductName: "Masala Chai",
		UnitPrice:   models.NewMoneyFromInt(25),
		Quantity:    2,
		TotalPrice:  models.NewMoneyFromInt(50),
	}}
	if err := orderRepo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	mailer := &recordingMailer{}
	container := &provider.Container{
		Config:       &config.Config{},
		OrderRepo:    orderRepo,
		EmailService: service.NewEmailService(mailer),
	}
	return NewConsumer(container), mailer, order
}

func TestHandleOrderPlacedEmail(t *testing.T) {
	consumer, mailer, order := setupConsumer(t)
	task, err := queue.NewOrderPlacedEmailTask(queue.OrderPlacedEmailPayload{OrderID: order.ID, Locale: "en"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderPlacedEmail(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "ravi@example.com" || !strings.Contains(mail.subject, order.OrderNo) {
		t.Fatalf("unexpected mail %+v", mail)
	}
	if !strings.Contains(mail.body, "2 x Masala Chai") {
		t.Fatalf("mail should list snapshot items: %s", mail.body)
	}
}

func TestHandleOrderPlacedEmailSkipsMissingOrder(t *testing.T) {
	consumer, mailer, _ := setupConsumer(t)
	for _, id := range []uint{0, 999} {
		task, _ := queue.NewOrderPlacedEmailTask(queue.OrderPlacedEmailPayload{OrderID: id})
		if err := consumer.handleOrderPlacedEmail(context.Background(), task); err != nil {
			t.Fatalf("order %d: expected skip, got %v", id, err)
		}
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("no mail expected, got %d", len(mailer.sent))
	}
}

func TestHandleOrderPlacedEmailBadPayloadSkipsRetry(t *testing.T) {
	consumer, _, _ := setupConsumer(t)
	task := asynq.NewTask(queue.TaskOrderPlacedEmail, []byte("{not json"))
	if err := consumer.handleOrderPlacedEmail(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}
}

func TestHandleOrderEmailSendErrors(t *testing.T) {
	cases := []struct {
		name      string
		mailErr   error
		wantNil   bool
		skipRetry bool
	}{
		{"mailer disabled", service.ErrEmailServiceDisabled, true, false},
		{"mailer not configured", service.ErrEmailServiceNotConfigured, true, false},
		{"recipient rejected", fmt.Errorf("%w: 550", service.ErrEmailRecipientRejected), false, true},
		{"transport failure", errors.New("dial tcp: i/o timeout"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consumer, mailer, order := setupConsumer(t)
			mailer.err = tc.mailErr
			task, _ := queue.NewOrderPlacedEmailTask(queue.OrderPlacedEmailPayload{OrderID: order.ID})
			err := consumer.handleOrderPlacedEmail(context.Background(), task)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tc.skipRetry {
				t.Fatalf("skip retry: want %v, got %v (%v)", tc.skipRetry, got, err)
			}
		})
	}
}

func TestHandleOrderStatusEmail(t *testing.T) {
	consumer, mailer, order := setupConsumer(t)

	stale, _ := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: order.ID, Status: "completed"})
	if err := consumer.handleOrderStatusEmail(context.Background(), stale); err != nil {
		t.Fatalf("stale task should be skipped, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("stale status must not be mailed")
	}

	task, _ := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: order.ID, Status: "pending", Locale: "en"})
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0].subject, order.OrderNo) {
		t.Fatalf("unexpected mails %+v", mailer.sent)
	}
}

type countingPurger struct {
	calls int
	err   error
	ran   chan struct{}
}

func (p *countingPurger) PurgeExpired(ctx context.Context) (service.PurgeResult, error) {
	p.calls++
	if p.ran != nil {
		select {
		case p.ran <- struct{}{}:
		default:
		}
	}
	if p.err != nil {
		return service.PurgeResult{}, p.err
	}
	return service.PurgeResult{Challenges: 2, Sessions: 1}, nil
}

func TestPurgeLoopRunOnce(t *testing.T) {
	purger := &countingPurger{}
	loop := NewPurgeLoop(purger, 0)
	if loop.interval != defaultPurgeInterval {
		t.Fatalf("expected default interval, got %s", loop.interval)
	}
	result, err := loop.RunOnce(context.Background())
	if err != nil || result.Challenges != 2 || result.Sessions != 1 {
		t.Fatalf("unexpected result %+v (%v)", result, err)
	}

	purger.err = errors.New("db down")
	if _, err := loop.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected purge error")
	}
}

func TestPurgeServiceStopsWithContext(t *testing.T) {
	purger := &countingPurger{ran: make(chan struct{}, 1)}
	svc := NewPurgeService(purger, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan error, 1)
	go func() { started <- svc.Start(ctx) }()

	select {
	case <-purger.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("purge loop did not run")
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := <-started; err != nil {
		t.Fatalf("start returned %v", err)
	}
}

func TestNewServiceRequiresQueueAndConsumer(t *testing.T) {
	if _, err := NewService(nil, &Consumer{}); !errors.Is(err, errQueueDisabled) {
		t.Fatalf("expected queue disabled, got %v", err)
	}
	if _, err := NewService(&config.QueueConfig{Enabled: false}, &Consumer{}); !errors.Is(err, errQueueDisabled) {
		t.Fatalf("expected queue disabled, got %v", err)
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); !errors.Is(err, errNilConsumer) {
		t.Fatalf("expected nil consumer error, got %v", err)
	}
	var svc *Service
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop on nil service should be a no-op, got %v", err)
	}
	if err := svc.Start(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}
