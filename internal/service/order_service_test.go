package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

func (f *serviceFixture) createOrder(t *testing.T, phone string, total int64) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrderTx(f.db, OrderDraft{
		Name:          "Ravi Kumar",
		Email:         "ravi@example.com",
		Phone:         phone,
		Address:       "Shop 4, NH24, Ghaziabad",
		PaymentMethod: constants.PaymentMethodCOD,
		Lines: models.DraftLines{
			{ItemID: "7", Name: "Kulhad Chai", UnitPrice: models.NewMoneyFromInt(total), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestGenerateOrderNoFormat(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 7, 0, time.Local)
	orderNo := generateOrderNo(now)
	if !regexp.MustCompile(`^MC20260309140507[0-9]{4}$`).MatchString(orderNo) {
		t.Fatalf("unexpected order no %s", orderNo)
	}
}

func TestCreateOrderSnapshotsLines(t *testing.T) {
	f := newServiceFixture(t)
	order, err := f.orders.CreateOrderTx(f.db, OrderDraft{
		Name:          "Asha",
		Email:         "asha@example.com",
		Phone:         "9000000001",
		Address:       "Sector 62",
		PaymentMethod: constants.PaymentMethodUPI,
		Lines: models.DraftLines{
			{ItemID: "3", Name: "Masala Chai", UnitPrice: models.NewMoneyFromInt(25), Quantity: 2},
			{ItemID: "4", Name: "Veg Sandwich", UnitPrice: models.NewMoneyFromInt(60), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if !regexp.MustCompile(`^MC\d{14}\d{4}$`).MatchString(order.OrderNo) {
		t.Fatalf("unexpected order no %s", order.OrderNo)
	}
	if order.TotalAmount.String() != "110.00" {
		t.Fatalf("expected total 110.00, got %s", order.TotalAmount.String())
	}

	stored, err := f.orders.GetOrderForAdmin(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	if stored.Items[0].ProductName != "Masala Chai" || stored.Items[0].TotalPrice.String() != "50.00" {
		t.Fatalf("unexpected snapshot %+v", stored.Items[0])
	}
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("new orders start pending, got %s", stored.Status)
	}
}

func TestCreateOrderRejectsBadLines(t *testing.T) {
	f := newServiceFixture(t)
	cases := []struct {
		name  string
		lines models.DraftLines
		want  error
	}{
		{"empty", models.DraftLines{}, ErrCartEmpty},
		{"non numeric id", models.DraftLines{{ItemID: "chai", Name: "x", UnitPrice: models.NewMoneyFromInt(1), Quantity: 1}}, ErrCartItemInvalid},
		{"zero quantity", models.DraftLines{{ItemID: "1", Name: "x", UnitPrice: models.NewMoneyFromInt(1), Quantity: 0}}, ErrCartItemInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrderTx(f.db, OrderDraft{Name: "A", Phone: "9000000001", Lines: tc.lines})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if f.countOrders(t) != 0 {
		t.Fatalf("no order may be stored for invalid lines")
	}
}

func TestPermissivePolicyAllowsAnyTransition(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "9000000001", 20)

	for _, target := range []string{
		constants.OrderStatusCompleted,
		constants.OrderStatusPending,
		constants.OrderStatusCancelled,
		constants.OrderStatusReady,
	} {
		updated, err := f.orders.UpdateOrderStatus(ctx, order.ID, target, "en")
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("expected %s, got %s", target, updated.Status)
		}
	}
	stored, _ := f.orders.GetOrderForAdmin(order.ID)
	if stored.Status != constants.OrderStatusReady {
		t.Fatalf("expected stored status ready, got %s", stored.Status)
	}
	if stored.TotalAmount.String() != "20.00" || stored.CustomerName != "Ravi Kumar" {
		t.Fatalf("status update must not touch other fields: %+v", stored)
	}
}

func TestLinearPolicyRejectsSkips(t *testing.T) {
	f := newServiceFixture(t, func(o *fixtureOptions) { o.policy = LinearPolicy() })
	ctx := context.Background()
	order := f.createOrder(t, "9000000001", 20)

	if _, err := f.orders.UpdateOrderStatus(ctx, order.ID, constants.OrderStatusCompleted, "en"); !errors.Is(err, ErrOrderTransitionNotAllowed) {
		t.Fatalf("expected transition not allowed, got %v", err)
	}
	for _, target := range []string{constants.OrderStatusPreparing, constants.OrderStatusReady, constants.OrderStatusCompleted} {
		if _, err := f.orders.UpdateOrderStatus(ctx, order.ID, target, "en"); err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, order.ID, constants.OrderStatusCancelled, "en"); !errors.Is(err, ErrConflict) {
		t.Fatalf("terminal order must not change, got %v", err)
	}
	current, nexts, err := f.orders.AllowedTransitions(order.ID)
	if err != nil || current != constants.OrderStatusCompleted || len(nexts) != 0 {
		t.Fatalf("unexpected transitions %s %v %v", current, nexts, err)
	}
}

func TestUpdateOrderStatusEdgeCases(t *testing.T) {
	f := newServiceFixture(t, func(o *fixtureOptions) {
		o.notify = config.NotifyConfig{OrderStatusEmail: true}
	})
	ctx := context.Background()
	order := f.createOrder(t, "9000000001", 20)

	if _, err := f.orders.UpdateOrderStatus(ctx, order.ID, "shipped", "en"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, 9999, constants.OrderStatusReady, "en"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	same, err := f.orders.UpdateOrderStatus(ctx, order.ID, constants.OrderStatusPending, "en")
	if err != nil || same.Status != constants.OrderStatusPending {
		t.Fatalf("same status should be a no-op, got %v", err)
	}
	if len(f.notifier.status) != 0 {
		t.Fatalf("no-op must not notify")
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, order.ID, " Preparing ", "hi"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(f.notifier.status) != 1 || f.notifier.status[0].Status != constants.OrderStatusPreparing || f.notifier.status[0].Locale != "hi" {
		t.Fatalf("expected one status email task, got %+v", f.notifier.status)
	}
}

func TestPolicyNextOrdering(t *testing.T) {
	linear := PolicyByName("LINEAR")
	if linear.Name() != constants.StatusPolicyLinear {
		t.Fatalf("expected linear policy, got %s", linear.Name())
	}
	want := []string{constants.OrderStatusPreparing, constants.OrderStatusCancelled}
	if got := linear.Next(constants.OrderStatusPending); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected next %v", got)
	}
	if PolicyByName("whatever").Name() != constants.StatusPolicyPermissive {
		t.Fatalf("unknown names fall back to permissive")
	}
	if got := PermissivePolicy().Next(constants.OrderStatusReady); len(got) != len(constants.OrderStatuses)-1 {
		t.Fatalf("unexpected permissive next %v", got)
	}
}

func TestSummaryByPhone(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	first := f.createOrder(t, "9123456789", 40)
	second := f.createOrder(t, "9123456789", 60)
	cancelled := f.createOrder(t, "9123456789", 100)
	f.createOrder(t, "9000000000", 500)

	if _, err := f.orders.UpdateOrderStatus(ctx, first.ID, constants.OrderStatusCompleted, "en"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, cancelled.ID, constants.OrderStatusCancelled, "en"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	summary, err := f.orders.SummaryByPhone("9123456789")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.OrderCount != 3 {
		t.Fatalf("expected 3 orders, got %d", summary.OrderCount)
	}
	if summary.TotalSpent.String() != "100.00" {
		t.Fatalf("cancelled orders are excluded from spend, got %s", summary.TotalSpent.String())
	}
	if summary.ActiveOrder == nil || summary.ActiveOrder.ID != second.ID {
		t.Fatalf("expected active order %d, got %+v", second.ID, summary.ActiveOrder)
	}
	if len(summary.Recent) != 3 {
		t.Fatalf("expected 3 recent orders, got %d", len(summary.Recent))
	}

	orders, total, err := f.orders.ListOrdersByPhone("9123456789", 1, 2)
	if err != nil || total != 3 || len(orders) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d err=%v", total, len(orders), err)
	}
	if _, err := f.orders.SummaryByPhone("12345"); !errors.Is(err, ErrPhoneInvalid) {
		t.Fatalf("expected invalid phone, got %v", err)
	}
}

func TestListOrdersForAdminFilters(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	a := f.createOrder(t, "9000000001", 10)
	f.createOrder(t, "9000000002", 20)
	if _, err := f.orders.UpdateOrderStatus(ctx, a.ID, constants.OrderStatusReady, "en"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	orders, total, err := f.orders.ListOrdersForAdmin(ctx, repository.OrderListFilter{Status: constants.OrderStatusReady, Page: 1, PageSize: 20})
	if err != nil || total != 1 || orders[0].ID != a.ID {
		t.Fatalf("unexpected status filter result: total=%d err=%v", total, err)
	}
	_, total, err = f.orders.ListOrdersForAdmin(ctx, repository.OrderListFilter{Page: 1, PageSize: 20})
	if err != nil || total != 2 {
		t.Fatalf("expected 2 orders, got %d (%v)", total, err)
	}
	if _, _, err := f.orders.ListOrdersForAdmin(ctx, repository.OrderListFilter{Status: "lost"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected invalid status filter, got %v", err)
	}
}
