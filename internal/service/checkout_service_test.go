package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cart"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
)

// startOtpStage 建立购物车 [Masala Chai x2] 并提交详情，返回会话 ID 与购物车 ID
func startOtpStage(t *testing.T, f *serviceFixture, email string) (string, string) {
	t.Helper()
	ctx := context.Background()
	product := f.seedProduct(t, "Masala Chai", 25)
	cartID, _ := f.carts.ResolveID("")
	for i := 0; i < 2; i++ {
		if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
			t.Fatalf("add product failed: %v", err)
		}
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start checkout failed: %v", err)
	}
	if session.Stage != constants.CheckoutStageDetails {
		t.Fatalf("expected details stage, got %s", session.Stage)
	}
	session, err = f.checkout.SubmitDetails(ctx, session.ID, validDetails(email), "en")
	if err != nil {
		t.Fatalf("submit details failed: %v", err)
	}
	if session.Stage != constants.CheckoutStageOtp {
		t.Fatalf("expected otp stage, got %s", session.Stage)
	}
	return session.ID, cartID
}

func TestCheckoutScenarioWrongCodeThenRightCode(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, cartID := startOtpStage(t, f, "a@b.com")

	if f.dispatcher.count() != 1 || f.dispatcher.sent[0].to != "a@b.com" || f.dispatcher.sent[0].code != "482913" {
		t.Fatalf("unexpected dispatch: %+v", f.dispatcher.sent)
	}

	_, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "000000"})
	if !errors.Is(err, ErrInvalidCode) || !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected invalid code error, got %v", err)
	}
	view := f.carts.Get(ctx, cartID)
	if view.ItemCount != 2 || view.Total.String() != "50.00" {
		t.Fatalf("cart must be untouched after wrong code, got count=%d total=%s", view.ItemCount, view.Total.String())
	}
	state, err := f.checkout.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get checkout failed: %v", err)
	}
	if state.Session.Stage != constants.CheckoutStageOtp || state.OtpState != OtpStateSent {
		t.Fatalf("expected to remain in otp stage, got %s / %s", state.Session.Stage, state.OtpState)
	}
	if f.countOrders(t) != 0 {
		t.Fatalf("no order may be committed before verification")
	}

	order, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913", Locale: "en"})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.TotalAmount.String() != "50.00" || order.Status != constants.OrderStatusPending {
		t.Fatalf("unexpected order: total=%s status=%s", order.TotalAmount.String(), order.Status)
	}
	if order.PaymentMethod != constants.PaymentMethodCOD {
		t.Fatalf("expected default payment method COD, got %s", order.PaymentMethod)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Masala Chai" || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
	if view := f.carts.Get(ctx, cartID); view.ItemCount != 0 {
		t.Fatalf("cart should be cleared after commit, got %d items", view.ItemCount)
	}
	if len(f.notifier.placed) != 1 || f.notifier.placed[0].OrderID != order.ID {
		t.Fatalf("expected one order placed email task, got %+v", f.notifier.placed)
	}

	state, err = f.checkout.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get checkout failed: %v", err)
	}
	if state.Session.Stage != constants.CheckoutStageSuccess || state.Order == nil || state.Order.ID != order.ID {
		t.Fatalf("expected success stage with order, got %+v", state)
	}
}

func TestCheckoutConfirmIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, _ := startOtpStage(t, f, "a@b.com")

	first, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"})
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	second, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"})
	if err != nil {
		t.Fatalf("second confirm failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same order, got %d and %d", first.ID, second.ID)
	}
	if got := f.countOrders(t); got != 1 {
		t.Fatalf("expected exactly one order, got %d", got)
	}
}

func TestCheckoutCommitRaceKeepsSingleOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, _ := startOtpStage(t, f, "a@b.com")

	stale, err := f.checkout.loadSession(sessionID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	winner, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	draft := OrderDraft{
		Name:              stale.CustomerName,
		Email:             stale.CustomerEmail,
		Phone:             stale.CustomerPhone,
		Address:           stale.CustomerAddress,
		PaymentMethod:     stale.PaymentMethod,
		CheckoutSessionID: stale.ID,
		Lines:             stale.DraftItems,
	}
	loser, err := f.checkout.commit(ctx, stale, draft, "en", true)
	if err != nil {
		t.Fatalf("losing commit should resolve to the winner, got %v", err)
	}
	if loser.ID != winner.ID {
		t.Fatalf("expected winner order %d, got %d", winner.ID, loser.ID)
	}
	if got := f.countOrders(t); got != 1 {
		t.Fatalf("expected exactly one order, got %d", got)
	}
}

func TestCheckoutPersistenceFailureKeepsCartAndAllowsRetry(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, cartID := startOtpStage(t, f, "a@b.com")

	f.failCreate = true
	_, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"})
	if !errors.Is(err, ErrPersistence) || errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected persistence error distinct from code error, got %v", err)
	}
	if view := f.carts.Get(ctx, cartID); view.ItemCount != 2 {
		t.Fatalf("cart must be preserved on persistence failure, got %d", view.ItemCount)
	}
	state, err := f.checkout.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get checkout failed: %v", err)
	}
	if state.Session.Stage != constants.CheckoutStageOtp || state.OtpState != OtpStateVerified {
		t.Fatalf("expected otp stage with verified challenge, got %s / %s", state.Session.Stage, state.OtpState)
	}

	f.failCreate = false
	order, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"})
	if err != nil {
		t.Fatalf("retry confirm failed: %v", err)
	}
	if order.TotalAmount.String() != "50.00" {
		t.Fatalf("unexpected total %s", order.TotalAmount.String())
	}
	if f.dispatcher.count() != 1 {
		t.Fatalf("retry must not send a new code, sent %d", f.dispatcher.count())
	}
}

func TestCheckoutDispatchFailureStaysOnDetails(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Veg Samosa", 15)
	cartID, _ := f.carts.ResolveID("")
	if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
		t.Fatalf("add product failed: %v", err)
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.dispatcher.err = ErrEmailRecipientRejected
	_, err = f.checkout.SubmitDetails(ctx, session.ID, validDetails("nobody@example.com"), "en")
	if !errors.Is(err, ErrDispatch) || !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("expected dispatch error with reason, got %v", err)
	}
	if DispatchReasonKey(err) != "error.otp_dispatch_recipient_rejected" {
		t.Fatalf("unexpected reason key %s", DispatchReasonKey(err))
	}
	state, err := f.checkout.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if state.Session.Stage != constants.CheckoutStageDetails || state.OtpState != OtpStateIdle {
		t.Fatalf("expected details/idle, got %s/%s", state.Session.Stage, state.OtpState)
	}
}

func TestCheckoutDetailsValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Bun Maska", 30)
	cartID, _ := f.carts.ResolveID("")
	if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
		t.Fatalf("add product failed: %v", err)
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(d *CustomerDetails)
		wantErr error
	}{
		{"missing name", func(d *CustomerDetails) { d.Name = " " }, ErrNameRequired},
		{"bad email", func(d *CustomerDetails) { d.Email = "not-an-email" }, ErrEmailInvalid},
		{"short phone", func(d *CustomerDetails) { d.Phone = "12345" }, ErrPhoneInvalid},
		{"missing address", func(d *CustomerDetails) { d.Address = "" }, ErrAddressRequired},
		{"unknown payment", func(d *CustomerDetails) { d.PaymentMethod = "CARD" }, ErrPaymentMethodInvalid},
		{"upi disabled", func(d *CustomerDetails) { d.PaymentMethod = "upi" }, ErrPaymentMethodDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validDetails("a@b.com")
			tc.mutate(&details)
			_, err := f.checkout.SubmitDetails(ctx, session.ID, details, "en")
			if !errors.Is(err, tc.wantErr) || !errors.Is(err, ErrValidation) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if f.dispatcher.count() != 0 {
		t.Fatalf("no code may be sent for invalid details")
	}
}

func TestCheckoutRejectsWhenStoreClosed(t *testing.T) {
	closed := models.DefaultStoreSettings()
	closed.StoreOpen = false
	f := newServiceFixture(t, func(o *fixtureOptions) { o.settings = &closed })
	ctx := context.Background()
	product := f.seedProduct(t, "Cutting Chai", 10)
	cartID, _ := f.carts.ResolveID("")
	if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
		t.Fatalf("add product failed: %v", err)
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := f.checkout.SubmitDetails(ctx, session.ID, validDetails("a@b.com"), "en"); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected store closed, got %v", err)
	}
}

func TestCheckoutEmptyCartShortCircuits(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Masala Chai", 25)
	cartID, _ := f.carts.ResolveID("")

	if _, err := f.checkout.Start(ctx, cartID); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected empty cart on start, got %v", err)
	}

	if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
		t.Fatalf("add product failed: %v", err)
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	// 另一个标签页清空了购物车
	if _, err := f.carts.Clear(ctx, cartID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := f.checkout.SubmitDetails(ctx, session.ID, validDetails("a@b.com"), "en"); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected empty cart, got %v", err)
	}
	if f.dispatcher.count() != 0 {
		t.Fatalf("no code may be sent for an empty cart")
	}
}

func TestCheckoutResetDiscardsChallenge(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913", "135790"}
	ctx := context.Background()
	sessionID, _ := startOtpStage(t, f, "a@b.com")

	session, err := f.checkout.Reset(ctx, sessionID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if session.Stage != constants.CheckoutStageDetails {
		t.Fatalf("expected details stage, got %s", session.Stage)
	}
	if _, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"}); !errors.Is(err, ErrCheckoutStageInvalid) {
		t.Fatalf("confirm from details must be refused, got %v", err)
	}

	if _, err := f.checkout.SubmitDetails(ctx, sessionID, validDetails("c@d.com"), "en"); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if _, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"}); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("old code must be invalid after email change, got %v", err)
	}
	order, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "135790"})
	if err != nil {
		t.Fatalf("confirm with new code failed: %v", err)
	}
	if order.CustomerEmail != "c@d.com" {
		t.Fatalf("expected new email on order, got %s", order.CustomerEmail)
	}
}

func TestCheckoutExpiredSessionRejected(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, _ := startOtpStage(t, f, "a@b.com")

	f.checkout.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	if _, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: sessionID, Code: "482913"}); !errors.Is(err, ErrCheckoutSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if f.countOrders(t) != 0 {
		t.Fatalf("expired session must not commit")
	}
}

// startDirectOrder 建立购物车 [Masala Chai x2] 并开启会话，返回会话、购物车 ID 与下单输入
func startDirectOrder(t *testing.T, f *serviceFixture) (*models.CheckoutSession, string, PlaceOrderInput) {
	t.Helper()
	ctx := context.Background()
	product := f.seedProduct(t, "Masala Chai", 25)
	cartID, _ := f.carts.ResolveID("")
	for i := 0; i < 2; i++ {
		if _, err := f.carts.AddProduct(ctx, cartID, product.ID); err != nil {
			t.Fatalf("add product failed: %v", err)
		}
	}
	session, err := f.checkout.Start(ctx, cartID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	input := PlaceOrderInput{
		CheckoutSessionID: session.ID,
		Details:           validDetails("a@b.com"),
		Items: models.DraftLines{
			{ItemID: strconv.FormatUint(uint64(product.ID), 10), Name: "Masala Chai", UnitPrice: models.NewMoneyFromInt(25), Quantity: 2},
		},
		Total: models.NewMoneyFromInt(50),
	}
	return session, cartID, input
}

func verifyStandalone(t *testing.T, f *serviceFixture, sessionID, code string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.checkout.SendOtp(ctx, sessionID, "a@b.com", "en"); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	if _, err := f.checkout.VerifyOtp(ctx, sessionID, code); err != nil {
		t.Fatalf("verify otp failed: %v", err)
	}
}

func TestPlaceOrderRequiresVerifiedChallenge(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"246810"}
	ctx := context.Background()
	session, cartID, input := startDirectOrder(t, f)

	if _, err := f.checkout.PlaceOrder(ctx, input); !errors.Is(err, ErrOtpNotRequested) {
		t.Fatalf("expected unverified rejection, got %v", err)
	}

	verifyStandalone(t, f, session.ID, "246810")
	view, err := f.checkout.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if view.Session.Stage != constants.CheckoutStageOtp || view.OtpState != OtpStateVerified {
		t.Fatalf("send should move session to otp, got stage=%s otp=%s", view.Session.Stage, view.OtpState)
	}

	mismatch := input
	mismatch.Total = models.NewMoneyFromInt(40)
	if _, err := f.checkout.PlaceOrder(ctx, mismatch); !errors.Is(err, ErrOrderTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}

	order, err := f.checkout.PlaceOrder(ctx, input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.TotalAmount.String() != "50.00" || order.OrderNo[:2] != constants.OrderNoPrefix {
		t.Fatalf("unexpected order %+v", order)
	}
	if view := f.carts.Get(ctx, cartID); view.ItemCount != 0 {
		t.Fatalf("cart should be cleared after order")
	}
}

func TestPlaceOrderNeverCommitsFromDetails(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"246810"}
	ctx := context.Background()
	session, _, input := startDirectOrder(t, f)
	verifyStandalone(t, f, session.ID, "246810")

	// 已验证的挑战仍在，但会话被退回 details
	if err := f.db.Model(&models.CheckoutSession{}).Where("id = ?", session.ID).
		Update("stage", constants.CheckoutStageDetails).Error; err != nil {
		t.Fatalf("rewind stage failed: %v", err)
	}
	if _, err := f.checkout.PlaceOrder(ctx, input); !errors.Is(err, ErrCheckoutStageInvalid) {
		t.Fatalf("expected stage rejection, got %v", err)
	}
	if f.countOrders(t) != 0 {
		t.Fatalf("no order may be committed from details")
	}
}

func TestConfirmRejectsSessionWithoutDraft(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"246810"}
	ctx := context.Background()
	session, _, _ := startDirectOrder(t, f)
	if _, err := f.checkout.SendOtp(ctx, session.ID, "a@b.com", "en"); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	if _, err := f.checkout.Confirm(ctx, ConfirmInput{SessionID: session.ID, Code: "246810"}); !errors.Is(err, ErrCheckoutStageInvalid) {
		t.Fatalf("expected stage rejection without draft, got %v", err)
	}
}

func TestPlaceOrderAddressOptional(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"246810"}
	ctx := context.Background()
	session, _, input := startDirectOrder(t, f)
	verifyStandalone(t, f, session.ID, "246810")

	input.Details.Address = "   "
	order, err := f.checkout.PlaceOrder(ctx, input)
	if err != nil {
		t.Fatalf("place order without address failed: %v", err)
	}
	if order.CustomerAddress != "" {
		t.Fatalf("expected empty address, got %q", order.CustomerAddress)
	}
}

func TestPlaceOrderKeepsCartWhenLinesDiffer(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"246810"}
	ctx := context.Background()
	session, cartID, input := startDirectOrder(t, f)
	verifyStandalone(t, f, session.ID, "246810")

	input.Items[0].Quantity = 1
	input.Total = models.NewMoneyFromInt(25)
	if _, err := f.checkout.PlaceOrder(ctx, input); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if view := f.carts.Get(ctx, cartID); view.ItemCount != 2 {
		t.Fatalf("cart must be kept when declared lines differ, got count=%d", view.ItemCount)
	}
}

func TestLinesMatchCart(t *testing.T) {
	items := []cart.Item{{ID: "1", Quantity: 2}, {ID: "2", Quantity: 1}}
	cases := []struct {
		name  string
		lines models.DraftLines
		want  bool
	}{
		{"same lines any order", models.DraftLines{{ItemID: "2", Quantity: 1}, {ItemID: "1", Quantity: 2}}, true},
		{"quantity differs", models.DraftLines{{ItemID: "1", Quantity: 1}, {ItemID: "2", Quantity: 1}}, false},
		{"missing line", models.DraftLines{{ItemID: "1", Quantity: 2}}, false},
		{"duplicate line", models.DraftLines{{ItemID: "1", Quantity: 2}, {ItemID: "1", Quantity: 2}}, false},
	}
	for _, tc := range cases {
		if got := linesMatchCart(tc.lines, items); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestPurgeExpiredRemovesAbandonedSessions(t *testing.T) {
	f := newServiceFixture(t)
	f.codes = []string{"482913"}
	ctx := context.Background()
	sessionID, _ := startOtpStage(t, f, "a@b.com")

	f.checkout.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	result, err := f.checkout.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if result.Sessions != 1 || result.Challenges != 1 {
		t.Fatalf("unexpected purge result %+v", result)
	}
	if _, err := f.checkout.Get(ctx, sessionID); !errors.Is(err, ErrCheckoutSessionNotFound) {
		t.Fatalf("expected purged session to be gone, got %v", err)
	}
}
