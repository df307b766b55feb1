package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
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

func TestEmailServiceSendOtpCode(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer)
	if err := svc.SendOtpCode(context.Background(), "a@b.com", "482913", 10*time.Minute, "en"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "a@b.com" || mail.subject != "Your Monu Chai Order Verification Code" {
		t.Fatalf("unexpected mail header: %+v", mail)
	}
	if !strings.Contains(mail.body, "482913") || !strings.Contains(mail.body, "10 minutes") {
		t.Fatalf("unexpected body: %s", mail.body)
	}
}

func TestEmailServiceSendOrderPlaced(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer)
	order := &models.Order{
		OrderNo:       "MC202603091405071234",
		CustomerName:  "Ravi",
		CustomerEmail: "ravi@example.com",
		TotalAmount:   models.NewMoneyFromInt(50),
		Items: []models.OrderItem{
			{ProductName: "Masala Chai", Quantity: 2, TotalPrice: models.NewMoneyFromInt(50)},
		},
	}
	if err := svc.SendOrderPlaced(context.Background(), order, "en"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	mail := mailer.sent[0]
	if !strings.Contains(mail.subject, order.OrderNo) {
		t.Fatalf("subject should carry order no: %s", mail.subject)
	}
	if !strings.Contains(mail.body, "₹50.00") || !strings.Contains(mail.body, "2 x Masala Chai") {
		t.Fatalf("unexpected body: %s", mail.body)
	}
}

func TestSMTPMailerRejectsBeforeDialing(t *testing.T) {
	disabled := NewSMTPMailer(config.EmailConfig{})
	if err := disabled.Send(context.Background(), "a@b.com", "s", "b"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	unconfigured := NewSMTPMailer(config.EmailConfig{Enabled: true})
	if err := unconfigured.Send(context.Background(), "a@b.com", "s", "b"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	configured := NewSMTPMailer(config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 587, From: "noreply@example.com"})
	if err := configured.Send(context.Background(), "not an email", "s", "b"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	cases := []struct {
		raw      string
		rejected bool
	}{
		{"550 5.1.1 <x@y.com>: Recipient address rejected", true},
		{"550 mailbox unavailable", true},
		{"553 sorry, that address is not allowed", true},
		{"421 service not available", false},
		{"dial tcp: connection refused", false},
	}
	for _, tc := range cases {
		err := normalizeEmailSendError(errors.New(tc.raw))
		if got := errors.Is(err, ErrEmailRecipientRejected); got != tc.rejected {
			t.Fatalf("%q: expected rejected=%v, got %v", tc.raw, tc.rejected, got)
		}
	}
}

func TestDispatchReasonKey(t *testing.T) {
	cases := map[string]error{
		"":                                       nil,
		"error.otp_dispatch_recipient_rejected": wrapDispatch(ErrEmailRecipientRejected),
		"error.otp_dispatch_unavailable":        wrapDispatch(ErrEmailServiceDisabled),
		"error.otp_dispatch_failed":             wrapDispatch(errors.New("timeout")),
	}
	for want, err := range cases {
		if got := DispatchReasonKey(err); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestBuildEmailMessageEncodesSubject(t *testing.T) {
	msg := string(buildEmailMessage("noreply@example.com", "a@b.com", "आपका कोड", "body"))
	if !strings.Contains(msg, "Subject: =?UTF-8?q?") {
		t.Fatalf("subject should be Q-encoded: %s", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body should follow headers: %q", msg)
	}
}
