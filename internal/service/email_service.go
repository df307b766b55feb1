package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
)

// Mailer 邮件投递通道
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// OtpDispatcher 验证码投递通道
type OtpDispatcher interface {
	SendOtpCode(ctx context.Context, toEmail, code string, ttl time.Duration, locale string) error
}

// EmailService 邮件内容组装与发送
type EmailService struct {
	mailer Mailer
}

// NewEmailService 创建邮件服务
func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{mailer: mailer}
}

// SendOtpCode 发送下单验证码
func (s *EmailService) SendOtpCode(ctx context.Context, toEmail, code string, ttl time.Duration, locale string) error {
	minutes := int(ttl / time.Minute)
	if minutes <= 0 {
		minutes = 1
	}
	subject := i18n.T(locale, "email.otp_subject")
	body := i18n.Sprintf(locale, "email.otp_body", code, minutes)
	return s.mailer.Send(ctx, toEmail, subject, body)
}

// SendOrderPlaced 发送下单确认
func (s *EmailService) SendOrderPlaced(ctx context.Context, order *models.Order, locale string) error {
	if order == nil {
		return nil
	}
	subject := i18n.Sprintf(locale, "email.order_placed_subject", order.OrderNo)
	body := i18n.Sprintf(locale, "email.order_placed_body", order.CustomerName, order.OrderNo, "₹"+order.TotalAmount.String())
	if lines := formatOrderLines(order.Items); lines != "" {
		body += "\n\n" + lines
	}
	return s.mailer.Send(ctx, order.CustomerEmail, subject, body)
}

// SendOrderStatus 发送订单状态变更通知
func (s *EmailService) SendOrderStatus(ctx context.Context, order *models.Order, locale string) error {
	if order == nil {
		return nil
	}
	subject := i18n.Sprintf(locale, "email.order_status_subject", order.OrderNo, order.Status)
	body := i18n.Sprintf(locale, "email.order_status_body", order.CustomerName, order.OrderNo, order.Status)
	return s.mailer.Send(ctx, order.CustomerEmail, subject, body)
}

func formatOrderLines(items []models.OrderItem) string {
	var buf strings.Builder
	for _, item := range items {
		fmt.Fprintf(&buf, "%d x %s  ₹%s\n", item.Quantity, item.ProductName, item.TotalPrice.String())
	}
	return strings.TrimRight(buf.String(), "\n")
}

// SMTPMailer 基于 net/smtp 的投递实现，支持 SSL、STARTTLS 与明文
type SMTPMailer struct {
	cfg     config.EmailConfig
	timeout time.Duration
}

// NewSMTPMailer 创建 SMTP 投递器
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, timeout: 15 * time.Second}
}

// Send 发送纯文本邮件
func (m *SMTPMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	if !m.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if m.cfg.Host == "" || m.cfg.Port == 0 || m.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(m.cfg.From, m.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)
	return normalizeEmailSendError(m.deliver(ctx, toEmail, msg))
}

func (m *SMTPMailer) deliver(ctx context.Context, toEmail string, msg []byte) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = rawConn.SetDeadline(deadline)
	}

	conn := rawConn
	if m.cfg.UseSSL {
		conn = tls.Client(rawConn, &tls.Config{ServerName: m.cfg.Host})
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = rawConn.Close()
		return err
	}
	defer client.Close()

	if !m.cfg.UseSSL && m.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if m.cfg.Username != "" || m.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	return sendSMTPData(client, m.cfg.From, []string{toEmail}, msg)
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

var recipientRejectedKeywords = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"mailbox unavailable",
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range recipientRejectedKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.HasPrefix(message, "550") || strings.HasPrefix(message, "553") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}

// DispatchReasonKey 将投递失败映射为面向用户的文案 key
func DispatchReasonKey(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmailRecipientRejected), errors.Is(err, ErrInvalidEmail):
		return "error.otp_dispatch_recipient_rejected"
	case errors.Is(err, ErrEmailServiceDisabled), errors.Is(err, ErrEmailServiceNotConfigured):
		return "error.otp_dispatch_unavailable"
	default:
		return "error.otp_dispatch_failed"
	}
}
