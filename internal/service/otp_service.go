package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

const (
	otpCodeMin = 100000
	otpCodeMax = 999999
)

// OtpState 结账会话的验证码状态
type OtpState string

const (
	OtpStateIdle     OtpState = "idle"
	OtpStateSent     OtpState = "otp_sent"
	OtpStateVerified OtpState = "verified"
)

// OtpService 结账邮箱验证码服务，挑战记录按结账会话持久化并带有效期
type OtpService struct {
	repo       repository.OtpChallengeRepository
	dispatcher OtpDispatcher
	cfg        config.OtpConfig
	metrics    *metrics.Registry
	now        func() time.Time
	generate   func() (string, error)
}

// NewOtpService 创建验证码服务
func NewOtpService(repo repository.OtpChallengeRepository, dispatcher OtpDispatcher, cfg config.OtpConfig, reg *metrics.Registry) *OtpService {
	return &OtpService{
		repo:       repo,
		dispatcher: dispatcher,
		cfg:        cfg,
		metrics:    reg,
		now:        time.Now,
		generate:   generateOtpCode,
	}
}

// RequestOtp 生成并发送验证码，发送成功后覆盖会话原有挑战
func (s *OtpService) RequestOtp(ctx context.Context, sessionID, email, locale string) (*models.OtpChallenge, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	now := s.now()

	existing, err := s.repo.GetBySession(sessionID)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if existing != nil && existing.Email == email && existing.VerifiedAt == nil {
		if interval := s.cfg.ResendInterval(); interval > 0 && now.Sub(existing.IssuedAt) < interval {
			return nil, &ResendWaitError{Wait: interval - now.Sub(existing.IssuedAt)}
		}
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}
	ttl := s.cfg.TTL()
	if err := s.dispatcher.SendOtpCode(ctx, email, code, ttl, locale); err != nil {
		logger.Warnw("otp_dispatch_failed", "session_id", sessionID, "email", email, "error", err)
		s.metrics.OtpDispatched(metrics.OutcomeFailed)
		return nil, wrapDispatch(err)
	}

	challenge := &models.OtpChallenge{
		SessionID: sessionID,
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.repo.Replace(challenge); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	s.metrics.OtpDispatched(metrics.OutcomeOK)
	logger.Infow("otp_dispatched", "session_id", sessionID, "email", email, "expires_at", challenge.ExpiresAt)
	return challenge, nil
}

// VerifyOtp 校验验证码；已验证的挑战再次提交相同验证码视为成功
func (s *OtpService) VerifyOtp(ctx context.Context, sessionID, email, code string) (*models.OtpChallenge, error) {
	challenge, err := s.repo.GetBySession(sessionID)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if challenge == nil {
		return nil, ErrOtpNotRequested
	}
	if email != "" && !strings.EqualFold(strings.TrimSpace(email), challenge.Email) {
		return nil, ErrOtpNotRequested
	}

	code = strings.TrimSpace(code)
	matches := subtle.ConstantTimeCompare([]byte(code), []byte(challenge.Code)) == 1
	if challenge.Verified() {
		if !matches {
			s.metrics.OtpVerified(metrics.OutcomeMismatch)
			return nil, ErrOtpMismatch
		}
		return challenge, nil
	}

	now := s.now()
	if challenge.Expired(now) {
		s.metrics.OtpVerified(metrics.OutcomeExpired)
		return nil, ErrOtpExpired
	}
	if s.cfg.MaxAttempts > 0 && challenge.AttemptCount >= s.cfg.MaxAttempts {
		s.metrics.OtpVerified(metrics.OutcomeRejected)
		return nil, ErrOtpAttemptsExceeded
	}
	if !matches {
		if err := s.repo.IncrementAttempt(challenge.ID); err != nil {
			logger.Warnw("otp_attempt_increment_failed", "session_id", sessionID, "error", err)
		}
		s.metrics.OtpVerified(metrics.OutcomeMismatch)
		return nil, ErrOtpMismatch
	}
	marked, err := s.repo.MarkVerified(challenge.ID, code, now)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if !marked {
		// 读取后挑战已被重发覆盖，提交的是旧验证码
		s.metrics.OtpVerified(metrics.OutcomeMismatch)
		return nil, ErrOtpMismatch
	}
	challenge.VerifiedAt = &now
	s.metrics.OtpVerified(metrics.OutcomeOK)
	return challenge, nil
}

// Reset 丢弃会话的验证码挑战，回到 idle
func (s *OtpService) Reset(ctx context.Context, sessionID string) error {
	if err := s.repo.DeleteBySession(sessionID); err != nil {
		return wrapPersistence(nil, err)
	}
	return nil
}

// State 返回会话当前的验证码状态
func (s *OtpService) State(ctx context.Context, sessionID string) (OtpState, *models.OtpChallenge, error) {
	challenge, err := s.repo.GetBySession(sessionID)
	if err != nil {
		return OtpStateIdle, nil, wrapPersistence(nil, err)
	}
	switch {
	case challenge == nil:
		return OtpStateIdle, nil, nil
	case challenge.Verified():
		return OtpStateVerified, challenge, nil
	default:
		return OtpStateSent, challenge, nil
	}
}

// RequireVerified 确认会话已有针对该邮箱的已验证挑战
func (s *OtpService) RequireVerified(ctx context.Context, sessionID, email string) error {
	state, challenge, err := s.State(ctx, sessionID)
	if err != nil {
		return err
	}
	if state != OtpStateVerified || !strings.EqualFold(challenge.Email, strings.TrimSpace(email)) {
		return ErrOtpNotRequested
	}
	return nil
}

// PurgeExpired 清理在 before 之前过期的挑战
func (s *OtpService) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteExpired(before)
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || !strings.Contains(trimmed[strings.LastIndex(trimmed, "@")+1:], ".") {
		return "", ErrEmailInvalid
	}
	return trimmed, nil
}

// generateOtpCode 在 [100000, 999999] 内均匀生成 6 位数字
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeMax-otpCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp failed: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpCodeMin), nil
}
