package service

import (
	"context"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PhoneVerifier 校验手机号归属的扩展点，默认实现只检查格式
type PhoneVerifier interface {
	VerifyPhone(ctx context.Context, phone string) error
}

// FormatOnlyPhoneVerifier 仅校验 10 位数字格式，不验证归属
type FormatOnlyPhoneVerifier struct{}

// VerifyPhone 实现 PhoneVerifier
func (FormatOnlyPhoneVerifier) VerifyPhone(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrPhoneInvalid
	}
	return nil
}

// PhoneClaims 顾客手机号会话 JWT 声明
type PhoneClaims struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// PhoneSession 签发的顾客会话
type PhoneSession struct {
	Phone     string
	Token     string
	ExpiresAt time.Time
}

// PhoneSessionService 顾客“我的订单”会话，以手机号为键
type PhoneSessionService struct {
	verifier  PhoneVerifier
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewPhoneSessionService 创建顾客会话服务
func NewPhoneSessionService(cfg config.UserSessionConfig, verifier PhoneVerifier) *PhoneSessionService {
	if verifier == nil {
		verifier = FormatOnlyPhoneVerifier{}
	}
	return &PhoneSessionService{
		verifier:  verifier,
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL(),
		now:       time.Now,
	}
}

// Login 校验手机号并签发长期会话
func (s *PhoneSessionService) Login(ctx context.Context, phone string) (*PhoneSession, error) {
	phone = strings.TrimSpace(phone)
	if err := s.verifier.VerifyPhone(ctx, phone); err != nil {
		return nil, err
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := PhoneClaims{
		Phone: phone,
		Role:  constants.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	logger.Infow("phone_session_issued", "expires_at", expiresAt)
	return &PhoneSession{Phone: phone, Token: token, ExpiresAt: expiresAt}, nil
}

// Parse 解析顾客会话，返回手机号
func (s *PhoneSessionService) Parse(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrSessionInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &PhoneClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrSessionInvalid
	}
	if claims.Role != constants.RoleCustomer || !phonePattern.MatchString(claims.Phone) {
		return "", ErrSessionInvalid
	}
	return claims.Phone, nil
}

// TTL 会话有效期
func (s *PhoneSessionService) TTL() time.Duration {
	return s.ttl
}
