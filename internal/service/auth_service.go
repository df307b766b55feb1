package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "owner"

// CredentialVerifier 管理员凭据校验接口，可替换为外部身份提供方
type CredentialVerifier interface {
	Verify(ctx context.Context, password string) (subject string, err error)
}

// SharedSecretVerifier 单一共享口令校验，优先使用 bcrypt 哈希
type SharedSecretVerifier struct {
	secret     string
	secretHash string
}

// NewSharedSecretVerifier 根据配置创建共享口令校验器
func NewSharedSecretVerifier(cfg config.AdminAuthConfig) *SharedSecretVerifier {
	return &SharedSecretVerifier{
		secret:     cfg.Secret,
		secretHash: strings.TrimSpace(cfg.SecretHash),
	}
}

// Verify 校验口令，未配置口令时一律拒绝
func (v *SharedSecretVerifier) Verify(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrAdminSecretInvalid
	}
	if v.secretHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(v.secretHash), []byte(password)); err != nil {
			return "", ErrAdminSecretInvalid
		}
		return adminSubject, nil
	}
	if v.secret == "" {
		return "", ErrAdminSecretInvalid
	}
	if subtle.ConstantTimeCompare([]byte(v.secret), []byte(password)) != 1 {
		return "", ErrAdminSecretInvalid
	}
	return adminSubject, nil
}

// HashSecret 生成共享口令的 bcrypt 哈希
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminClaims 管理员会话 JWT 声明
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminSession 登录成功后签发的会话
type AdminSession struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// AdminAuthService 管理员认证服务
type AdminAuthService struct {
	verifier  CredentialVerifier
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAdminAuthService 创建管理员认证服务
func NewAdminAuthService(cfg config.AdminAuthConfig, verifier CredentialVerifier) *AdminAuthService {
	return &AdminAuthService{
		verifier:  verifier,
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL(),
		now:       time.Now,
	}
}

// Login 校验共享口令并签发固定有效期的会话令牌
func (s *AdminAuthService) Login(ctx context.Context, password string) (*AdminSession, error) {
	subject, err := s.verifier.Verify(ctx, password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		return nil, ErrAdminSecretInvalid
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	tokenID := uuid.NewString()
	claims := AdminClaims{
		Role: constants.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	logger.Infow("admin_login_succeeded", "token_id", tokenID, "expires_at", expiresAt)
	return &AdminSession{Token: token, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// ParseToken 解析并校验会话令牌，已吊销的令牌视为无效
func (s *AdminAuthService) ParseToken(ctx context.Context, tokenString string) (*AdminClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrSessionInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrSessionInvalid
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.Role != constants.RoleOwner {
		return nil, ErrSessionInvalid
	}
	revoked, err := cache.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		logger.Warnw("admin_token_revocation_check_failed", "token_id", claims.ID, "error", err)
		return nil, ErrSessionInvalid
	}
	if revoked {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

// Logout 吊销令牌直至其自然过期
func (s *AdminAuthService) Logout(ctx context.Context, claims *AdminClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := cache.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	logger.Infow("admin_logout", "token_id", claims.ID)
	return nil
}

// TTL 会话有效期
func (s *AdminAuthService) TTL() time.Duration {
	return s.ttl
}
