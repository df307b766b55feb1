package service

import (
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"

	"github.com/mojocn/base64Captcha"
)

const captchaCharset = "0123456789abcdefghjkmnpqrstuvwxyz"

// CaptchaImageChallenge 图片验证码
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 管理员登录图片验证码
type CaptchaService struct {
	enabled bool
	image   config.CaptchaImageConfig
	store   base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	image := cfg.Image
	if image.MaxStore <= 0 {
		image.MaxStore = 10240
	}
	if image.ExpireSeconds <= 0 {
		image.ExpireSeconds = 300
	}
	return &CaptchaService{
		enabled: cfg.AdminLogin,
		image:   image,
		store:   base64Captcha.NewMemoryStore(image.MaxStore, time.Duration(image.ExpireSeconds)*time.Second),
	}
}

// Enabled 管理员登录是否需要验证码
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.enabled
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	driver := base64Captcha.NewDriverString(
		positiveOrDefault(s.image.Height, 80),
		positiveOrDefault(s.image.Width, 240),
		s.image.NoiseCount,
		s.image.ShowLine,
		positiveOrDefault(s.image.Length, 5),
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 校验验证码，未开启时直接通过；校验后验证码作废
func (s *CaptchaService) Verify(captchaID, captchaCode string) error {
	if !s.Enabled() {
		return nil
	}
	captchaID = strings.TrimSpace(captchaID)
	captchaCode = strings.ToLower(strings.TrimSpace(captchaCode))
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaInvalid
	}
	if !s.store.Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func positiveOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
