package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

const (
	storeSettingsCacheKey = "settings:store"
	storeSettingsCacheTTL = 5 * time.Minute
)

// StoreSettingsService 店铺设置服务，单例读写
type StoreSettingsService struct {
	repo repository.StoreSettingsRepository
}

// NewStoreSettingsService 创建店铺设置服务
func NewStoreSettingsService(repo repository.StoreSettingsRepository) *StoreSettingsService {
	return &StoreSettingsService{repo: repo}
}

// Get 读取设置；未保存过时返回默认值，读取不会创建记录
func (s *StoreSettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	var cached models.StoreSettings
	if hit, err := cache.GetJSON(ctx, storeSettingsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	settings, err := s.repo.Get()
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if settings == nil {
		defaults := models.DefaultStoreSettings()
		return &defaults, nil
	}
	settings.Timings = mergeTimings(settings.Timings)
	if err := cache.SetJSON(ctx, storeSettingsCacheKey, settings, storeSettingsCacheTTL); err != nil {
		logger.Debugw("store_settings_cache_set_failed", "error", err)
	}
	return settings, nil
}

// StoreSettingsInput 后台提交的完整设置
type StoreSettingsInput struct {
	StoreName      string              `json:"store_name"`
	LogoURL        string              `json:"logo_url"`
	Description    string              `json:"description"`
	Phone          string              `json:"phone"`
	Email          string              `json:"email"`
	Address        string              `json:"address"`
	GoogleMapsLink string              `json:"google_maps_link"`
	CodEnabled     bool                `json:"cod_enabled"`
	UpiEnabled     bool                `json:"upi_enabled"`
	UpiID          string              `json:"upi_id"`
	UpiQrCodeURL   string              `json:"upi_qr_code_url"`
	StoreOpen      bool                `json:"store_open"`
	Timings        models.StoreTimings `json:"timings"`
	AdminPhotoURL  string              `json:"admin_photo_url"`
}

// Update 校验后整体写入 id=1，并发写入以最后一次为准
func (s *StoreSettingsService) Update(ctx context.Context, input StoreSettingsInput) (*models.StoreSettings, error) {
	settings, err := normalizeStoreSettings(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(settings); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if err := cache.Del(ctx, storeSettingsCacheKey); err != nil {
		logger.Warnw("store_settings_cache_del_failed", "error", err)
	}
	logger.Infow("store_settings_updated",
		"store_open", settings.StoreOpen,
		"cod_enabled", settings.CodEnabled,
		"upi_enabled", settings.UpiEnabled,
	)
	return settings, nil
}

func normalizeStoreSettings(input StoreSettingsInput) (*models.StoreSettings, error) {
	settings := &models.StoreSettings{
		ID:             constants.StoreSettingsID,
		StoreName:      strings.TrimSpace(input.StoreName),
		LogoURL:        strings.TrimSpace(input.LogoURL),
		Description:    strings.TrimSpace(input.Description),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Address:        strings.TrimSpace(input.Address),
		GoogleMapsLink: strings.TrimSpace(input.GoogleMapsLink),
		CodEnabled:     input.CodEnabled,
		UpiEnabled:     input.UpiEnabled,
		UpiID:          strings.TrimSpace(input.UpiID),
		UpiQrCodeURL:   strings.TrimSpace(input.UpiQrCodeURL),
		StoreOpen:      input.StoreOpen,
		AdminPhotoURL:  strings.TrimSpace(input.AdminPhotoURL),
	}
	if settings.StoreName == "" {
		settings.StoreName = models.DefaultStoreSettings().StoreName
	}
	if settings.Email != "" {
		if _, err := normalizeEmail(settings.Email); err != nil {
			return nil, ErrSettingsInvalid
		}
	}
	for _, link := range []string{settings.LogoURL, settings.GoogleMapsLink, settings.UpiQrCodeURL, settings.AdminPhotoURL} {
		if link != "" && !validHTTPURL(link) {
			return nil, ErrSettingsInvalid
		}
	}
	if settings.UpiEnabled && settings.UpiID == "" {
		return nil, ErrSettingsInvalid
	}
	for day, timing := range input.Timings {
		if !isWeekday(day) {
			return nil, ErrSettingsInvalid
		}
		if !timing.IsClosed && (!clockPattern.MatchString(timing.Open) || !clockPattern.MatchString(timing.Close)) {
			return nil, ErrSettingsInvalid
		}
	}
	settings.Timings = mergeTimings(input.Timings)
	return settings, nil
}

// mergeTimings 缺失的星期补默认营业时间
func mergeTimings(timings models.StoreTimings) models.StoreTimings {
	merged := models.DefaultTimings()
	for day, timing := range timings {
		if isWeekday(day) {
			merged[day] = timing
		}
	}
	return merged
}

func isWeekday(day string) bool {
	for _, candidate := range constants.Weekdays {
		if candidate == day {
			return true
		}
	}
	return false
}

func validHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
