package repository

import (
	"errors"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreSettingsRepository 店铺设置数据访问接口
type StoreSettingsRepository interface {
	Get() (*models.StoreSettings, error)
	Upsert(settings *models.StoreSettings) error
}

// GormStoreSettingsRepository GORM 实现
type GormStoreSettingsRepository struct {
	db *gorm.DB
}

// NewStoreSettingsRepository 创建店铺设置仓库
func NewStoreSettingsRepository(db *gorm.DB) *GormStoreSettingsRepository {
	return &GormStoreSettingsRepository{db: db}
}

// Get 读取单例设置，不存在时返回 nil
func (r *GormStoreSettingsRepository) Get() (*models.StoreSettings, error) {
	var settings models.StoreSettings
	if err := r.db.First(&settings, constants.StoreSettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Upsert 写入单例设置，主键固定为 1，并发写入以最后一次为准
func (r *GormStoreSettingsRepository) Upsert(settings *models.StoreSettings) error {
	if settings == nil {
		return nil
	}
	settings.ID = constants.StoreSettingsID
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}
