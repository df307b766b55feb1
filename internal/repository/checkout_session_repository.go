package repository

import (
	"errors"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"gorm.io/gorm"
)

// CheckoutSessionRepository 结账会话数据访问接口
type CheckoutSessionRepository interface {
	Create(session *models.CheckoutSession) error
	GetByID(id string) (*models.CheckoutSession, error)
	AdvanceStage(id, from, to string, updates map[string]interface{}) (int64, error)
	DeleteExpired(before time.Time) (int64, error)
	WithTx(tx *gorm.DB) CheckoutSessionRepository
}

// GormCheckoutSessionRepository GORM 实现
type GormCheckoutSessionRepository struct {
	db *gorm.DB
}

// NewCheckoutSessionRepository 创建结账会话仓库
func NewCheckoutSessionRepository(db *gorm.DB) *GormCheckoutSessionRepository {
	return &GormCheckoutSessionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCheckoutSessionRepository) WithTx(tx *gorm.DB) CheckoutSessionRepository {
	if tx == nil {
		return r
	}
	return &GormCheckoutSessionRepository{db: tx}
}

// Create 创建结账会话
func (r *GormCheckoutSessionRepository) Create(session *models.CheckoutSession) error {
	return r.db.Create(session).Error
}

// GetByID 根据 ID 获取结账会话
func (r *GormCheckoutSessionRepository) GetByID(id string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// AdvanceStage 仅当当前阶段为 from 时切换到 to，返回受影响行数
func (r *GormCheckoutSessionRepository) AdvanceStage(id, from, to string, updates map[string]interface{}) (int64, error) {
	columns := map[string]interface{}{
		"stage":      to,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		columns[key] = value
	}
	result := r.db.Model(&models.CheckoutSession{}).
		Where("id = ? AND stage = ?", id, from).
		UpdateColumns(columns)
	return result.RowsAffected, result.Error
}

// DeleteExpired 清理过期且未成功下单的结账会话
func (r *GormCheckoutSessionRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ? AND order_id IS NULL", before).Delete(&models.CheckoutSession{})
	return result.RowsAffected, result.Error
}
