package repository

import (
	"errors"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"gorm.io/gorm"
)

// OtpChallengeRepository 验证码挑战数据访问接口
type OtpChallengeRepository interface {
	GetBySession(sessionID string) (*models.OtpChallenge, error)
	Replace(challenge *models.OtpChallenge) error
	MarkVerified(id uint, code string, verifiedAt time.Time) (bool, error)
	IncrementAttempt(id uint) error
	DeleteBySession(sessionID string) error
	DeleteExpired(before time.Time) (int64, error)
	WithTx(tx *gorm.DB) OtpChallengeRepository
}

// GormOtpChallengeRepository GORM 实现
type GormOtpChallengeRepository struct {
	db *gorm.DB
}

// NewOtpChallengeRepository 创建验证码挑战仓库
func NewOtpChallengeRepository(db *gorm.DB) *GormOtpChallengeRepository {
	return &GormOtpChallengeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOtpChallengeRepository) WithTx(tx *gorm.DB) OtpChallengeRepository {
	if tx == nil {
		return r
	}
	return &GormOtpChallengeRepository{db: tx}
}

// GetBySession 获取结账会话当前的验证码挑战
func (r *GormOtpChallengeRepository) GetBySession(sessionID string) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	if err := r.db.Where("session_id = ?", sessionID).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

// Replace 覆盖会话的验证码挑战，旧验证码随之失效
func (r *GormOtpChallengeRepository) Replace(challenge *models.OtpChallenge) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.OtpChallenge
		err := tx.Where("session_id = ?", challenge.SessionID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(challenge).Error
		}
		challenge.ID = existing.ID
		challenge.CreatedAt = existing.CreatedAt
		challenge.VerifiedAt = nil
		challenge.AttemptCount = 0
		return tx.Save(challenge).Error
	})
}

// MarkVerified 仅当挑战仍持有该验证码且未验证时标记，重发后的新验证码不受旧提交影响
func (r *GormOtpChallengeRepository) MarkVerified(id uint, code string, verifiedAt time.Time) (bool, error) {
	result := r.db.Model(&models.OtpChallenge{}).
		Where("id = ? AND code = ? AND verified_at IS NULL", id, code).
		Update("verified_at", verifiedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementAttempt 增加验证次数
func (r *GormOtpChallengeRepository) IncrementAttempt(id uint) error {
	return r.db.Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + 1")).Error
}

// DeleteBySession 删除会话的验证码挑战
func (r *GormOtpChallengeRepository) DeleteBySession(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&models.OtpChallenge{}).Error
}

// DeleteExpired 清理过期的验证码挑战
func (r *GormOtpChallengeRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&models.OtpChallenge{})
	return result.RowsAffected, result.Error
}
