package models

import "time"

// OtpChallenge 结账邮箱验证码，按结账会话唯一，重新发送时覆盖
type OtpChallenge struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	SessionID    string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	Email        string     `gorm:"type:varchar(200);not null" json:"email"`
	Code         string     `gorm:"type:varchar(10);not null" json:"-"`
	IssuedAt     time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt    time.Time  `gorm:"index;not null" json:"expires_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	AttemptCount int        `gorm:"not null;default:0" json:"attempt_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (OtpChallenge) TableName() string {
	return "otp_challenges"
}

// Expired 是否已过期
func (c OtpChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Verified 是否已验证
func (c OtpChallenge) Verified() bool {
	return c.VerifiedAt != nil
}
