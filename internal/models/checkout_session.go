package models

import "time"

// CheckoutSession 结账会话，阶段依次为 details -> otp -> success
type CheckoutSession struct {
	ID              string     `gorm:"type:varchar(64);primarykey" json:"id"`
	CartID          string     `gorm:"type:varchar(64);index;not null" json:"cart_id"`
	Stage           string     `gorm:"type:varchar(16);index;not null" json:"stage"`
	CustomerName    string     `gorm:"type:varchar(100)" json:"name"`
	CustomerEmail   string     `gorm:"type:varchar(200)" json:"email"`
	CustomerPhone   string     `gorm:"type:varchar(20)" json:"phone"`
	CustomerAddress string     `gorm:"type:text" json:"address"`
	PaymentMethod   string     `gorm:"type:varchar(10)" json:"payment_method"`
	DraftItems      DraftLines `gorm:"type:json" json:"items"`
	DraftTotal      Money      `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	OrderID         *uint      `gorm:"index" json:"order_id,omitempty"`
	ExpiresAt       time.Time  `gorm:"index;not null" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

// Expired 是否已过期
func (s CheckoutSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
