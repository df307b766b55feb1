package models

import (
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
)

// StoreSettings 店铺设置单例表，只存在 id=1 一行
type StoreSettings struct {
	ID             uint         `gorm:"primarykey" json:"-"`
	StoreName      string       `gorm:"type:varchar(100);not null;default:'Monu Chai'" json:"store_name"`
	LogoURL        string       `gorm:"type:varchar(500)" json:"logo_url"`
	Description    string       `gorm:"type:text" json:"description"`
	Phone          string       `gorm:"type:varchar(20)" json:"phone"`
	Email          string       `gorm:"type:varchar(200)" json:"email"`
	Address        string       `gorm:"type:text" json:"address"`
	GoogleMapsLink string       `gorm:"type:varchar(500)" json:"google_maps_link"`
	CodEnabled     bool         `gorm:"not null" json:"cod_enabled"`
	UpiEnabled     bool         `gorm:"not null" json:"upi_enabled"`
	UpiID          string       `gorm:"type:varchar(100)" json:"upi_id"`
	UpiQrCodeURL   string       `gorm:"type:varchar(500)" json:"upi_qr_code_url"`
	StoreOpen      bool         `gorm:"not null" json:"store_open"`
	Timings        StoreTimings `gorm:"type:json" json:"timings"`
	AdminPhotoURL  string       `gorm:"type:varchar(500)" json:"admin_photo_url"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName 指定表名
func (StoreSettings) TableName() string {
	return "store_settings"
}

// DefaultStoreSettings 返回未配置时的默认设置
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ID:         constants.StoreSettingsID,
		StoreName:  "Monu Chai",
		CodEnabled: true,
		StoreOpen:  true,
		Timings:    DefaultTimings(),
	}
}

// DefaultTimings 默认每日 09:00-22:00 营业
func DefaultTimings() StoreTimings {
	timings := make(StoreTimings, len(constants.Weekdays))
	for _, day := range constants.Weekdays {
		timings[day] = DayTiming{Open: constants.DefaultOpenTime, Close: constants.DefaultCloseTime}
	}
	return timings
}

// PaymentMethodEnabled 判断支付方式是否开放
func (s StoreSettings) PaymentMethodEnabled(method string) bool {
	switch method {
	case constants.PaymentMethodCOD:
		return s.CodEnabled
	case constants.PaymentMethodUPI:
		return s.UpiEnabled
	default:
		return false
	}
}
