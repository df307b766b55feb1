package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 菜单商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	CategoryID  *uint          `gorm:"index" json:"category_id"`                           // 分类ID，分类删除后置空
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`             // 名称
	Description string         `gorm:"type:text;not null" json:"description"`              // 描述
	Price       Money          `gorm:"type:decimal(10,2);not null;default:0" json:"price"` // 价格
	Image       string         `gorm:"type:varchar(500);not null" json:"image"`            // 图片地址
	IsPopular   bool           `gorm:"not null;index" json:"is_popular"`                   // 是否热门
	IsAvailable bool           `gorm:"not null;index" json:"is_available"`                 // 是否可售
	BadgeText   string         `gorm:"type:varchar(100)" json:"badge_text,omitempty"`      // 角标文案
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                  // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`    // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
