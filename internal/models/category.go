package models

import "time"

// Category 菜单分类表，硬删除以便 slug 可复用
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`                   // 主键
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`       // 唯一标识，如 chai / snacks
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`  // 名称
	Description string    `gorm:"type:text" json:"description,omitempty"` // 描述
	SortOrder   int       `gorm:"default:0;index" json:"sort_order"`      // 排序权重
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
