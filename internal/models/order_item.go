package models

import "time"

// OrderItem 订单项表，名称与单价为下单时的快照，不随商品变更
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID（不建外键）
	ProductName string    `gorm:"type:varchar(100);not null" json:"product_name"`           // 商品名称快照
	UnitPrice   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`  // 单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice  Money     `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
