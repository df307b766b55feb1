package models

import "time"

// Order 订单表，不做软删除，正常流程中只修改状态
type Order struct {
	ID                uint        `gorm:"primarykey" json:"id"`                                       // 主键
	OrderNo           string      `gorm:"uniqueIndex;not null" json:"order_no"`                       // 订单编号
	CustomerName      string      `gorm:"type:varchar(100);not null" json:"customer_name"`            // 顾客姓名
	CustomerEmail     string      `gorm:"index;not null;default:''" json:"customer_email"`            // 顾客邮箱
	CustomerPhone     string      `gorm:"type:varchar(20);index;not null" json:"customer_phone"`      // 顾客手机号
	CustomerAddress   string      `gorm:"type:text;not null" json:"customer_address"`                 // 收货地址
	TotalAmount       Money       `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`  // 订单总额
	Status            string      `gorm:"index;not null;default:'pending'" json:"status"`             // 订单状态
	PaymentMethod     string      `gorm:"type:varchar(10);not null;default:'COD'" json:"payment_method"` // 支付方式（仅声明）
	CheckoutSessionID *string     `gorm:"uniqueIndex" json:"checkout_session_id,omitempty"`           // 来源结账会话，保证一次会话只落一单
	ClientIP          string      `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                // 下单客户端IP
	CreatedAt         time.Time   `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt         time.Time   `gorm:"index" json:"updated_at"`                                    // 更新时间
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`                  // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
