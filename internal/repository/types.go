package repository

import (
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/models"
)

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page          int
	PageSize      int
	CategoryID    *uint
	Search        string
	OnlyAvailable bool
	OnlyPopular   bool
	WithCategory  bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Phone       string
	Email       string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PhoneOrderSummary 按手机号聚合的订单统计
type PhoneOrderSummary struct {
	OrderCount int64
	TotalSpent models.Money
}
