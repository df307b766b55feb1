package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByCheckoutSession(sessionID string) (*models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListByPhone(phone string, page, pageSize int) ([]models.Order, int64, error)
	FindActiveByPhone(phone string) (*models.Order, error)
	SummaryByPhone(phone string) (PhoneOrderSummary, error)
	UpdateStatus(id uint, status string, now time.Time) (int64, error)
	CountByOrderNo(orderNo string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	return r.first(r.db.Where("order_no = ?", orderNo))
}

// GetByCheckoutSession 根据结账会话获取订单
func (r *GormOrderRepository) GetByCheckoutSession(sessionID string) (*models.Order, error) {
	return r.first(r.db.Where("checkout_session_id = ?", sessionID))
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if phone := strings.TrimSpace(filter.Phone); phone != "" {
		query = query.Where("customer_phone = ?", phone)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("customer_email = ?", strings.ToLower(email))
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	query = applyCreatedRange(query, "created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("Items"), filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByPhone 按手机号查询订单，最新在前
func (r *GormOrderRepository) ListByPhone(phone string, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("customer_phone = ?", phone)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("Items"), page, pageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindActiveByPhone 获取最新一笔进行中（待处理或制作中）的订单
func (r *GormOrderRepository) FindActiveByPhone(phone string) (*models.Order, error) {
	return r.first(r.db.
		Where("customer_phone = ? AND status IN ?", phone, []string{
			constants.OrderStatusPending,
			constants.OrderStatusPreparing,
		}).
		Order("created_at DESC, id DESC"))
}

// SummaryByPhone 统计订单数与累计消费（不含已取消）
func (r *GormOrderRepository) SummaryByPhone(phone string) (PhoneOrderSummary, error) {
	var summary PhoneOrderSummary
	if err := r.db.Model(&models.Order{}).
		Where("customer_phone = ?", phone).
		Count(&summary.OrderCount).Error; err != nil {
		return summary, err
	}

	var row struct {
		Total models.Money
	}
	if err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("customer_phone = ? AND status <> ?", phone, constants.OrderStatusCancelled).
		Scan(&row).Error; err != nil {
		return summary, err
	}
	summary.TotalSpent = row.Total
	return summary, nil
}

// UpdateStatus 仅更新状态列，按订单 ID 定位
func (r *GormOrderRepository) UpdateStatus(id uint, status string, now time.Time) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// CountByOrderNo 统计订单号数量
func (r *GormOrderRepository) CountByOrderNo(orderNo string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
