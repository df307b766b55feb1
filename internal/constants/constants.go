package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses 全部订单状态（按流程顺序）
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// 订单状态流转策略
const (
	StatusPolicyPermissive = "permissive"
	StatusPolicyLinear     = "linear"
)

// 支付方式常量
const (
	PaymentMethodCOD = "COD"
	PaymentMethodUPI = "UPI"
)

// 结账阶段常量
const (
	CheckoutStageDetails = "details"
	CheckoutStageOtp     = "otp"
	CheckoutStageSuccess = "success"
)

// 购物车存储后端
const (
	CartStorageRedis  = "redis"
	CartStorageFile   = "file"
	CartStorageMemory = "memory"
)

// 访问角色
const (
	RoleOwner    = "owner"
	RoleCustomer = "customer"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderPlacedEmail = "order:placed_email"
	TaskOrderStatusEmail = "order:status_email"
)

// 请求上下文键
const (
	ContextKeyAdminSession = "admin_session_id"
	ContextKeyCustomer     = "customer_phone"
	ContextKeyRole         = "access_role"
)

// 营业时间中使用的星期键
var Weekdays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// 默认营业时间
const (
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "22:00"
)

// StoreSettingsID 店铺设置单例主键
const StoreSettingsID uint = 1

// OrderNoPrefix 订单号前缀
const OrderNoPrefix = "MC"
