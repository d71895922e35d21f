package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置,由infrastructure层实现)
type Repository interface {
	// Create 创建订单(订单头和明细同事务写入)
	// 订单号碰撞时返回ErrCodeDuplicateEntry错误,由调用方重新生成订单号重试
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单(包含明细)
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态(乐观锁)
	// 以order.Version为条件更新,版本不一致时返回ErrOrderConflict,
	// 成功后order.Version自增
	UpdateStatus(ctx context.Context, order *Order) error

	// ListByUserID 分页查询用户订单列表(按创建时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// MarkItemReviewed 标记订单明细已评价(单向置位,不可回退)
	MarkItemReviewed(ctx context.Context, orderItemID uint) error

	// HasConfirmedPurchase 用户是否有包含该商品的确认收货订单(评价资格校验)
	HasConfirmedPurchase(ctx context.Context, userID, productID uint) (bool, error)
}
