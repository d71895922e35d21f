package payment

import "context"

// Repository 支付仓储接口
type Repository interface {
	// Create 创建支付记录
	Create(ctx context.Context, payment *Payment) error

	// Update 更新支付记录(状态/流水号/时间戳)
	Update(ctx context.Context, payment *Payment) error

	// FindByID 根据ID查找支付记录
	FindByID(ctx context.Context, id uint) (*Payment, error)

	// ListByOrderID 查询订单的全部支付记录
	ListByOrderID(ctx context.Context, orderID uint) ([]*Payment, error)

	// FindLiveByOrderID 查询订单"已完成且未退款"的支付记录
	// 不存在时返回(nil, nil),这是正常业务分支而非错误
	FindLiveByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// FailPendingByOrderID 将订单的全部PENDING支付记录置为FAILED
	// 新支付发起前调用,保证同一订单最多一条进行中的支付
	FailPendingByOrderID(ctx context.Context, orderID uint) error
}

// HasLive 判断支付记录集合中是否存在有效支付(已完成且未退款)
func HasLive(payments []*Payment) bool {
	for _, p := range payments {
		if p.IsLive() {
			return true
		}
	}
	return false
}
