package cart

import "context"

// Repository 购物车仓储接口
type Repository interface {
	// ListByUserID 查询用户购物车条目
	ListByUserID(ctx context.Context, userID uint) ([]*Item, error)

	// DeleteItems 删除用户的指定购物车条目(下单成功后清理,同下单事务)
	// itemIDs为空时不执行任何操作
	DeleteItems(ctx context.Context, userID uint, itemIDs []uint) error
}
