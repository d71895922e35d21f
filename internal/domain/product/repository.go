package product

import "context"

// Repository 商品仓储接口
type Repository interface {
	// FindByID 根据ID查找商品(无锁读)
	FindByID(ctx context.Context, id uint) (*Product, error)

	// LockByID 根据ID查找商品并加行锁(SELECT FOR UPDATE)
	// 必须在事务内调用,下单扣库存前用于冻结该行,防止并发超卖
	LockByID(ctx context.Context, id uint) (*Product, error)

	// AdjustStock 相对调整库存(delta可正可负)
	// 扣减时带stock + delta >= 0守卫,守卫不满足返回ErrOutOfStock
	AdjustStock(ctx context.Context, id uint, delta int) error

	// AdjustSalesCount 相对调整销量(下单+,取消/退货-)
	AdjustSalesCount(ctx context.Context, id uint, delta int) error

	// FindSellerByID 查找卖家(下单时快照卖家名)
	FindSellerByID(ctx context.Context, id uint) (*Seller, error)
}
