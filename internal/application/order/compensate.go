package order

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// Compensator 订单补偿例程
// 订单进入CANCELLED/RETURNED时回补下单时的扣减:
// 1. 每个明细回补库存(+Quantity)、回退销量(-Quantity)
// 2. 回退下单时抵扣的积分(+PointUsed)
//
// 必须在状态变更的同一事务内调用,部分回补不允许存在。
// 取消、退货完成、管理端覆写共用本例程,补偿逻辑只此一份。
type Compensator struct {
	productRepo product.Repository
	userRepo    user.Repository
}

// NewCompensator 创建补偿例程
func NewCompensator(productRepo product.Repository, userRepo user.Repository) *Compensator {
	return &Compensator{productRepo: productRepo, userRepo: userRepo}
}

// Compensate 执行补偿(事务内调用)
func (c *Compensator) Compensate(ctx context.Context, o *order.Order) error {
	for _, item := range o.Items {
		if err := c.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := c.productRepo.AdjustSalesCount(ctx, item.ProductID, -item.Quantity); err != nil {
			return err
		}
	}

	if o.PointUsed > 0 {
		if err := c.userRepo.AdjustPoint(ctx, o.UserID, o.PointUsed); err != nil {
			return err
		}
	}

	metrics.IncCounter(metrics.CompensationsTotal)
	return nil
}
