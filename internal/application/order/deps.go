package order

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
)

// TxManager 事务执行接口(由mysql.TxManager实现)
// fn返回error时回滚,返回nil时提交
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 事件发布接口(由event.Publisher实现,fire-and-forget)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, evt event.OrderEvent)
}

// OrderCache 订单详情缓存接口(由redis.OrderCache实现)
// 缓存故障不阻塞主流程,Get失败按未命中处理
type OrderCache interface {
	Get(ctx context.Context, orderID uint) (*order.Order, error)
	Set(ctx context.Context, o *order.Order) error
	Invalidate(ctx context.Context, orderID uint) error
}
