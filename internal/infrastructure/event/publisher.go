// Package event 领域事件发布
//
// 设计说明:
// 1. 事件在数据库事务提交后发布(fire-and-forget),发布失败只记日志和指标,
//    不回滚业务操作,下游(通知/对账)通过补偿任务兜底
// 2. RabbitMQ访问经过熔断器,MQ持续故障时快速失败,不拖垮下单链路
package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/pkg/circuitbreaker"
	"github.com/xiebiao/shopmall/pkg/metrics"
	"github.com/xiebiao/shopmall/pkg/mq"
)

// 事件路由键(topic交换机)
const (
	RoutingOrderCreated         = "order.created"
	RoutingOrderPaid            = "order.paid"
	RoutingOrderCancelled       = "order.cancelled"
	RoutingOrderReturnRequested = "order.return_requested"
	RoutingOrderReturned        = "order.returned"
	RoutingOrderStatusChanged   = "order.status_changed"
	RoutingPaymentRefunded      = "payment.refunded"
)

// OrderEvent 订单事件载荷
type OrderEvent struct {
	OrderID    uint   `json:"order_id"`
	OrderNo    string `json:"order_no"`
	UserID     uint   `json:"user_id"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	OccurredAt int64  `json:"occurred_at"` // Unix秒
}

// Publisher 熔断保护的事件发布器
type Publisher struct {
	pub     *mq.Publisher
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewPublisher 创建事件发布器
// 熔断策略:10秒窗口内连续5次失败打开,30秒后半开试探
func NewPublisher(pub *mq.Publisher, logger *zap.Logger) *Publisher {
	cb := circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("事件发布器熔断状态变化",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	return &Publisher{pub: pub, breaker: cb, logger: logger}
}

// Publish 发布事件(fire-and-forget)
// 失败不向调用方传播error,只记日志和指标
func (p *Publisher) Publish(ctx context.Context, routingKey string, event OrderEvent) {
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	err := p.breaker.Execute(func() error {
		return p.pub.Publish(ctx, routingKey, event)
	})

	if err != nil {
		p.logger.Warn("事件发布失败",
			zap.String("routing_key", routingKey),
			zap.String("order_no", event.OrderNo),
			zap.Error(err))
		metrics.IncCounterVec(metrics.MessagesPublishedTotal,
			map[string]string{"routing_key": routingKey, "result": "failure"})
		return
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal,
		map[string]string{"routing_key": routingKey, "result": "success"})
}

// NopPublisher 空实现(mq.enabled=false或测试时使用)
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, event OrderEvent) {}
