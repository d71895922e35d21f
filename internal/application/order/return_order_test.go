package order

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
)

func (e *testEnv) returnUseCase() *RequestReturnUseCase {
	return NewRequestReturnUseCase(e.orderRepo, e.tx, e.publisher, nopCache{}, zap.NewNop())
}

func (e *testEnv) confirmUseCase() *ConfirmOrderUseCase {
	return NewConfirmOrderUseCase(e.orderRepo, e.tx, nopCache{}, zap.NewNop())
}

// TestRequestReturn_FromDelivered 送达后可申请退货
func TestRequestReturn_FromDelivered(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	env.store.orders[orderID].Status = order.StatusDelivered

	if err := env.returnUseCase().Execute(context.Background(), 1, orderID); err != nil {
		t.Fatalf("申请退货失败: %v", err)
	}

	if env.store.orders[orderID].Status != order.StatusReturnRequested {
		t.Errorf("状态应为RETURN_REQUESTED, 实际: %s", env.store.orders[orderID].Status)
	}

	// 申请阶段不补偿
	if env.store.products[100].Stock != 8 {
		t.Errorf("申请退货不应回补库存, 实际: %d", env.store.products[100].Stock)
	}

	last := env.publisher.events[len(env.publisher.events)-1]
	if last.routingKey != event.RoutingOrderReturnRequested {
		t.Errorf("应发布order.return_requested, 实际: %s", last.routingKey)
	}
}

// TestRequestReturn_FromConfirmed 确认收货后仍可申请退货
func TestRequestReturn_FromConfirmed(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	env.store.orders[orderID].Status = order.StatusConfirmed

	if err := env.returnUseCase().Execute(context.Background(), 1, orderID); err != nil {
		t.Fatalf("申请退货失败: %v", err)
	}
	if env.store.orders[orderID].Status != order.StatusReturnRequested {
		t.Errorf("状态应为RETURN_REQUESTED, 实际: %s", env.store.orders[orderID].Status)
	}
}

// TestRequestReturn_BeforeDelivery 送达前不可申请退货
func TestRequestReturn_BeforeDelivery(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	env.store.orders[orderID].Status = order.StatusShipping

	err := env.returnUseCase().Execute(context.Background(), 1, orderID)
	if !errors.Is(err, order.ErrInvalidStatusTransition) {
		t.Fatalf("配送中申请退货应被拒绝, 实际: %v", err)
	}
}

// TestConfirmOrder 送达后确认收货
func TestConfirmOrder(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	env.store.orders[orderID].Status = order.StatusDelivered

	if err := env.confirmUseCase().Execute(context.Background(), 1, orderID); err != nil {
		t.Fatalf("确认收货失败: %v", err)
	}
	if env.store.orders[orderID].Status != order.StatusConfirmed {
		t.Errorf("状态应为CONFIRMED, 实际: %s", env.store.orders[orderID].Status)
	}

	// 未送达不可确认
	env.store.users[1].Point = 5000
	orderID2 := mustPlaceOrder(t, env)
	err := env.confirmUseCase().Execute(context.Background(), 1, orderID2)
	if !errors.Is(err, order.ErrInvalidStatusTransition) {
		t.Fatalf("未送达确认收货应被拒绝, 实际: %v", err)
	}
}
