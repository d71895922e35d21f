package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
)

func (e *testEnv) adminUseCase() *AdminUpdateStatusUseCase {
	return NewAdminUpdateStatusUseCase(
		e.orderRepo, e.payRepo,
		NewCompensator(e.prodRepo, e.userRepo),
		e.tx, e.publisher, nopCache{}, zap.NewNop(),
	)
}

// markPaid 给订单补一条完成支付并把状态推到PAYMENT_CONFIRMED
func markPaid(t *testing.T, env *testEnv, orderID uint) {
	t.Helper()
	now := time.Now()
	env.store.nextPaymentID++
	env.store.payments[env.store.nextPaymentID] = &payment.Payment{
		ID: env.store.nextPaymentID, OrderID: orderID, UserID: 1,
		Amount: 13000, Status: payment.StatusCompleted, PaidAt: &now,
	}
	o := env.store.orders[orderID]
	o.Status = order.StatusPaymentConfirmed
}

// TestAdminUpdateStatus_FulfillmentFlow 备货→发货→送达全链路
func TestAdminUpdateStatus_FulfillmentFlow(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	markPaid(t, env, orderID)

	uc := env.adminUseCase()
	for _, target := range []order.Status{
		order.StatusPreparing,
		order.StatusShipping,
		order.StatusDelivered,
	} {
		if err := uc.Execute(context.Background(), orderID, target); err != nil {
			t.Fatalf("流转到%s失败: %v", target, err)
		}
		if env.store.orders[orderID].Status != target {
			t.Fatalf("状态应为%s, 实际: %s", target, env.store.orders[orderID].Status)
		}
	}
}

// TestAdminUpdateStatus_IllegalJump 跳步流转被拒绝
func TestAdminUpdateStatus_IllegalJump(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)

	err := env.adminUseCase().Execute(context.Background(), orderID, order.StatusShipping)
	if !errors.Is(err, order.ErrInvalidStatusTransition) {
		t.Fatalf("ORDER_PLACED→SHIPPING应被拒绝, 实际: %v", err)
	}
	if env.store.orders[orderID].Status != order.StatusOrderPlaced {
		t.Error("失败后状态不应变化")
	}
}

// TestAdminUpdateStatus_SameStateNoop 同状态幂等放行,不产生事件
func TestAdminUpdateStatus_SameStateNoop(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	before := len(env.publisher.events)

	if err := env.adminUseCase().Execute(context.Background(), orderID, order.StatusOrderPlaced); err != nil {
		t.Fatalf("同状态应放行: %v", err)
	}
	if len(env.publisher.events) != before {
		t.Error("同状态无操作不应发布事件")
	}
	if env.store.orders[orderID].Version != 0 {
		t.Errorf("同状态无操作不应提升版本号, 实际: %d", env.store.orders[orderID].Version)
	}
}

// TestAdminUpdateStatus_CancelWithCompensation 管理端取消同样走补偿
func TestAdminUpdateStatus_CancelWithCompensation(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)

	if err := env.adminUseCase().Execute(context.Background(), orderID, order.StatusCancelled); err != nil {
		t.Fatalf("管理端取消失败: %v", err)
	}

	if env.store.products[100].Stock != 10 {
		t.Errorf("库存应回补, 实际: %d", env.store.products[100].Stock)
	}
	if env.store.users[1].Point != 5000 {
		t.Errorf("积分应回退, 实际: %d", env.store.users[1].Point)
	}
}

// TestAdminUpdateStatus_ReturnedNeedsRefund 有未退款支付时禁止直接RETURNED
func TestAdminUpdateStatus_ReturnedNeedsRefund(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)
	markPaid(t, env, orderID)
	env.store.orders[orderID].Status = order.StatusReturnRequested

	err := env.adminUseCase().Execute(context.Background(), orderID, order.StatusReturned)
	if !errors.Is(err, order.ErrRefundRequired) {
		t.Fatalf("应返回ErrRefundRequired, 实际: %v", err)
	}
}

// TestUpdateStatus_VersionConflict 乐观锁版本冲突
func TestUpdateStatus_VersionConflict(t *testing.T) {
	env := newTestEnv()
	env.seedBasic()
	orderID := mustPlaceOrder(t, env)

	ctx := context.Background()
	stale, err := env.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		t.Fatal(err)
	}

	// 另一个请求先完成了状态变更
	fresh, _ := env.orderRepo.FindByID(ctx, orderID)
	if err := fresh.TransitionTo(order.StatusPaymentPending); err != nil {
		t.Fatal(err)
	}
	if err := env.orderRepo.UpdateStatus(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	// 持旧版本的更新应失败
	if err := stale.TransitionTo(order.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	if err := env.orderRepo.UpdateStatus(ctx, stale); !errors.Is(err, order.ErrOrderConflict) {
		t.Fatalf("应返回ErrOrderConflict, 实际: %v", err)
	}
}
