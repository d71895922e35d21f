package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
)

type testEnv struct {
	store     *memStore
	orderRepo *memOrderRepo
	payRepo   *memPaymentRepo
	userRepo  *memUserRepo
	prodRepo  *memProductRepo
	tx        *memTx
	publisher *recordingPublisher
}

func newTestEnv() *testEnv {
	store := newMemStore()
	return &testEnv{
		store:     store,
		orderRepo: &memOrderRepo{store: store},
		payRepo:   &memPaymentRepo{store: store},
		userRepo:  &memUserRepo{store: store},
		prodRepo:  &memProductRepo{store: store},
		tx:        &memTx{store: store},
		publisher: &recordingPublisher{},
	}
}

// seedOrder 一个待支付订单:总额16000,下单抵扣3000积分,实付13000
func (e *testEnv) seedOrder() *order.Order {
	e.store.users[1] = &user.User{ID: 1, Point: 2000}
	o := &order.Order{
		ID: 1, OrderNo: "ORD-20260831-TEST01", UserID: 1,
		Status:      order.StatusOrderPlaced,
		TotalAmount: 16000, PointUsed: 3000, FinalAmount: 13000,
		Items: []order.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 100, Quantity: 2, UnitPrice: 8000, LineTotal: 16000},
		},
	}
	e.store.orders[1] = o
	return o
}

func (e *testEnv) requestUseCase() *RequestPaymentUseCase {
	return NewRequestPaymentUseCase(
		e.orderRepo, e.payRepo, e.userRepo,
		e.tx, e.publisher, nopCache{}, zap.NewNop(),
	)
}

// TestRequestPayment_Success 正常支付:支付完成,订单PAYMENT_CONFIRMED
func TestRequestPayment_Success(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()

	resp, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 13000,
	})
	if err != nil {
		t.Fatalf("支付失败: %v", err)
	}

	if resp.Status != string(payment.StatusCompleted) {
		t.Errorf("支付状态应为COMPLETED, 实际: %s", resp.Status)
	}
	if resp.TradeNo == "" {
		t.Error("应生成支付流水号")
	}
	if env.store.orders[1].Status != order.StatusPaymentConfirmed {
		t.Errorf("订单应为PAYMENT_CONFIRMED, 实际: %s", env.store.orders[1].Status)
	}

	// 订单确认的前置条件:落库的支付必须是有效支付
	p := env.store.payments[resp.PaymentID]
	if p == nil || !p.IsLive() {
		t.Errorf("确认后的订单应挂着一条有效支付: %+v", p)
	}

	last := env.publisher.events[len(env.publisher.events)-1]
	if last.routingKey != event.RoutingOrderPaid {
		t.Errorf("应发布order.paid, 实际: %s", last.routingKey)
	}
}

// TestRequestPayment_WithExtraPoints 支付时追加积分:金额+积分=实付
func TestRequestPayment_WithExtraPoints(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()

	resp, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 11000, PointUsed: 2000,
	})
	if err != nil {
		t.Fatalf("支付失败: %v", err)
	}

	if resp.Amount != 11000 || resp.PointUsed != 2000 {
		t.Errorf("支付金额/积分不正确: %+v", resp)
	}
	if env.store.users[1].Point != 0 {
		t.Errorf("追加积分应扣减, 实际余额: %d", env.store.users[1].Point)
	}
}

// TestRequestPayment_AmountMismatch 金额对不上直接拒绝
func TestRequestPayment_AmountMismatch(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()

	cases := []struct {
		amount, point int64
	}{
		{12000, 0},    // 少付
		{14000, 0},    // 多付
		{13000, 1000}, // 金额+积分超出
	}

	for _, c := range cases {
		_, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
			UserID: 1, OrderID: 1, Method: "CARD", Amount: c.amount, PointUsed: c.point,
		})
		if !errors.Is(err, payment.ErrAmountMismatch) {
			t.Errorf("amount=%d point=%d 应返回ErrAmountMismatch, 实际: %v", c.amount, c.point, err)
		}
	}

	if env.store.orders[1].Status != order.StatusOrderPlaced {
		t.Error("支付失败后订单状态不应变化")
	}
}

// TestRequestPayment_DuplicatePayment 已有完成支付的订单拒绝再次支付
func TestRequestPayment_DuplicatePayment(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()
	uc := env.requestUseCase()

	if _, err := uc.Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 13000,
	}); err != nil {
		t.Fatalf("首次支付失败: %v", err)
	}

	// 已进入PAYMENT_CONFIRMED,状态检查直接拦截
	_, err := uc.Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 13000,
	})
	if !errors.Is(err, order.ErrInvalidStatusTransition) {
		t.Fatalf("重复支付应被拒绝, 实际: %v", err)
	}

	// 有效支付只有一条
	count := 0
	for _, p := range env.store.payments {
		if p.Status == payment.StatusCompleted {
			count++
		}
	}
	if count != 1 {
		t.Errorf("完成的支付应恰好1条, 实际: %d", count)
	}
}

// TestRequestPayment_FailsPreviousPending 新支付作废旧的进行中支付
func TestRequestPayment_FailsPreviousPending(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()
	env.store.orders[1].Status = order.StatusPaymentPending
	env.store.nextPaymentID++
	env.store.payments[1] = &payment.Payment{
		ID: 1, OrderID: 1, UserID: 1, Amount: 13000, Status: payment.StatusPending,
	}

	if _, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 13000,
	}); err != nil {
		t.Fatalf("支付失败: %v", err)
	}

	if env.store.payments[1].Status != payment.StatusFailed {
		t.Errorf("旧PENDING支付应被作废, 实际: %s", env.store.payments[1].Status)
	}
}

// TestRequestPayment_PointInsufficient 追加积分不足整体回滚
func TestRequestPayment_PointInsufficient(t *testing.T) {
	env := newTestEnv()
	env.seedOrder() // 余额2000

	_, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 10000, PointUsed: 3000,
	})
	if !errors.Is(err, user.ErrPointInsufficient) {
		t.Fatalf("应返回ErrPointInsufficient, 实际: %v", err)
	}

	if env.store.orders[1].Status != order.StatusOrderPlaced {
		t.Error("回滚后订单状态应还原")
	}
	if env.store.users[1].Point != 2000 {
		t.Errorf("回滚后积分应还原, 实际: %d", env.store.users[1].Point)
	}
	if len(env.store.payments) != 0 {
		t.Error("回滚后不应留下支付记录")
	}
}

// TestRequestPayment_Forbidden 他人订单不可支付
func TestRequestPayment_Forbidden(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()

	_, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 99, OrderID: 1, Method: "CARD", Amount: 13000,
	})
	if err == nil {
		t.Fatal("他人订单支付应被拒绝")
	}
}

// TestRequestPayment_ConcurrentSinglePayment 并发支付同一订单,只有一笔成功
func TestRequestPayment_ConcurrentSinglePayment(t *testing.T) {
	env := newTestEnv()
	env.seedOrder()
	uc := env.requestUseCase()

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), RequestPaymentRequest{
				UserID: 1, OrderID: 1, Method: "CARD", Amount: 13000,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("应恰好1笔支付成功, 实际: %d", succeeded)
	}

	completed := 0
	for _, p := range env.store.payments {
		if p.Status == payment.StatusCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("完成的支付应恰好1条, 实际: %d", completed)
	}
}
