package payment

import (
	"context"
	"testing"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
)

// TestReturnRoundTrip 退货全流程的资金与库存闭环
// 下单(积分抵扣) → 支付 → 履约 → 退货申请 → 退款,
// 结束后积分余额、库存、销量全部回到下单前
func TestReturnRoundTrip(t *testing.T) {
	env := newTestEnv()

	// 下单前:余额10000,两种商品各库存5
	// 下单后快照:总额50000,抵扣5000,实付45000,积分已扣、库存已减
	env.store.users[1] = &user.User{ID: 1, Point: 5000}
	env.store.products[201] = &product.Product{ID: 201, Stock: 4, SalesCount: 1, OnSale: true}
	env.store.products[202] = &product.Product{ID: 202, Stock: 4, SalesCount: 1, OnSale: true}
	env.store.orders[1] = &order.Order{
		ID: 1, OrderNo: "ORD-20260831-ROUND1", UserID: 1,
		Status:      order.StatusOrderPlaced,
		TotalAmount: 50000, PointUsed: 5000, FinalAmount: 45000,
		Items: []order.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 201, Quantity: 1, UnitPrice: 20000, LineTotal: 20000},
			{ID: 2, OrderID: 1, ProductID: 202, Quantity: 1, UnitPrice: 30000, LineTotal: 30000},
		},
	}

	// 支付45000
	payResp, err := env.requestUseCase().Execute(context.Background(), RequestPaymentRequest{
		UserID: 1, OrderID: 1, Method: "CARD", Amount: 45000,
	})
	if err != nil {
		t.Fatalf("支付失败: %v", err)
	}
	if env.store.orders[1].Status != order.StatusPaymentConfirmed {
		t.Fatalf("支付后订单应为PAYMENT_CONFIRMED, 实际: %s", env.store.orders[1].Status)
	}

	// 恰好一条已完成未退款的支付
	live := 0
	for _, p := range env.store.payments {
		if p.Status == payment.StatusCompleted {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("应恰好存在1条COMPLETED支付, 实际: %d", live)
	}

	// 履约送达后买家申请退货
	env.store.orders[1].Status = order.StatusReturnRequested

	// 退款收尾
	refundResp, err := env.refundUseCase().Execute(
		context.Background(), 1, false, payResp.PaymentID, "尺寸不合适")
	if err != nil {
		t.Fatalf("退款失败: %v", err)
	}
	if refundResp.RefundedAmount != 45000 {
		t.Errorf("退款金额应为45000, 实际: %d", refundResp.RefundedAmount)
	}
	if env.store.orders[1].Status != order.StatusReturned {
		t.Errorf("订单应为RETURNED, 实际: %s", env.store.orders[1].Status)
	}

	// 闭环校验:余额回到10000,库存/销量回到下单前
	if env.store.users[1].Point != 10000 {
		t.Errorf("积分应回到10000, 实际: %d", env.store.users[1].Point)
	}
	for _, id := range []uint{201, 202} {
		p := env.store.products[id]
		if p.Stock != 5 {
			t.Errorf("商品%d库存应回到5, 实际: %d", id, p.Stock)
		}
		if p.SalesCount != 0 {
			t.Errorf("商品%d销量应回到0, 实际: %d", id, p.SalesCount)
		}
	}
}
