package order

import (
	"errors"
	"testing"
)

// legalPairs 转换表之外的唯一真相源:测试用白名单,与transitions表独立维护
// 表或白名单任一侧改动不一致时,穷举测试会失败
var legalPairs = map[Status][]Status{
	StatusOrderPlaced:      {StatusPaymentPending, StatusCancelled},
	StatusPaymentPending:   {StatusPaymentConfirmed, StatusCancelled},
	StatusPaymentConfirmed: {StatusPreparing},
	StatusPreparing:        {StatusShipping},
	StatusShipping:         {StatusDelivered},
	StatusDelivered:        {StatusConfirmed, StatusReturnRequested},
	StatusConfirmed:        {StatusReturnRequested},
	StatusReturnRequested:  {StatusReturned},
}

func isLegal(from, to Status) bool {
	for _, s := range legalPairs[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TestAssertTransition_Exhaustive 穷举全部状态对,校验合法性判定
func TestAssertTransition_Exhaustive(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			err := AssertTransition(from, to)

			// 同状态转换是无操作,必须放行
			if from == to {
				if err != nil {
					t.Errorf("%s -> %s 同状态应放行, 实际: %v", from, to, err)
				}
				continue
			}

			if isLegal(from, to) {
				if err != nil {
					t.Errorf("%s -> %s 应合法, 实际: %v", from, to, err)
				}
			} else {
				if !errors.Is(err, ErrInvalidStatusTransition) {
					t.Errorf("%s -> %s 应返回ErrInvalidStatusTransition, 实际: %v", from, to, err)
				}
			}
		}
	}
}

// TestAssertTransition_TerminalStates 终态无出边
func TestAssertTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []Status{StatusCancelled, StatusReturned} {
		for _, to := range AllStatuses {
			if to == terminal {
				continue
			}
			if err := AssertTransition(terminal, to); err == nil {
				t.Errorf("终态%s不应允许转换到%s", terminal, to)
			}
		}
	}
}

// TestGuardTransition_PaymentPreconditions 支付前置条件
func TestGuardTransition_PaymentPreconditions(t *testing.T) {
	tests := []struct {
		name           string
		current        Status
		target         Status
		hasLivePayment bool
		wantErr        error
	}{
		{"无支付记录不能进入支付完成", StatusPaymentPending, StatusPaymentConfirmed, false, ErrPaymentRequired},
		{"有支付记录可进入支付完成", StatusPaymentPending, StatusPaymentConfirmed, true, nil},
		{"有未退款支付不能取消", StatusPaymentPending, StatusCancelled, true, ErrRefundRequired},
		{"无支付记录可以取消", StatusOrderPlaced, StatusCancelled, false, nil},
		{"有未退款支付不能完成退货", StatusReturnRequested, StatusReturned, true, ErrRefundRequired},
		{"已退款后可以完成退货", StatusReturnRequested, StatusReturned, false, nil},
		{"基础非法转换优先拒绝", StatusOrderPlaced, StatusShipping, true, ErrInvalidStatusTransition},
		{"同状态放行不检查前置条件", StatusPaymentConfirmed, StatusPaymentConfirmed, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GuardTransition(tt.current, tt.target, tt.hasLivePayment)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("应放行, 实际: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望%v, 实际: %v", tt.wantErr, err)
			}
		})
	}
}

// TestNeedsCompensation 取消/退货完成需要补偿,其余不需要
func TestNeedsCompensation(t *testing.T) {
	if !NeedsCompensation(StatusOrderPlaced, StatusCancelled) {
		t.Error("进入CANCELLED应需要补偿")
	}
	if !NeedsCompensation(StatusReturnRequested, StatusReturned) {
		t.Error("进入RETURNED应需要补偿")
	}
	if NeedsCompensation(StatusCancelled, StatusCancelled) {
		t.Error("同状态无操作不应触发补偿")
	}
	if NeedsCompensation(StatusPaymentPending, StatusPaymentConfirmed) {
		t.Error("支付完成不应触发补偿")
	}
}

// TestNewOrder_ZeroFinalAmount 积分全额抵扣直接进入支付完成
func TestNewOrder_ZeroFinalAmount(t *testing.T) {
	items := []OrderItem{{ProductID: 1, Quantity: 2, UnitPrice: 5000, LineTotal: 10000}}

	o := NewOrder("ORD-20260831-ABC123", 1, items, 10000, 10000)
	if o.Status != StatusPaymentConfirmed {
		t.Errorf("实付为0应直接进入PAYMENT_CONFIRMED, 实际: %s", o.Status)
	}
	if o.FinalAmount != 0 {
		t.Errorf("实付金额应为0, 实际: %d", o.FinalAmount)
	}

	o2 := NewOrder("ORD-20260831-ABC124", 1, items, 10000, 3000)
	if o2.Status != StatusOrderPlaced {
		t.Errorf("实付大于0应进入ORDER_PLACED, 实际: %s", o2.Status)
	}
	if o2.FinalAmount != 7000 {
		t.Errorf("实付金额应为7000, 实际: %d", o2.FinalAmount)
	}
}

// TestOrder_TransitionTo 转换成功后状态落盘到实体
func TestOrder_TransitionTo(t *testing.T) {
	o := &Order{Status: StatusOrderPlaced}

	if err := o.TransitionTo(StatusPaymentPending); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if o.Status != StatusPaymentPending {
		t.Errorf("状态应为PAYMENT_PENDING, 实际: %s", o.Status)
	}

	// 非法转换保持原状态
	if err := o.TransitionTo(StatusDelivered); err == nil {
		t.Fatal("非法转换应报错")
	}
	if o.Status != StatusPaymentPending {
		t.Errorf("转换失败后状态不应改变, 实际: %s", o.Status)
	}
}

// TestOrder_IsOwnedBy 归属校验
func TestOrder_IsOwnedBy(t *testing.T) {
	o := &Order{UserID: 42}
	if !o.IsOwnedBy(42) {
		t.Error("本人应通过归属校验")
	}
	if o.IsOwnedBy(7) {
		t.Error("他人不应通过归属校验")
	}
}

// TestOrder_IsTerminal 终态判断
func TestOrder_IsTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		o := &Order{Status: s}
		want := s == StatusCancelled || s == StatusReturned
		if o.IsTerminal() != want {
			t.Errorf("%s IsTerminal应为%v", s, want)
		}
	}
}
