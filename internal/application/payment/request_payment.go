package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// TxManager 事务执行接口(由mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 事件发布接口(fire-and-forget)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, evt event.OrderEvent)
}

// OrderCache 订单详情缓存接口
type OrderCache interface {
	Invalidate(ctx context.Context, orderID uint) error
}

// RequestPaymentUseCase 支付用例
// 设计说明:
// 1. 支付网关是进程内mock,支付请求和回调在同一事务内完成
// 2. 金额校验:支付金额 + 支付时追加积分 = 订单实付金额,一分不差
// 3. 新支付发起前作废该订单全部PENDING支付,保证最多一条进行中
// 4. 订单最多存在一条"已完成且未退款"的支付(重复支付直接拒绝)
type RequestPaymentUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	userRepo    user.Repository
	txManager   TxManager
	publisher   EventPublisher
	cache       OrderCache
	logger      *zap.Logger
}

// NewRequestPaymentUseCase 创建支付用例
func NewRequestPaymentUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	userRepo user.Repository,
	txManager TxManager,
	publisher EventPublisher,
	cache OrderCache,
	logger *zap.Logger,
) *RequestPaymentUseCase {
	return &RequestPaymentUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		logger:      logger,
	}
}

// RequestPaymentRequest 支付请求DTO
type RequestPaymentRequest struct {
	UserID    uint   // 从JWT提取
	OrderID   uint
	Method    string // CARD | BANK_TRANSFER | MOCK
	Amount    int64  // 支付金额(分)
	PointUsed int64  // 支付时追加使用的积分(分)
}

// RequestPaymentResponse 支付响应DTO
type RequestPaymentResponse struct {
	PaymentID   uint   `json:"payment_id"`
	OrderNo     string `json:"order_no"`
	Amount      int64  `json:"amount"`
	PointUsed   int64  `json:"point_used"`
	Status      string `json:"status"`
	TradeNo     string `json:"trade_no"`
	OrderStatus string `json:"order_status"`
}

// Execute 执行支付
// 事务内:校验 → 作废旧PENDING → 扣追加积分 → 创建支付 → mock网关扣款 →
// 支付置COMPLETED → 订单流转到PAYMENT_CONFIRMED
func (uc *RequestPaymentUseCase) Execute(ctx context.Context, req RequestPaymentRequest) (*RequestPaymentResponse, error) {
	if req.Amount < 0 || req.PointUsed < 0 {
		return nil, apperrors.ErrInvalidParams
	}

	var paid *payment.Payment
	var o *order.Order
	var fromStatus order.Status

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		o, err = uc.orderRepo.FindByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(req.UserID) {
			return apperrors.ErrForbidden
		}

		// 只有ORDER_PLACED/PAYMENT_PENDING可发起支付
		if o.Status != order.StatusOrderPlaced && o.Status != order.StatusPaymentPending {
			return order.ErrInvalidStatusTransition
		}

		// 重复支付拦截
		live, err := uc.paymentRepo.FindLiveByOrderID(txCtx, o.ID)
		if err != nil {
			return err
		}
		if live != nil {
			return payment.ErrAlreadyPaid
		}

		// 金额校验:支付金额 + 追加积分 = 实付金额
		if req.Amount+req.PointUsed != o.FinalAmount {
			return payment.ErrAmountMismatch
		}

		// 作废旧的进行中支付
		if err := uc.paymentRepo.FailPendingByOrderID(txCtx, o.ID); err != nil {
			return err
		}

		// 扣减追加积分(余额守卫)
		if req.PointUsed > 0 {
			if err := uc.userRepo.AdjustPoint(txCtx, req.UserID, -req.PointUsed); err != nil {
				return err
			}
		}

		fromStatus = o.Status
		if o.Status == order.StatusOrderPlaced {
			if err := o.TransitionTo(order.StatusPaymentPending); err != nil {
				return err
			}
			if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
				return err
			}
		}

		now := time.Now()
		p := &payment.Payment{
			OrderID:   o.ID,
			UserID:    req.UserID,
			Method:    req.Method,
			Amount:    req.Amount,
			PointUsed: req.PointUsed,
			Status:    payment.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.paymentRepo.Create(txCtx, p); err != nil {
			return err
		}

		// mock支付网关扣款,拿到流水号
		tradeNo := fmt.Sprintf("MOCK-%d-%d", p.ID, now.Unix())
		p.Complete(tradeNo)
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}

		// 支付完成后订单流转,前置条件从刚落库的支付状态取
		if err := order.GuardTransition(o.Status, order.StatusPaymentConfirmed, p.IsLive()); err != nil {
			return err
		}
		if err := o.TransitionTo(order.StatusPaymentConfirmed); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		paid = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.PaymentsCompletedTotal)
	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
		map[string]string{"from": string(fromStatus), "to": string(order.StatusPaymentConfirmed)})

	if cerr := uc.cache.Invalidate(ctx, o.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", o.ID), zap.Error(cerr))
	}

	uc.logger.Info("支付完成",
		zap.String("order_no", o.OrderNo),
		zap.Int64("amount", paid.Amount),
		zap.String("trade_no", paid.TradeNo))

	uc.publisher.Publish(ctx, event.RoutingOrderPaid, event.OrderEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		FromStatus: string(fromStatus),
		ToStatus:   string(order.StatusPaymentConfirmed),
		Amount:     paid.Amount,
	})

	return &RequestPaymentResponse{
		PaymentID:   paid.ID,
		OrderNo:     o.OrderNo,
		Amount:      paid.Amount,
		PointUsed:   paid.PointUsed,
		Status:      string(paid.Status),
		TradeNo:     paid.TradeNo,
		OrderStatus: string(o.Status),
	}, nil
}
