package payment

import (
	"context"

	"go.uber.org/zap"

	apporder "github.com/xiebiao/shopmall/internal/application/order"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// RefundPaymentUseCase 退款用例
// 退款是取消/退货决定的结果,不是独立动作:订单必须已CANCELLED或处于RETURN_REQUESTED。
// 退货申请中的订单退款即完成退货:
// 1. 支付置REFUNDED,回退支付时追加的积分
// 2. 执行订单补偿(回补库存/销量/下单积分)
// 3. 订单流转到RETURNED
// 全部在同一事务内,退款/补偿/状态变更要么全成功要么全失败。
// 已取消订单的退款只退钱不再补偿(取消时已补偿过)。
type RefundPaymentUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	userRepo    user.Repository
	compensator *apporder.Compensator
	txManager   TxManager
	publisher   EventPublisher
	cache       OrderCache
	logger      *zap.Logger
}

// NewRefundPaymentUseCase 创建退款用例
func NewRefundPaymentUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	userRepo user.Repository,
	compensator *apporder.Compensator,
	txManager TxManager,
	publisher EventPublisher,
	cache OrderCache,
	logger *zap.Logger,
) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		compensator: compensator,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		logger:      logger,
	}
}

// RefundResponse 退款响应DTO
type RefundResponse struct {
	PaymentID      uint   `json:"payment_id"`
	OrderNo        string `json:"order_no"`
	RefundedAmount int64  `json:"refunded_amount"`
	PointReturned  int64  `json:"point_returned"`
	OrderStatus    string `json:"order_status"`
}

// Execute 执行退款
// isAdmin为true时跳过归属校验(管理端代客退款),reason仅记录日志
func (uc *RefundPaymentUseCase) Execute(ctx context.Context, userID uint, isAdmin bool, paymentID uint, reason string) (*RefundResponse, error) {
	var refunded *payment.Payment
	var o *order.Order
	var fromStatus order.Status

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		p, err := uc.paymentRepo.FindByID(txCtx, paymentID)
		if err != nil {
			return err
		}
		o, err = uc.orderRepo.FindByID(txCtx, p.OrderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) && !isAdmin {
			return apperrors.ErrForbidden
		}

		// 重复退款/未完成支付的校验在实体上(Refund只改内存,失败整体回滚)
		if err := p.Refund(); err != nil {
			return err
		}

		fromStatus = o.Status
		if o.Status != order.StatusCancelled && o.Status != order.StatusReturnRequested {
			return order.ErrInvalidStatusTransition
		}

		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}

		// 回退支付时追加使用的积分
		if p.PointUsed > 0 {
			if err := uc.userRepo.AdjustPoint(txCtx, p.UserID, p.PointUsed); err != nil {
				return err
			}
		}

		// 退货路径:补偿并收尾到RETURNED。取消路径在取消时已补偿,这里只退钱
		if o.Status == order.StatusReturnRequested {
			if err := uc.compensator.Compensate(txCtx, o); err != nil {
				return err
			}
			// 退款完成后不再有有效支付,可进入RETURNED
			if err := order.GuardTransition(o.Status, order.StatusReturned, false); err != nil {
				return err
			}
			if err := o.TransitionTo(order.StatusReturned); err != nil {
				return err
			}
			if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
				return err
			}
		}

		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.RefundsTotal)
	if fromStatus != o.Status {
		metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
			map[string]string{"from": string(fromStatus), "to": string(o.Status)})
	}

	if cerr := uc.cache.Invalidate(ctx, o.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", o.ID), zap.Error(cerr))
	}

	uc.logger.Info("退款完成",
		zap.String("order_no", o.OrderNo),
		zap.Uint("payment_id", refunded.ID),
		zap.Int64("amount", refunded.Amount),
		zap.String("reason", reason))

	uc.publisher.Publish(ctx, event.RoutingPaymentRefunded, event.OrderEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		FromStatus: string(fromStatus),
		ToStatus:   string(o.Status),
		Amount:     refunded.Amount,
	})

	return &RefundResponse{
		PaymentID:      refunded.ID,
		OrderNo:        o.OrderNo,
		RefundedAmount: refunded.Amount,
		PointReturned:  refunded.PointUsed,
		OrderStatus:    string(o.Status),
	}, nil
}
