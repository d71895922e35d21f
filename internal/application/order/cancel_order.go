package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// CancelOrderUseCase 取消订单用例
// 只允许未支付完成的订单取消(ORDER_PLACED/PAYMENT_PENDING → CANCELLED),
// 取消与补偿(回补库存/销量/积分)同事务执行
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	compensator *Compensator
	txManager   TxManager
	publisher   EventPublisher
	cache       OrderCache
	logger      *zap.Logger
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	compensator *Compensator,
	txManager TxManager,
	publisher EventPublisher,
	cache OrderCache,
	logger *zap.Logger,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		compensator: compensator,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		logger:      logger,
	}
}

// Execute 取消订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, userID, orderID uint) error {
	var cancelled *order.Order
	var fromStatus order.Status

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return apperrors.ErrForbidden
		}
		if o.Status == order.StatusCancelled {
			return order.ErrOrderAlreadyCancelled
		}

		// 有未退款的完成支付时禁止取消(必须先走退款)
		live, err := uc.paymentRepo.FindLiveByOrderID(txCtx, o.ID)
		if err != nil {
			return err
		}
		if err := order.GuardTransition(o.Status, order.StatusCancelled, live != nil); err != nil {
			return err
		}

		// 作废进行中的支付记录
		if err := uc.paymentRepo.FailPendingByOrderID(txCtx, o.ID); err != nil {
			return err
		}

		// 补偿与状态变更同事务
		if err := uc.compensator.Compensate(txCtx, o); err != nil {
			return err
		}

		fromStatus = o.Status
		if err := o.TransitionTo(order.StatusCancelled); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
		map[string]string{"from": string(fromStatus), "to": string(order.StatusCancelled)})

	if cerr := uc.cache.Invalidate(ctx, cancelled.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", cancelled.ID), zap.Error(cerr))
	}

	uc.logger.Info("订单已取消",
		zap.String("order_no", cancelled.OrderNo),
		zap.String("from", string(fromStatus)))

	uc.publisher.Publish(ctx, event.RoutingOrderCancelled, event.OrderEvent{
		OrderID:    cancelled.ID,
		OrderNo:    cancelled.OrderNo,
		UserID:     cancelled.UserID,
		FromStatus: string(fromStatus),
		ToStatus:   string(order.StatusCancelled),
	})

	return nil
}
