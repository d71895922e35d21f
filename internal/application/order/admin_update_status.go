package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// AdminUpdateStatusUseCase 管理端订单状态流转用例
// 备货/发货/送达等运营侧流转从这里走,与用户侧共用同一套状态机守卫,
// 管理端也不能绕过合法性和支付前置条件
type AdminUpdateStatusUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	compensator *Compensator
	txManager   TxManager
	publisher   EventPublisher
	cache       OrderCache
	logger      *zap.Logger
}

// NewAdminUpdateStatusUseCase 创建管理端状态流转用例
func NewAdminUpdateStatusUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	compensator *Compensator,
	txManager TxManager,
	publisher EventPublisher,
	cache OrderCache,
	logger *zap.Logger,
) *AdminUpdateStatusUseCase {
	return &AdminUpdateStatusUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		compensator: compensator,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		logger:      logger,
	}
}

// Execute 将订单流转到目标状态
// 目标状态为CANCELLED/RETURNED时同事务执行补偿
func (uc *AdminUpdateStatusUseCase) Execute(ctx context.Context, orderID uint, target order.Status) error {
	var updated *order.Order
	var fromStatus order.Status

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		// 同状态视为无操作,幂等返回
		if o.Status == target {
			updated = o
			fromStatus = o.Status
			return nil
		}

		live, err := uc.paymentRepo.FindLiveByOrderID(txCtx, o.ID)
		if err != nil {
			return err
		}
		if err := order.GuardTransition(o.Status, target, live != nil); err != nil {
			return err
		}

		if order.NeedsCompensation(o.Status, target) {
			if target == order.StatusCancelled {
				if err := uc.paymentRepo.FailPendingByOrderID(txCtx, o.ID); err != nil {
					return err
				}
			}
			if err := uc.compensator.Compensate(txCtx, o); err != nil {
				return err
			}
		}

		fromStatus = o.Status
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return err
	}

	if fromStatus == target {
		return nil
	}

	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
		map[string]string{"from": string(fromStatus), "to": string(target)})

	if cerr := uc.cache.Invalidate(ctx, updated.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", updated.ID), zap.Error(cerr))
	}

	uc.logger.Info("管理端订单状态流转",
		zap.String("order_no", updated.OrderNo),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(target)))

	uc.publisher.Publish(ctx, routingForTarget(target), event.OrderEvent{
		OrderID:    updated.ID,
		OrderNo:    updated.OrderNo,
		UserID:     updated.UserID,
		FromStatus: string(fromStatus),
		ToStatus:   string(target),
	})

	return nil
}

// routingForTarget 终态用专属路由键,其余走通用状态变更
func routingForTarget(target order.Status) string {
	switch target {
	case order.StatusCancelled:
		return event.RoutingOrderCancelled
	case order.StatusReturned:
		return event.RoutingOrderReturned
	default:
		return event.RoutingOrderStatusChanged
	}
}
