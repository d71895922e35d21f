package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// ConfirmOrderUseCase 确认收货用例
// DELIVERED → CONFIRMED,确认后可评价、可申请退货
type ConfirmOrderUseCase struct {
	orderRepo order.Repository
	txManager TxManager
	cache     OrderCache
	logger    *zap.Logger
}

// NewConfirmOrderUseCase 创建确认收货用例
func NewConfirmOrderUseCase(
	orderRepo order.Repository,
	txManager TxManager,
	cache OrderCache,
	logger *zap.Logger,
) *ConfirmOrderUseCase {
	return &ConfirmOrderUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		cache:     cache,
		logger:    logger,
	}
}

// Execute 确认收货
func (uc *ConfirmOrderUseCase) Execute(ctx context.Context, userID, orderID uint) error {
	var confirmed *order.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return apperrors.ErrForbidden
		}

		if err := o.TransitionTo(order.StatusConfirmed); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		confirmed = o
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
		map[string]string{"from": string(order.StatusDelivered), "to": string(order.StatusConfirmed)})

	if cerr := uc.cache.Invalidate(ctx, confirmed.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", confirmed.ID), zap.Error(cerr))
	}

	uc.logger.Info("确认收货", zap.String("order_no", confirmed.OrderNo))
	return nil
}
