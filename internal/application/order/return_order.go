package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// RequestReturnUseCase 申请退货用例
// DELIVERED/CONFIRMED → RETURN_REQUESTED
// 申请阶段不补偿不退款,退货完成(退款)时统一处理
type RequestReturnUseCase struct {
	orderRepo order.Repository
	txManager TxManager
	publisher EventPublisher
	cache     OrderCache
	logger    *zap.Logger
}

// NewRequestReturnUseCase 创建申请退货用例
func NewRequestReturnUseCase(
	orderRepo order.Repository,
	txManager TxManager,
	publisher EventPublisher,
	cache OrderCache,
	logger *zap.Logger,
) *RequestReturnUseCase {
	return &RequestReturnUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Execute 申请退货
func (uc *RequestReturnUseCase) Execute(ctx context.Context, userID, orderID uint) error {
	var requested *order.Order
	var fromStatus order.Status

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return apperrors.ErrForbidden
		}

		fromStatus = o.Status
		if err := o.TransitionTo(order.StatusReturnRequested); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		requested = o
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal,
		map[string]string{"from": string(fromStatus), "to": string(order.StatusReturnRequested)})

	if cerr := uc.cache.Invalidate(ctx, requested.ID); cerr != nil {
		uc.logger.Warn("订单缓存失效失败", zap.Uint("order_id", requested.ID), zap.Error(cerr))
	}

	uc.logger.Info("退货申请已提交",
		zap.String("order_no", requested.OrderNo),
		zap.String("from", string(fromStatus)))

	uc.publisher.Publish(ctx, event.RoutingOrderReturnRequested, event.OrderEvent{
		OrderID:    requested.ID,
		OrderNo:    requested.OrderNo,
		UserID:     requested.UserID,
		FromStatus: string(fromStatus),
		ToStatus:   string(order.StatusReturnRequested),
	})

	return nil
}
