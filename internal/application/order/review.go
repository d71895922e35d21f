package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// ReviewGateUseCase 评价资格与评价标记
// 评价模块的对接契约:
// 1. CanReview 用户对某商品是否有评价资格(存在确认收货的订单)
// 2. MarkReviewed 评价发表后标记订单明细,单向置位防止重复评价
type ReviewGateUseCase struct {
	orderRepo order.Repository
	txManager TxManager
	logger    *zap.Logger
}

// NewReviewGateUseCase 创建评价资格用例
func NewReviewGateUseCase(orderRepo order.Repository, txManager TxManager, logger *zap.Logger) *ReviewGateUseCase {
	return &ReviewGateUseCase{orderRepo: orderRepo, txManager: txManager, logger: logger}
}

// CanReview 用户对商品是否有评价资格
func (uc *ReviewGateUseCase) CanReview(ctx context.Context, userID, productID uint) (bool, error) {
	return uc.orderRepo.HasConfirmedPurchase(ctx, userID, productID)
}

// MarkReviewed 标记订单明细已评价
// 校验明细归属于本人的CONFIRMED订单后置位
func (uc *ReviewGateUseCase) MarkReviewed(ctx context.Context, userID, orderID, itemID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return apperrors.ErrForbidden
		}
		if o.Status != order.StatusConfirmed {
			return apperrors.New(apperrors.ErrCodeBusinessError, "确认收货后才能评价")
		}

		found := false
		for _, item := range o.Items {
			if item.ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return order.ErrOrderNotFound
		}

		if err := uc.orderRepo.MarkItemReviewed(txCtx, itemID); err != nil {
			return err
		}

		uc.logger.Info("订单明细已标记评价",
			zap.String("order_no", o.OrderNo), zap.Uint("item_id", itemID))
		return nil
	})
}
