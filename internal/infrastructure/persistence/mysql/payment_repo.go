package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/payment"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// paymentRepository 支付仓储实现(MySQL)
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

// Create 创建支付记录
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建支付记录失败")
	}

	p.ID = model.ID
	return nil
}

// Update 更新支付记录(状态/流水号/时间戳)
func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	db := getDB(ctx, r.db)

	result := db.Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":      string(p.Status),
		"trade_no":    p.TradeNo,
		"paid_at":     p.PaidAt,
		"refunded_at": p.RefundedAt,
		"updated_at":  p.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新支付记录失败")
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// FindByID 根据ID查找支付记录
func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model PaymentModel
	db := getDB(ctx, r.db)

	err := db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	return toPaymentEntity(&model), nil
}

// ListByOrderID 查询订单的全部支付记录(按创建时间正序)
func (r *paymentRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*payment.Payment, error) {
	var models []PaymentModel
	db := getDB(ctx, r.db)

	err := db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentEntity(&models[i])
	}
	return payments, nil
}

// FindLiveByOrderID 查询订单"已完成且未退款"的支付记录
// 不存在返回(nil, nil)
func (r *paymentRepository) FindLiveByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	var model PaymentModel
	db := getDB(ctx, r.db)

	err := db.Where("order_id = ? AND status = ?", orderID, string(payment.StatusCompleted)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}

	return toPaymentEntity(&model), nil
}

// FailPendingByOrderID 将订单的PENDING支付置为FAILED(新支付发起前调用)
func (r *paymentRepository) FailPendingByOrderID(ctx context.Context, orderID uint) error {
	db := getDB(ctx, r.db)

	err := db.Model(&PaymentModel{}).
		Where("order_id = ? AND status = ?", orderID, string(payment.StatusPending)).
		Update("status", string(payment.StatusFailed)).Error
	if err != nil {
		return apperrors.Wrap(err, "作废进行中支付失败")
	}
	return nil
}

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:         p.ID,
		OrderID:    p.OrderID,
		UserID:     p.UserID,
		Method:     p.Method,
		Amount:     p.Amount,
		PointUsed:  p.PointUsed,
		Status:     string(p.Status),
		TradeNo:    p.TradeNo,
		PaidAt:     p.PaidAt,
		RefundedAt: p.RefundedAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toPaymentEntity(model *PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:         model.ID,
		OrderID:    model.OrderID,
		UserID:     model.UserID,
		Method:     model.Method,
		Amount:     model.Amount,
		PointUsed:  model.PointUsed,
		Status:     payment.Status(model.Status),
		TradeNo:    model.TradeNo,
		PaidAt:     model.PaidAt,
		RefundedAt: model.RefundedAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
