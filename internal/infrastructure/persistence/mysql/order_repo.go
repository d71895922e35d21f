package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/order"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,一起保存
// 2. 查询时Preload预加载明细,避免N+1
// 3. 状态更新带乐观锁版本条件
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(GORM通过foreignKey自动保存Items)
// 订单号碰撞时返回ErrCodeDuplicateEntry,调用方重新生成订单号重试
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突")
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找订单(含明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := getDB(ctx, r.db)

	err := db.Preload("Items").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单(含明细)
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	db := getDB(ctx, r.db)

	err := db.Preload("Items").Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 乐观锁状态更新
// UPDATE orders SET status=?, version=version+1 WHERE id=? AND version=?
// 影响行数为0时区分"订单不存在"和"版本冲突"
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	db := getDB(ctx, r.db)

	result := db.Model(&OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]interface{}{
			"status":     string(o.Status),
			"version":    gorm.Expr("version + 1"),
			"updated_at": o.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrOrderConflict
	}

	o.Version++
	return nil
}

// ListByUserID 分页查询用户订单(按创建时间倒序)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// MarkItemReviewed 标记订单明细已评价(单向置位)
func (r *orderRepository) MarkItemReviewed(ctx context.Context, orderItemID uint) error {
	db := getDB(ctx, r.db)

	result := db.Model(&OrderItemModel{}).
		Where("id = ? AND is_reviewed = ?", orderItemID, false).
		Update("is_reviewed", true)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "标记评价失败")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&OrderItemModel{}).Where("id = ?", orderItemID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单明细失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrItemAlreadyReviewed
	}
	return nil
}

// HasConfirmedPurchase 用户是否有包含该商品的确认收货订单
func (r *orderRepository) HasConfirmedPurchase(ctx context.Context, userID, productID uint) (bool, error) {
	db := getDB(ctx, r.db)

	var count int64
	err := db.Model(&OrderItemModel{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, string(order.StatusConfirmed), productID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询购买记录失败")
	}

	return count > 0, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			SellerID:        item.SellerID,
			ProductName:     item.ProductName,
			SellerName:      item.SellerName,
			SelectedOptions: item.SelectedOptions,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			IsReviewed:      item.IsReviewed,
		}
	}

	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		PointUsed:     o.PointUsed,
		FinalAmount:   o.FinalAmount,
		Memo:          o.Memo,
		RecipientName: o.RecipientName,
		Phone:         o.Phone,
		ZipCode:       o.ZipCode,
		Address:       o.Address,
		AddressDetail: o.AddressDetail,
		Version:       o.Version,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			SellerID:        item.SellerID,
			ProductName:     item.ProductName,
			SellerName:      item.SellerName,
			SelectedOptions: item.SelectedOptions,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			IsReviewed:      item.IsReviewed,
		}
	}

	return &order.Order{
		ID:            model.ID,
		OrderNo:       model.OrderNo,
		UserID:        model.UserID,
		Status:        order.Status(model.Status),
		TotalAmount:   model.TotalAmount,
		PointUsed:     model.PointUsed,
		FinalAmount:   model.FinalAmount,
		Memo:          model.Memo,
		RecipientName: model.RecipientName,
		Phone:         model.Phone,
		ZipCode:       model.ZipCode,
		Address:       model.Address,
		AddressDetail: model.AddressDetail,
		Version:       model.Version,
		Items:         items,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
