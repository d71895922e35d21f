package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// ListByUserID 查询用户购物车条目
func (r *cartRepository) ListByUserID(ctx context.Context, userID uint) ([]*cart.Item, error) {
	var models []CartItemModel
	db := getDB(ctx, r.db)

	err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	items := make([]*cart.Item, len(models))
	for i, m := range models {
		items[i] = &cart.Item{
			ID:              m.ID,
			UserID:          m.UserID,
			ProductID:       m.ProductID,
			Quantity:        m.Quantity,
			SelectedOptions: m.SelectedOptions,
			CreatedAt:       m.CreatedAt,
			UpdatedAt:       m.UpdatedAt,
		}
	}
	return items, nil
}

// DeleteItems 删除用户的指定购物车条目(下单成功后清理)
// 带user_id条件防止误删他人条目
func (r *cartRepository) DeleteItems(ctx context.Context, userID uint, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}

	db := getDB(ctx, r.db)
	err := db.Where("user_id = ? AND id IN ?", userID, itemIDs).
		Delete(&CartItemModel{}).Error
	if err != nil {
		return apperrors.Wrap(err, "清理购物车失败")
	}
	return nil
}
