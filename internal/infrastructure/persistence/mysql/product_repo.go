package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/shopmall/internal/domain/product"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// FindByID 根据ID查找商品(无锁读)
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	db := getDB(ctx, r.db)

	err := db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// LockByID SELECT FOR UPDATE锁定商品行
// 必须在事务内调用(getDB从context提取事务DB)
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	db := getDB(ctx, r.db)

	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	return toProductEntity(&model), nil
}

// AdjustStock 原子调整库存
// UPDATE products SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
// 影响行数为0时区分"商品不存在"和"库存不足"
func (r *productRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)

	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		var model ProductModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return apperrors.Wrap(err, "查询商品失败")
		}
		return product.ErrOutOfStock
	}

	return nil
}

// AdjustSalesCount 原子调整销量(下单+,取消/退货-,补偿量不会超过下单量,无需下界守卫)
func (r *productRepository) AdjustSalesCount(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)

	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Update("sales_count", gorm.Expr("sales_count + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新销量失败")
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// FindSellerByID 查找卖家
func (r *productRepository) FindSellerByID(ctx context.Context, id uint) (*product.Seller, error) {
	var model SellerModel
	db := getDB(ctx, r.db)

	err := db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrSellerNotFound
		}
		return nil, apperrors.Wrap(err, "查询卖家失败")
	}

	return &product.Seller{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:            model.ID,
		SellerID:      model.SellerID,
		Name:          model.Name,
		Description:   model.Description,
		Price:         model.Price,
		DiscountPrice: model.DiscountPrice,
		Stock:         model.Stock,
		SalesCount:    model.SalesCount,
		OnSale:        model.OnSale,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
