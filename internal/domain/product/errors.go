package product

import "github.com/xiebiao/shopmall/pkg/errors"

var (
	ErrProductNotFound = errors.New(errors.ErrCodeProductNotFound, "商品不存在")
	ErrSellerNotFound  = errors.New(errors.ErrCodeNotFound, "卖家不存在")
	ErrOutOfStock      = errors.New(errors.ErrCodeOutOfStock, "商品库存不足")
	ErrNotOnSale       = errors.New(errors.ErrCodeBusinessError, "商品已下架")
)
