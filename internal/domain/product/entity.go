package product

import "time"

// Product 商品实体
// 设计说明:
// 1. 金额字段统一用int64存储"分",避免浮点误差
// 2. Stock和SalesCount只做相对增减,不做读-改-写(防止并发丢失更新)
type Product struct {
	ID            uint
	SellerID      uint
	Name          string
	Description   string
	Price         int64 // 原价(分)
	DiscountPrice int64 // 折扣价(分),0表示无折扣
	Stock         int   // 库存,恒>=0
	SalesCount    int   // 累计销量
	OnSale        bool  // 是否上架
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnitPrice 当前生效单价:有折扣价用折扣价,否则用原价
// 下单时该值快照到订单明细,之后改价不影响已有订单
func (p *Product) UnitPrice() int64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

// HasStock 库存是否满足购买数量
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// Seller 卖家(下单时名称快照到订单明细)
type Seller struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
