package product

import "testing"

// TestProduct_UnitPrice 折扣价优先于原价
func TestProduct_UnitPrice(t *testing.T) {
	p := &Product{Price: 10000, DiscountPrice: 8000}
	if p.UnitPrice() != 8000 {
		t.Errorf("有折扣价应取折扣价, 实际: %d", p.UnitPrice())
	}

	p2 := &Product{Price: 10000, DiscountPrice: 0}
	if p2.UnitPrice() != 10000 {
		t.Errorf("无折扣价应取原价, 实际: %d", p2.UnitPrice())
	}
}

// TestProduct_HasStock 库存判定边界
func TestProduct_HasStock(t *testing.T) {
	p := &Product{Stock: 3}
	if !p.HasStock(3) {
		t.Error("库存恰好等于购买数量应允许")
	}
	if p.HasStock(4) {
		t.Error("库存不足应拒绝")
	}
}
