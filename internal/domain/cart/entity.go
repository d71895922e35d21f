package cart

import "time"

// Item 购物车条目
// 从购物车下单成功后,对应条目整体删除(部分下单不做部分清理)
type Item struct {
	ID              uint
	UserID          uint
	ProductID       uint
	Quantity        int
	SelectedOptions string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
