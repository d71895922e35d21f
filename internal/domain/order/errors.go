package order

import "github.com/xiebiao/shopmall/pkg/errors"

// 订单领域错误定义
var (
	ErrOrderNotFound           = errors.New(errors.ErrCodeOrderNotFound, "订单不存在")
	ErrInvalidStatusTransition = errors.New(errors.ErrCodeInvalidTransition, "非法的订单状态转换")
	ErrOrderAlreadyCancelled   = errors.New(errors.ErrCodeAlreadyCancelled, "订单已取消")
	ErrOrderConflict           = errors.New(errors.ErrCodeVersionConflict, "订单已被并发修改,请重试")
	ErrPaymentRequired         = errors.New(errors.ErrCodeInvalidTransition, "订单尚未完成支付")
	ErrRefundRequired          = errors.New(errors.ErrCodeInvalidTransition, "存在未退款的支付记录,需先退款")
	ErrEmptyOrderItems         = errors.New(errors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrInvalidQuantity         = errors.New(errors.ErrCodeInvalidParams, "商品数量必须大于0")
	ErrPointExceedsTotal       = errors.New(errors.ErrCodeInvalidParams, "积分抵扣不能超过订单总金额")
	ErrItemAlreadyReviewed     = errors.New(errors.ErrCodeDuplicateEntry, "该订单商品已评价")
)
