package payment

import "github.com/xiebiao/shopmall/pkg/errors"

var (
	ErrPaymentNotFound = errors.New(errors.ErrCodePaymentNotFound, "支付记录不存在")
	ErrAlreadyRefunded = errors.New(errors.ErrCodeAlreadyRefunded, "该支付已退款")
	ErrNotRefundable   = errors.New(errors.ErrCodePaymentFailed, "只有已完成的支付可以退款")
	ErrAmountMismatch  = errors.New(errors.ErrCodePaymentFailed, "支付金额与订单应付金额不符")
	ErrAlreadyPaid     = errors.New(errors.ErrCodePaymentFailed, "该订单已存在完成的支付")
)
