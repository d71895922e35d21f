package payment

import "time"

// Status 支付记录状态
type Status string

const (
	StatusPending   Status = "PENDING"   // 支付发起,等待回调
	StatusCompleted Status = "COMPLETED" // 支付完成
	StatusFailed    Status = "FAILED"    // 支付失败/被新支付取代
	StatusRefunded  Status = "REFUNDED"  // 已退款
)

// Payment 支付记录实体
// 设计说明:
// 1. 一个订单可有多条支付记录(失败重试),但最多一条COMPLETED且未退款
// 2. Amount记录本次支付金额,必须等于订单FinalAmount减去本次使用积分
// 3. PointUsed是支付环节追加使用的积分,与下单时的抵扣分开记账
type Payment struct {
	ID         uint
	OrderID    uint
	UserID     uint
	Method     string // 支付方式(CARD/BANK_TRANSFER/MOCK)
	Amount     int64  // 实际支付金额(分)
	PointUsed  int64  // 支付时追加使用的积分(分)
	Status     Status
	TradeNo    string // 第三方支付流水号
	PaidAt     *time.Time
	RefundedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsLive 是否为"已完成且未退款"的有效支付
// 有效支付存在时订单不可取消/完成退货,必须先走退款
func (p *Payment) IsLive() bool {
	return p.Status == StatusCompleted
}

// Complete 标记支付完成
func (p *Payment) Complete(tradeNo string) {
	now := time.Now()
	p.Status = StatusCompleted
	p.TradeNo = tradeNo
	p.PaidAt = &now
	p.UpdatedAt = now
}

// Refund 标记已退款
// 只有COMPLETED状态可退款,重复退款返回ErrAlreadyRefunded
func (p *Payment) Refund() error {
	switch p.Status {
	case StatusRefunded:
		return ErrAlreadyRefunded
	case StatusCompleted:
		now := time.Now()
		p.Status = StatusRefunded
		p.RefundedAt = &now
		p.UpdatedAt = now
		return nil
	default:
		return ErrNotRefundable
	}
}
