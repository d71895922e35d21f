package dto

// RequestPaymentRequest HTTP层支付请求
// amount + point_used 必须等于订单的final_amount，不一致直接拒绝
type RequestPaymentRequest struct {
	Method    string `json:"method" binding:"required,oneof=CARD BANK_TRANSFER MOCK"`
	Amount    int64  `json:"amount" binding:"min=0"`
	PointUsed int64  `json:"point_used" binding:"min=0"`
}

// RefundPaymentRequest 退款请求（原因可选）
type RefundPaymentRequest struct {
	Reason string `json:"reason" binding:"max=200"`
}
