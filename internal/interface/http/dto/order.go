package dto

// CreateOrderRequest HTTP层下单请求
// 金额一律以分为单位的整数传输，积分与金额同单位
type CreateOrderRequest struct {
	AddressID   uint                   `json:"address_id" binding:"required"`
	PointUsed   int64                  `json:"point_used" binding:"min=0"`
	Memo        string                 `json:"memo" binding:"max=200"`
	Items       []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	CartItemIDs []uint                 `json:"cart_item_ids"`
}

// CreateOrderItemInput 下单明细
type CreateOrderItemInput struct {
	ProductID       uint   `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1,max=999"`
	SelectedOptions string `json:"selected_options" binding:"max=200"`
}

// CreateOrderResponse 下单响应
type CreateOrderResponse struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	PointUsed   int64  `json:"point_used"`
	FinalAmount int64  `json:"final_amount"`
	CreatedAt   string `json:"created_at"`
}

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// UpdateOrderStatusRequest 管理端状态覆写请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MarkReviewedRequest 评价标记请求
type MarkReviewedRequest struct {
	OrderItemID uint `json:"order_item_id" binding:"required"`
}

// CanReviewResponse 评价资格响应
type CanReviewResponse struct {
	CanReview bool `json:"can_review"`
}
