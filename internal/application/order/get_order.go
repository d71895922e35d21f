package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// GetOrderUseCase 订单查询用例(详情+列表)
// 详情走cache-aside:先查Redis,未命中回源MySQL并写缓存
type GetOrderUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	cache       OrderCache
	logger      *zap.Logger
}

// NewGetOrderUseCase 创建订单查询用例
func NewGetOrderUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	cache OrderCache,
	logger *zap.Logger,
) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
		logger:      logger,
	}
}

// OrderDetailResponse 订单详情DTO
type OrderDetailResponse struct {
	OrderID       uint                `json:"order_id"`
	OrderNo       string              `json:"order_no"`
	Status        string              `json:"status"`
	StatusLabel   string              `json:"status_label"`
	TotalAmount   int64               `json:"total_amount"`
	PointUsed     int64               `json:"point_used"`
	FinalAmount   int64               `json:"final_amount"`
	Memo          string              `json:"memo,omitempty"`
	RecipientName string              `json:"recipient_name"`
	Phone         string              `json:"phone"`
	ZipCode       string              `json:"zip_code,omitempty"`
	Address       string              `json:"address"`
	AddressDetail string              `json:"address_detail,omitempty"`
	Items         []OrderItemDetail   `json:"items"`
	Payments      []PaymentDetail     `json:"payments,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

// OrderItemDetail 订单明细DTO
type OrderItemDetail struct {
	ItemID          uint   `json:"item_id"`
	ProductID       uint   `json:"product_id"`
	ProductName     string `json:"product_name"`
	SellerName      string `json:"seller_name"`
	SelectedOptions string `json:"selected_options,omitempty"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	LineTotal       int64  `json:"line_total"`
	IsReviewed      bool   `json:"is_reviewed"`
}

// PaymentDetail 支付记录DTO
type PaymentDetail struct {
	PaymentID  uint   `json:"payment_id"`
	Method     string `json:"method"`
	Amount     int64  `json:"amount"`
	PointUsed  int64  `json:"point_used"`
	Status     string `json:"status"`
	TradeNo    string `json:"trade_no,omitempty"`
	PaidAt     string `json:"paid_at,omitempty"`
	RefundedAt string `json:"refunded_at,omitempty"`
}

// OrderSummary 列表项DTO
type OrderSummary struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	FinalAmount int64  `json:"final_amount"`
	ItemCount   int    `json:"item_count"`
	CreatedAt   string `json:"created_at"`
}

// Detail 查询订单详情(本人或管理员可见)
func (uc *GetOrderUseCase) Detail(ctx context.Context, userID uint, isAdmin bool, orderID uint) (*OrderDetailResponse, error) {
	o, err := uc.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) && !isAdmin {
		return nil, apperrors.ErrForbidden
	}

	// 支付记录不进缓存,每次取最新
	payments, err := uc.paymentRepo.ListByOrderID(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	return toDetailResponse(o, payments), nil
}

// List 分页查询用户订单列表
func (uc *GetOrderUseCase) List(ctx context.Context, userID uint, page, pageSize int) ([]OrderSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]OrderSummary, len(orders))
	for i, o := range orders {
		count := 0
		for _, item := range o.Items {
			count += item.Quantity
		}
		summaries[i] = OrderSummary{
			OrderID:     o.ID,
			OrderNo:     o.OrderNo,
			Status:      string(o.Status),
			StatusLabel: o.Status.Label(),
			FinalAmount: o.FinalAmount,
			ItemCount:   count,
			CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		}
	}
	return summaries, total, nil
}

// loadOrder cache-aside读取订单,缓存故障降级为直查数据库
func (uc *GetOrderUseCase) loadOrder(ctx context.Context, orderID uint) (*order.Order, error) {
	cached, err := uc.cache.Get(ctx, orderID)
	if err != nil {
		uc.logger.Warn("订单缓存读取失败,回源数据库", zap.Uint("order_id", orderID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if cerr := uc.cache.Set(ctx, o); cerr != nil {
		uc.logger.Warn("订单缓存写入失败", zap.Uint("order_id", orderID), zap.Error(cerr))
	}
	return o, nil
}

func toDetailResponse(o *order.Order, payments []*payment.Payment) *OrderDetailResponse {
	items := make([]OrderItemDetail, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDetail{
			ItemID:          item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			SellerName:      item.SellerName,
			SelectedOptions: item.SelectedOptions,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			IsReviewed:      item.IsReviewed,
		}
	}

	pays := make([]PaymentDetail, len(payments))
	for i, p := range payments {
		pd := PaymentDetail{
			PaymentID: p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			PointUsed: p.PointUsed,
			Status:    string(p.Status),
			TradeNo:   p.TradeNo,
		}
		if p.PaidAt != nil {
			pd.PaidAt = p.PaidAt.Format(time.RFC3339)
		}
		if p.RefundedAt != nil {
			pd.RefundedAt = p.RefundedAt.Format(time.RFC3339)
		}
		pays[i] = pd
	}

	return &OrderDetailResponse{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		Status:        string(o.Status),
		StatusLabel:   o.Status.Label(),
		TotalAmount:   o.TotalAmount,
		PointUsed:     o.PointUsed,
		FinalAmount:   o.FinalAmount,
		Memo:          o.Memo,
		RecipientName: o.RecipientName,
		Phone:         o.Phone,
		ZipCode:       o.ZipCode,
		Address:       o.Address,
		AddressDetail: o.AddressDetail,
		Items:         items,
		Payments:      pays,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}
