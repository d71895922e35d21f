package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// 订单号碰撞时的最大重试次数
const maxOrderNoRetry = 3

// CreateOrderUseCase 创建订单用例
// 整个项目最核心的用例:事务处理、悲观锁防超卖、价格冻结、积分抵扣
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	userRepo    user.Repository
	cartRepo    cart.Repository
	txManager   TxManager
	publisher   EventPublisher
	logger      *zap.Logger
	genOrderNo  func() string
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	userRepo user.Repository,
	cartRepo cart.Repository,
	txManager TxManager,
	publisher EventPublisher,
	logger *zap.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		txManager:   txManager,
		publisher:   publisher,
		logger:      logger,
		genOrderNo:  order.GenerateOrderNo,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	UserID      uint              // 买家用户ID(从JWT提取)
	AddressID   uint              // 收货地址ID(必须属于本人)
	PointUsed   int64             // 下单时抵扣的积分(分)
	Memo        string            // 买家备注
	Items       []CreateOrderItem // 订单明细
	CartItemIDs []uint            // 购物车下单时待清理的条目ID
}

// CreateOrderItem 下单明细项
type CreateOrderItem struct {
	ProductID       uint
	Quantity        int
	SelectedOptions string
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	PointUsed   int64  `json:"point_used"`
	FinalAmount int64  `json:"final_amount"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行下单
//
// 防超卖流程(悲观锁):
//  1. SELECT FOR UPDATE锁定每个商品行
//  2. 校验上架状态和库存
//  3. 相对扣减库存(带stock + delta >= 0守卫,双保险)
//  4. 创建订单 → COMMIT释放锁
//
// 价格在锁内读取并快照到订单明细,同一事务内扣库存、增销量、扣积分、清购物车,
// 任一步失败整体回滚,库存/销量/积分/订单要么全部生效要么全不生效。
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	start := time.Now()

	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	var created *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 地址归属校验 + 快照
		addr, err := uc.userRepo.FindAddress(txCtx, req.UserID, req.AddressID)
		if err != nil {
			return err
		}

		// 2. 按ProductID升序锁定商品,统一加锁顺序避免交叉下单死锁
		items := make([]CreateOrderItem, len(req.Items))
		copy(items, req.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		orderItems := make([]order.OrderItem, 0, len(items))
		var totalAmount int64

		for _, it := range items {
			p, err := uc.productRepo.LockByID(txCtx, it.ProductID)
			if err != nil {
				return err
			}
			if !p.OnSale {
				return product.ErrNotOnSale
			}
			if !p.HasStock(it.Quantity) {
				return product.ErrOutOfStock
			}

			seller, err := uc.productRepo.FindSellerByID(txCtx, p.SellerID)
			if err != nil {
				return err
			}

			// 3. 锁内立即扣库存、增销量(不等支付,取消/退货时补偿回来)
			if err := uc.productRepo.AdjustStock(txCtx, p.ID, -it.Quantity); err != nil {
				return err
			}
			if err := uc.productRepo.AdjustSalesCount(txCtx, p.ID, it.Quantity); err != nil {
				return err
			}

			unitPrice := p.UnitPrice()
			lineTotal := unitPrice * int64(it.Quantity)
			totalAmount += lineTotal

			orderItems = append(orderItems, order.OrderItem{
				ProductID:       p.ID,
				SellerID:        p.SellerID,
				ProductName:     p.Name,
				SellerName:      seller.Name,
				SelectedOptions: it.SelectedOptions,
				Quantity:        it.Quantity,
				UnitPrice:       unitPrice,
				LineTotal:       lineTotal,
			})
		}

		// 4. 积分抵扣上限校验(实付金额恒>=0)
		if req.PointUsed > totalAmount {
			return order.ErrPointExceedsTotal
		}

		// 5. 生成订单,订单号碰撞时重新生成重试
		o, err := uc.createWithRetry(txCtx, req, addr, orderItems, totalAmount)
		if err != nil {
			return err
		}

		// 6. 扣减积分(point + delta >= 0守卫,余额不足回滚整单)
		if req.PointUsed > 0 {
			if err := uc.userRepo.AdjustPoint(txCtx, req.UserID, -req.PointUsed); err != nil {
				return err
			}
		}

		// 7. 购物车下单成功后清理对应条目
		if len(req.CartItemIDs) > 0 {
			if err := uc.cartRepo.DeleteItems(txCtx, req.UserID, req.CartItemIDs); err != nil {
				return err
			}
		}

		created = o
		return nil
	})

	if err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())

	uc.logger.Info("订单创建成功",
		zap.String("order_no", created.OrderNo),
		zap.Uint("user_id", created.UserID),
		zap.Int64("final_amount", created.FinalAmount),
		zap.String("status", string(created.Status)))

	// 事务提交后发布事件,失败不影响订单
	uc.publisher.Publish(ctx, event.RoutingOrderCreated, event.OrderEvent{
		OrderID:  created.ID,
		OrderNo:  created.OrderNo,
		UserID:   created.UserID,
		ToStatus: string(created.Status),
		Amount:   created.FinalAmount,
	})

	return &CreateOrderResponse{
		OrderID:     created.ID,
		OrderNo:     created.OrderNo,
		Status:      string(created.Status),
		TotalAmount: created.TotalAmount,
		PointUsed:   created.PointUsed,
		FinalAmount: created.FinalAmount,
		CreatedAt:   created.CreatedAt.Format(time.RFC3339),
	}, nil
}

// createWithRetry 持久化订单,订单号唯一索引冲突时重新生成订单号重试
func (uc *CreateOrderUseCase) createWithRetry(
	ctx context.Context,
	req CreateOrderRequest,
	addr *user.Address,
	items []order.OrderItem,
	totalAmount int64,
) (*order.Order, error) {
	var lastErr error
	for i := 0; i < maxOrderNoRetry; i++ {
		o := order.NewOrder(uc.genOrderNo(), req.UserID, items, totalAmount, req.PointUsed)
		o.Memo = req.Memo
		o.RecipientName = addr.RecipientName
		o.Phone = addr.Phone
		o.ZipCode = addr.ZipCode
		o.Address = addr.Address
		o.AddressDetail = addr.AddressDetail

		err := uc.orderRepo.Create(ctx, o)
		if err == nil {
			return o, nil
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeDuplicateEntry {
			uc.logger.Warn("订单号碰撞,重新生成", zap.String("order_no", o.OrderNo))
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func validateCreateRequest(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return order.ErrEmptyOrderItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return order.ErrInvalidQuantity
		}
	}
	if req.PointUsed < 0 {
		return apperrors.ErrInvalidParams
	}
	return nil
}
