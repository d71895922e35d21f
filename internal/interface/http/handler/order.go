package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/shopmall/internal/application/order"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrderUseCase   *apporder.CreateOrderUseCase
	getOrderUseCase      *apporder.GetOrderUseCase
	cancelOrderUseCase   *apporder.CancelOrderUseCase
	confirmOrderUseCase  *apporder.ConfirmOrderUseCase
	requestReturnUseCase *apporder.RequestReturnUseCase
	reviewGateUseCase    *apporder.ReviewGateUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *apporder.CreateOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	cancelOrderUseCase *apporder.CancelOrderUseCase,
	confirmOrderUseCase *apporder.ConfirmOrderUseCase,
	requestReturnUseCase *apporder.RequestReturnUseCase,
	reviewGateUseCase *apporder.ReviewGateUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase:   createOrderUseCase,
		getOrderUseCase:      getOrderUseCase,
		cancelOrderUseCase:   cancelOrderUseCase,
		confirmOrderUseCase:  confirmOrderUseCase,
		requestReturnUseCase: requestReturnUseCase,
		reviewGateUseCase:    reviewGateUseCase,
	}
}

// parseIDParam 解析路径中的数字ID
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "参数错误: 非法的"+name)
		return 0, false
	}
	return uint(id), true
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  用户下单（需要登录），悲观锁防超卖，同一事务内扣库存/扣积分/清购物车
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.CreateOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误（如积分超出订单总额）"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "商品或地址不存在"
// @Failure      50001 {object} response.Response "库存不足"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
		}
	}

	result, err := h.createOrderUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:      userID,
		AddressID:   req.AddressID,
		PointUsed:   req.PointUsed,
		Memo:        req.Memo,
		Items:       items,
		CartItemIDs: req.CartItemIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CreateOrderResponse{
		OrderID:     result.OrderID,
		OrderNo:     result.OrderNo,
		Status:      result.Status,
		TotalAmount: result.TotalAmount,
		PointUsed:   result.PointUsed,
		FinalAmount: result.FinalAmount,
		CreatedAt:   result.CreatedAt,
	})
}

// ListOrders 订单列表
// @Summary      我的订单列表
// @Description  分页查询当前用户的订单（按下单时间倒序）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码（默认1）"
// @Param        page_size query int false "每页数量（默认20，最大100）"
// @Success      200 {object} response.Response "查询成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	list, total, err := h.getOrderUseCase.List(c.Request.Context(), userID, query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, query.Page, query.PageSize)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  查询订单详情（含明细和支付记录），仅本人或管理员可见
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.getOrderUseCase.Detail(
		c.Request.Context(), middleware.GetUserID(c), middleware.IsAdmin(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  支付前取消订单，同一事务内回补库存/销量/积分；已有有效支付时须先走退货退款
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "取消成功"
// @Failure      40006 {object} response.Response "当前状态不允许取消"
// @Failure      40008 {object} response.Response "订单已被其他操作修改，请重试"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cancelOrderUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), orderID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ConfirmOrder 确认收货
// @Summary      确认收货
// @Description  订单送达后由买家确认，确认后方可评价
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "确认成功"
// @Failure      40006 {object} response.Response "当前状态不允许确认收货"
// @Router       /api/v1/orders/{id}/confirm [post]
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.confirmOrderUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), orderID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// RequestReturn 申请退货
// @Summary      申请退货
// @Description  送达或确认收货后的订单可申请退货，退款完成后才回补库存和积分
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "申请成功"
// @Failure      40006 {object} response.Response "当前状态不允许退货"
// @Router       /api/v1/orders/{id}/return [post]
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.requestReturnUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), orderID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// CanReview 查询评价资格
// @Summary      查询评价资格
// @Description  是否存在包含该商品且已确认收货的订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.CanReviewResponse} "查询成功"
// @Router       /api/v1/products/{id}/review-eligibility [get]
func (h *OrderHandler) CanReview(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	canReview, err := h.reviewGateUseCase.CanReview(c.Request.Context(), middleware.MustGetUserID(c), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CanReviewResponse{CanReview: canReview})
}

// MarkReviewed 标记明细已评价
// @Summary      标记订单明细已评价
// @Description  确认收货后的订单明细可评价一次，重复标记返回冲突
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.MarkReviewedRequest true "明细ID"
// @Success      200 {object} response.Response "标记成功"
// @Failure      40002 {object} response.Response "该明细已评价过"
// @Router       /api/v1/orders/{id}/reviews [post]
func (h *OrderHandler) MarkReviewed(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.MarkReviewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	err := h.reviewGateUseCase.MarkReviewed(
		c.Request.Context(), middleware.MustGetUserID(c), orderID, req.OrderItemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
