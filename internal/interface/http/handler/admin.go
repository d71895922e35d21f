package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/shopmall/internal/application/order"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/pkg/response"
)

// AdminHandler 管理端HTTP处理器
// 路由挂载在RequireAuth + RequireAdmin之后
type AdminHandler struct {
	updateStatusUseCase *apporder.AdminUpdateStatusUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(
	updateStatusUseCase *apporder.AdminUpdateStatusUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
) *AdminHandler {
	return &AdminHandler{
		updateStatusUseCase: updateStatusUseCase,
		getOrderUseCase:     getOrderUseCase,
	}
}

// UpdateOrderStatus 覆写订单状态
// @Summary      覆写订单状态（管理端）
// @Description  沿合法转换表推进订单状态（备货/发货/送达等），目标为取消或退货完成时自动执行补偿
// @Tags         管理端
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response "更新成功"
// @Failure      40006 {object} response.Response "非法状态转换"
// @Failure      40007 {object} response.Response "存在有效支付，须先退款"
// @Failure      40008 {object} response.Response "订单已被其他操作修改，请重试"
// @Router       /api/v1/admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	target, ok := order.ParseStatus(req.Status)
	if !ok {
		response.ErrorWithCode(c, 40900, "参数错误: 未知的订单状态 "+req.Status)
		return
	}

	if err := h.updateStatusUseCase.Execute(c.Request.Context(), orderID, target); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// GetOrder 管理端订单详情
// @Summary      订单详情（管理端）
// @Description  管理员可查看任意订单
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.getOrderUseCase.Detail(c.Request.Context(), 0, true, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
