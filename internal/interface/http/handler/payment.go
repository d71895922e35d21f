package handler

import (
	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/shopmall/internal/application/payment"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// PaymentHandler 支付HTTP处理器
type PaymentHandler struct {
	requestPaymentUseCase *apppayment.RequestPaymentUseCase
	refundPaymentUseCase  *apppayment.RefundPaymentUseCase
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(
	requestPaymentUseCase *apppayment.RequestPaymentUseCase,
	refundPaymentUseCase *apppayment.RefundPaymentUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		requestPaymentUseCase: requestPaymentUseCase,
		refundPaymentUseCase:  refundPaymentUseCase,
	}
}

// RequestPayment 发起支付
// @Summary      发起支付
// @Description  对待支付订单发起支付（mock网关即时完成），金额+追加积分必须等于订单实付额
// @Tags         支付模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.RequestPaymentRequest true "支付信息"
// @Success      200 {object} response.Response "支付成功"
// @Failure      40005 {object} response.Response "支付金额与订单实付额不一致"
// @Failure      40006 {object} response.Response "当前状态不允许支付"
// @Router       /api/v1/orders/{id}/payments [post]
func (h *PaymentHandler) RequestPayment(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RequestPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.requestPaymentUseCase.Execute(c.Request.Context(), apppayment.RequestPaymentRequest{
		UserID:    middleware.MustGetUserID(c),
		OrderID:   orderID,
		Method:    req.Method,
		Amount:    req.Amount,
		PointUsed: req.PointUsed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RefundPayment 退款
// @Summary      退款
// @Description  已取消或退货申请中的订单可退款；退货路径下退款/积分回退/库存回补/流转RETURNED在同一事务内完成
// @Tags         支付模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "支付ID"
// @Param        request body dto.RefundPaymentRequest false "退款原因"
// @Success      200 {object} response.Response "退款成功"
// @Failure      40006 {object} response.Response "当前状态不允许退款"
// @Failure      40404 {object} response.Response "支付记录不存在"
// @Router       /api/v1/payments/{id}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// 原因可选,空请求体也接受
	var req dto.RefundPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
			return
		}
	}

	result, err := h.refundPaymentUseCase.Execute(
		c.Request.Context(), middleware.MustGetUserID(c), middleware.IsAdmin(c), paymentID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
