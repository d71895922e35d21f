package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/shopmall/internal/interface/http/handler"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（访问 /swagger/index.html）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 订单模块（需要登录）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/confirm", orderHandler.ConfirmOrder)
			orders.POST("/:id/return", orderHandler.RequestReturn)
			orders.POST("/:id/reviews", orderHandler.MarkReviewed)

			// 支付挂在订单下
			orders.POST("/:id/payments", paymentHandler.RequestPayment)
		}

		// 退款以支付记录为对象
		payments := v1.Group("/payments")
		payments.Use(authMiddleware.RequireAuth())
		{
			payments.POST("/:id/refund", paymentHandler.RefundPayment)
		}

		// 评价资格查询（需要登录）
		products := v1.Group("/products")
		products.Use(authMiddleware.RequireAuth())
		{
			products.GET("/:id/review-eligibility", orderHandler.CanReview)
		}

		// 管理端（需要管理员权限）
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
		}
	}
}
