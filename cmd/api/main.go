package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/xiebiao/shopmall/docs"
	apporder "github.com/xiebiao/shopmall/internal/application/order"
	apppayment "github.com/xiebiao/shopmall/internal/application/payment"
	appuser "github.com/xiebiao/shopmall/internal/application/user"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/config"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopmall/internal/interface/http/handler"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/jwt"
	"github.com/xiebiao/shopmall/pkg/logger"
	"github.com/xiebiao/shopmall/pkg/metrics"
	"github.com/xiebiao/shopmall/pkg/mq"
	"github.com/xiebiao/shopmall/pkg/response"
)

// main 主程序入口
// 依赖注入链：Repository ← UseCase ← Handler（wire.go提供自动组装版本）
//
//	@title			ShopMall API
//	@version		1.0
//	@description	订单与支付生命周期服务
//	@host			localhost:8080
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	appLogger, err := logger.New("shopmall-api", cfg.Server.Mode)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer appLogger.Sync()
	response.SetLogger(appLogger)

	appLogger.Info("配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
	)

	// 3. 初始化Prometheus指标
	metrics.InitMetrics()

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		appLogger.Fatal("初始化数据库失败", zap.Error(err))
	}

	// 5. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		appLogger.Fatal("初始化Redis失败", zap.Error(err))
	}

	// 6. 事件发布器（mq.enabled=false时降级为空实现）
	var eventPublisher apporder.EventPublisher = event.NopPublisher{}
	if cfg.MQ.Enabled {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			appLogger.Fatal("初始化MQ失败", zap.Error(err))
		}
		defer mqPublisher.Close()
		eventPublisher = event.NewPublisher(mqPublisher, appLogger)
	}

	// 7. 依赖注入（手动组装）

	// 基础设施层
	orderRepo := mysql.NewOrderRepository(db)
	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	orderCache := redis.NewOrderCache(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	compensator := apporder.NewCompensator(productRepo, userRepo)
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, appLogger)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	createOrderUseCase := apporder.NewCreateOrderUseCase(
		orderRepo, productRepo, userRepo, cartRepo, txManager, eventPublisher, appLogger)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo, paymentRepo, orderCache, appLogger)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(
		orderRepo, paymentRepo, compensator, txManager, eventPublisher, orderCache, appLogger)
	confirmOrderUseCase := apporder.NewConfirmOrderUseCase(orderRepo, txManager, orderCache, appLogger)
	requestReturnUseCase := apporder.NewRequestReturnUseCase(
		orderRepo, txManager, eventPublisher, orderCache, appLogger)
	adminUpdateStatusUseCase := apporder.NewAdminUpdateStatusUseCase(
		orderRepo, paymentRepo, compensator, txManager, eventPublisher, orderCache, appLogger)
	reviewGateUseCase := apporder.NewReviewGateUseCase(orderRepo, txManager, appLogger)
	requestPaymentUseCase := apppayment.NewRequestPaymentUseCase(
		orderRepo, paymentRepo, userRepo, txManager, eventPublisher, orderCache, appLogger)
	refundPaymentUseCase := apppayment.NewRefundPaymentUseCase(
		orderRepo, paymentRepo, userRepo, compensator, txManager, eventPublisher, orderCache, appLogger)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	orderHandler := handler.NewOrderHandler(
		createOrderUseCase, getOrderUseCase, cancelOrderUseCase,
		confirmOrderUseCase, requestReturnUseCase, reviewGateUseCase)
	paymentHandler := handler.NewPaymentHandler(requestPaymentUseCase, refundPaymentUseCase)
	adminHandler := handler.NewAdminHandler(adminUpdateStatusUseCase, getOrderUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, orderHandler, paymentHandler, adminHandler, authMiddleware)

	// 9. 启动服务（优雅关停）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("启动服务失败", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("收到退出信号，开始优雅关停")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("优雅关停失败", zap.Error(err))
	}
	appLogger.Info("服务已停止")
}
