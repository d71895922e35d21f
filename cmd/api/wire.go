//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 使用方式：
// Step 1: 修改本文件的Providers
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，main.go可改用InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewOrderRepository）
// - Injector: 声明最终要构造的目标类型（*gin.Engine）
// - wire.Bind: 把具体类型绑定到用例声明的接口

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

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
	"github.com/xiebiao/shopmall/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	redis.NewClient,
	provideEventPublisher,
	providePaymentEventPublisher,
)

// repositorySet 仓储层依赖
// 仓储构造函数直接返回领域接口，无需wire.Bind
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewOrderRepository,
	mysql.NewPaymentRepository,
	mysql.NewCartRepository,
	mysql.NewTxManager,
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apppayment.TxManager), new(*mysql.TxManager)),
	redis.NewOrderCache,
	wire.Bind(new(apporder.OrderCache), new(*redis.OrderCache)),
	wire.Bind(new(apppayment.OrderCache), new(*redis.OrderCache)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	apporder.NewCompensator,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewConfirmOrderUseCase,
	apporder.NewRequestReturnUseCase,
	apporder.NewAdminUpdateStatusUseCase,
	apporder.NewReviewGateUseCase,
	apppayment.NewRequestPaymentUseCase,
	apppayment.NewRefundPaymentUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewOrderHandler,
	handler.NewPaymentHandler,
	handler.NewAdminHandler,
)

// provideLogger 从配置创建zap Logger
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New("shopmall-api", cfg.Server.Mode)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideEventPublisher 事件发布器
// mq.enabled=false时降级为空实现，业务流程不依赖MQ可用
func provideEventPublisher(cfg *config.Config, appLogger *zap.Logger) (apporder.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return event.NopPublisher{}, func() {}, nil
	}
	mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { mqPublisher.Close() }
	return event.NewPublisher(mqPublisher, appLogger), cleanup, nil
}

// providePaymentEventPublisher 两个应用包各自声明了同构的EventPublisher接口
func providePaymentEventPublisher(p apporder.EventPublisher) apppayment.EventPublisher {
	return p
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	appLogger *zap.Logger,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, orderHandler, paymentHandler, adminHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// Wire在编译期分析依赖链并生成wire_gen.go
func InitializeApp() (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil, nil
}
