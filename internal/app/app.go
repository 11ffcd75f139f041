// Package app 提供 luckpool-registry 服务的应用生命周期管理
//
// ========================================
// luckpool-registry 服务对接说明
// ========================================
//
// ## 服务职责
// luckpool-registry 是项目票券登记服务，负责:
// 1. 项目登记 (Registry): 分配全局递增项目 ID，维护项目生命周期
// 2. 参与者登记 (Participant): 消费报名消息，按登记顺序入库
// 3. 资格校验 (Eligibility): 基于 Merkle 证明校验调用方资格
// 4. 开奖 (Lottery): 为已结束项目开出唯一幸运数
//
// ## Kafka 对接 (参见 internal/kafka/consumer.go 和 producer.go)
//
// ### 消费的 Topic
// - participant-registrations: 参与者报名消息
//
// ### 生产的 Topic
// - project-created: 项目创建
// - project-started: 项目启动
// - project-finished: 项目结束
// - magic-number-published: 幸运数开出
//
// ## HTTP 对接
// - 路由前缀: /api/v1
// - 调用方身份: X-Caller-Address 请求头，由宿主执行环境认证后传入
//
// ## 数据库
// - 数据库名: luckpool_registry
// - 启动时自动迁移并初始化全局 ID 计数器
//
// ========================================
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/luckpool/registry/internal/config"
	"github.com/luckpool/registry/internal/handler"
	"github.com/luckpool/registry/internal/kafka"
	"github.com/luckpool/registry/internal/middleware"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/internal/service"
	"github.com/luckpool/registry/pkg/logger"
)

// App 应用
type App struct {
	cfg *config.Config

	// 基础设施
	db    *gorm.DB
	redis *redis.Client

	// 仓储
	projectRepo     repository.ProjectRepository
	participantRepo repository.ParticipantRepository
	lotteryRepo     repository.LotteryRepository

	// 服务
	registrySvc    *service.RegistryService
	participantSvc *service.ParticipantService
	eligibilitySvc *service.EligibilityService
	lotterySvc     *service.LotteryService

	// Kafka
	kafkaConsumer  *kafka.Consumer
	kafkaProducer  *kafka.Producer
	eventPublisher *kafka.KafkaEventPublisher

	// HTTP
	httpServer *http.Server

	// 运行控制
	stopCh chan struct{}
}

// NewApp 创建应用
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}

	app.initRepositories()

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := app.initKafka(); err != nil {
		return nil, fmt.Errorf("failed to init kafka: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// initInfrastructure 初始化基础设施
func (a *App) initInfrastructure() error {
	// PostgreSQL
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		a.cfg.Postgres.Host,
		a.cfg.Postgres.Port,
		a.cfg.Postgres.User,
		a.cfg.Postgres.Password,
		a.cfg.Postgres.Database,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(a.cfg.Postgres.MaxConnections)
	sqlDB.SetMaxIdleConns(a.cfg.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(a.cfg.Postgres.ConnMaxLifetime) * time.Second)

	a.db = db
	logger.Info("database connected", zap.String("host", a.cfg.Postgres.Host))

	// 自动迁移
	if err := AutoMigrate(a.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database migrated")

	// Redis
	redisAddr := "localhost:6379"
	if len(a.cfg.Redis.Addresses) > 0 {
		redisAddr = a.cfg.Redis.Addresses[0]
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	})

	if err := a.redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", redisAddr))

	return nil
}

// initRepositories 初始化仓储
func (a *App) initRepositories() {
	a.projectRepo = repository.NewProjectRepository(a.db)
	a.participantRepo = repository.NewParticipantRepository(a.db)
	a.lotteryRepo = repository.NewLotteryRepository(a.db)

	logger.Info("repositories initialized")
}

// initServices 初始化服务
func (a *App) initServices() error {
	// 全局 ID 计数器初始化，已存在则保持原值
	if err := a.projectRepo.SeedCounter(context.Background(), a.cfg.Registry.StartGlobalID); err != nil {
		return fmt.Errorf("failed to seed global id counter: %w", err)
	}
	logger.Info("global id counter seeded", zap.Uint64("start_global_id", a.cfg.Registry.StartGlobalID))

	guard := service.NewAccessGuard(a.cfg.Registry.Owner())

	a.registrySvc = service.NewRegistryService(a.projectRepo, guard)
	a.participantSvc = service.NewParticipantService(a.participantRepo, a.projectRepo)
	a.eligibilitySvc = service.NewEligibilityService(a.projectRepo)

	var random service.RandomSource
	switch a.cfg.Lottery.RandomSource {
	case "crypto":
		random = service.NewCryptoSource()
	default:
		random = service.NewFixedSource(a.cfg.Lottery.FixedValue)
	}

	drawLock := service.NewDrawLock(a.redis, time.Duration(a.cfg.Lottery.DrawLockTTL)*time.Second)
	a.lotterySvc = service.NewLotteryService(a.projectRepo, a.lotteryRepo, guard, random, drawLock)

	logger.Info("services initialized", zap.String("random_source", a.cfg.Lottery.RandomSource))
	return nil
}

// initKafka 初始化 Kafka
func (a *App) initKafka() error {
	// 生产者
	producer, err := kafka.NewProducer(&kafka.ProducerConfig{
		Brokers:  a.cfg.Kafka.Brokers,
		ClientID: a.cfg.Kafka.ClientID,
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	a.kafkaProducer = producer
	a.eventPublisher = kafka.NewKafkaEventPublisher(producer)

	// 设置事件回调
	a.registrySvc.SetOnProjectCreated(a.eventPublisher.PublishProjectCreated)
	a.registrySvc.SetOnProjectStarted(a.eventPublisher.PublishProjectStarted)
	a.registrySvc.SetOnProjectFinished(a.eventPublisher.PublishProjectFinished)
	a.lotterySvc.SetOnMagicNumberPublished(a.eventPublisher.PublishMagicNumber)

	// 消费者
	consumer, err := kafka.NewConsumer(&kafka.ConsumerConfig{
		Brokers:            a.cfg.Kafka.Brokers,
		GroupID:            a.cfg.Kafka.GroupID,
		ParticipantService: a.participantSvc,
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	a.kafkaConsumer = consumer

	logger.Info("kafka initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return nil
}

// initHTTP 初始化 HTTP 服务
func (a *App) initHTTP() {
	if a.cfg.Service.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": a.cfg.Service.Name})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registryHandler := handler.NewRegistryHandler(a.registrySvc, a.eligibilitySvc)
	participantHandler := handler.NewParticipantHandler(a.participantSvc)
	lotteryHandler := handler.NewLotteryHandler(a.lotterySvc)

	registerRoutes(router, registryHandler, participantHandler, lotteryHandler)

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Service.HTTPPort),
		Handler: router,
	}

	logger.Info("http server initialized", zap.Int("port", a.cfg.Service.HTTPPort))
}

// registerRoutes 注册 /api/v1 路由
//
// 读接口匿名可访问，仅写接口要求 X-Caller-Address 调用方身份。
func registerRoutes(router *gin.Engine, registryHandler *handler.RegistryHandler, participantHandler *handler.ParticipantHandler, lotteryHandler *handler.LotteryHandler) {
	v1 := router.Group("/api/v1")

	// 读接口
	v1.GET("/projects", registryHandler.ListProjects)
	v1.GET("/projects/:id", registryHandler.GetProject)
	v1.GET("/projects/:id/status", registryHandler.GetProjectStatus)
	v1.GET("/projects/:id/participants", participantHandler.ListParticipants)
	v1.GET("/projects/:id/participants/count", participantHandler.GetParticipantsAmount)
	v1.GET("/projects/:id/participants/:address", participantHandler.GetParticipant)
	v1.GET("/projects/:id/lottery", lotteryHandler.GetResult)

	// 写接口
	writes := v1.Group("", middleware.CallerRequired())
	{
		writes.POST("/projects", registryHandler.CreateProject)
		writes.POST("/projects/:id/start", registryHandler.StartProject)
		writes.POST("/projects/:id/finish", registryHandler.FinishProject)
		writes.PUT("/projects/:id/merkle-root", registryHandler.SetMerkleRoot)
		writes.POST("/projects/:id/merkle-proof", registryHandler.VerifyProof)
		writes.POST("/projects/:id/lottery", lotteryHandler.Draw)
	}
}

// Run 运行应用
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动 Kafka 消费者
	if err := a.kafkaConsumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start kafka consumer: %w", err)
	}

	// 启动 HTTP 服务器
	go func() {
		logger.Info("http server listening", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	// 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-a.stopCh:
		logger.Info("shutdown requested")
	}

	return a.shutdown()
}

// shutdown 关闭应用
func (a *App) shutdown() error {
	logger.Info("shutting down...")

	// 停止 Kafka 消费者
	if a.kafkaConsumer != nil {
		a.kafkaConsumer.Stop()
	}

	// 关闭 HTTP 服务器
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			logger.Error("http server shutdown error", zap.Error(err))
		}
	}

	// 关闭 Kafka 生产者
	if a.kafkaProducer != nil {
		a.kafkaProducer.Close()
	}

	// 关闭 Redis
	if a.redis != nil {
		a.redis.Close()
	}

	// 关闭数据库
	if a.db != nil {
		sqlDB, _ := a.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// Stop 停止应用
func (a *App) Stop() {
	close(a.stopCh)
}
