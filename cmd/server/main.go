package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnpath/backend/config"
	"learnpath/backend/internal/api/handler"
	"learnpath/backend/internal/api/router"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/database"
	"learnpath/backend/pkg/docai"
	"learnpath/backend/pkg/jwt"
	"learnpath/backend/pkg/llm"
	applogger "learnpath/backend/pkg/logger"
	"learnpath/backend/pkg/redis"
	"learnpath/backend/pkg/validate"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("LEARNPATH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("schema_policy", cfg.Planner.SchemaPolicy),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时每用户锁退化为进程内锁，限流放行）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，使用进程内锁且不限流", zap.Error(err))
		rdb = nil
	}

	// 5. 请求校验规则与令牌校验
	gin.SetMode(gin.ReleaseMode)
	if err := validate.RegisterGin(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}
	verifier := jwt.NewVerifier(&cfg.Auth)

	// 6. 外部服务
	gateway := planner.NewGateway(llm.NewChatClient(&cfg.LLM), planner.GatewayConfig{
		MinTopicsPerSlot:    cfg.Planner.MinTopicsPerSlot,
		MinQuestionsPerSlot: cfg.Planner.MinQuestionsPerSlot,
		Policy:              planner.SchemaPolicy(cfg.Planner.SchemaPolicy),
	}, logger)

	deps := service.Dependencies{
		Generator: gateway,
		Locker:    service.NewLocker(rdb, cfg.Planner.LockTTL, cfg.Planner.LockTTL, logger),
	}
	if cfg.DocAI.Endpoint != "" {
		docClient := docai.NewClient(&cfg.DocAI, logger)
		deps.Reader = docClient
		deps.Analyzer = docClient
	} else {
		logger.Warn("未配置文档分析服务，图片大纲与试卷上传不可用")
	}
	if classifier := llm.NewQuestionClassifier(&cfg.Classifier); classifier != nil {
		deps.Classifier = classifier
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, verifier, rdb, db, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	// 计划生成会同步等待文本生成服务，写超时需覆盖其超时时间
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sqlDB.Close()

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
