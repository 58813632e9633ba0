package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"daily-digits/internal/cache"
	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/logger"
	"daily-digits/internal/metrics"
	"daily-digits/internal/predictor"
	"daily-digits/internal/server"
	"daily-digits/internal/service"
	"daily-digits/internal/telegram"

	"github.com/gin-gonic/gin"
)

// App 应用程序主结构
type App struct {
	config       *config.Config
	mysql        *database.MySQLDB
	historyCache *cache.HistoryCache
	metrics      *metrics.Manager
	predictorMgr *predictor.PredictorManager
	service      *service.PredictionService
	server       *server.Server
	telegramBot  *telegram.Bot

	serverErrors <-chan error
}

// NewApp 创建应用程序实例
func NewApp(configPath string) (*App, error) {
	// 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 初始化日志
	logger.InitLogger(cfg.App.LogLevel)
	logger.Infof("Starting daily-digits server (config %s)", configPath)

	// 初始化数据库
	mysql, err := database.NewMySQLDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Infof("Database connected: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(cfg.Database.GetMigrationURL()); err != nil {
			mysql.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 初始化预测器管理器
	predictorMgr := predictor.NewPredictorManager(
		predictor.OptionsFromConfig(cfg.Prediction),
		predictor.NewRandSource(cfg.Prediction.Seed),
	)
	if err := predictorMgr.SetCurrentPredictor(cfg.Prediction.Algorithm); err != nil {
		mysql.Close()
		return nil, err
	}
	logger.Infof("Prediction algorithm: %s (available: %v)", cfg.Prediction.Algorithm, predictorMgr.GetAvailablePredictors())

	historyCache := cache.NewHistoryCache(cfg.App.CacheTTL)
	metricsMgr := metrics.NewManager()
	svc := service.NewPredictionService(mysql, predictorMgr, historyCache, metricsMgr, cfg.Prediction)

	app := &App{
		config:       cfg,
		mysql:        mysql,
		historyCache: historyCache,
		metrics:      metricsMgr,
		predictorMgr: predictorMgr,
		service:      svc,
	}

	// 初始化Telegram机器人（可选）
	var routerOpts []server.RouterOption
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(&cfg.Telegram, svc)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		app.telegramBot = bot
		routerOpts = append(routerOpts, server.WithBotInfo(bot))
	} else if cfg.Telegram.Enabled {
		logger.Warnf("Telegram is enabled but no token is configured, bot disabled")
	}

	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(svc, mysql, metricsMgr, routerOpts...)
	app.server = server.NewServer(cfg.HTTP, router)

	return app, nil
}

// Start 启动应用程序
func (a *App) Start() {
	a.serverErrors = a.server.Start()

	if a.telegramBot != nil {
		a.telegramBot.Start()
	}
	logger.Infof("All services started, press Ctrl+C to stop")
}

// Wait 等待停止信号或服务异常退出
func (a *App) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Infof("Received %s, shutting down", sig)
		return nil
	case err, ok := <-a.serverErrors:
		if ok && err != nil {
			return err
		}
		return nil
	}
}

// Stop 停止应用程序
func (a *App) Stop() error {
	logger.Infof("Stopping application...")

	if a.telegramBot != nil {
		a.telegramBot.Stop()
	}

	var shutdownErr error
	if err := a.server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Failed to shut down HTTP server: %v", err)
		shutdownErr = err
	}

	a.close()
	logger.Infof("Application stopped")
	return shutdownErr
}

// close 释放缓存与数据库连接
func (a *App) close() {
	a.historyCache.Close()
	if err := a.mysql.Close(); err != nil {
		logger.Errorf("Failed to close database: %v", err)
	}
}

func main() {
	// 配置文件路径
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 创建应用程序实例
	app, err := NewApp(configPath)
	if err != nil {
		logger.Fatalf("Application init failed: %v", err)
	}

	app.Start()

	runErr := app.Wait()
	if runErr != nil {
		logger.Errorf("Server stopped unexpectedly: %v", runErr)
	}

	// 优雅关闭
	if err := app.Stop(); err != nil || runErr != nil {
		os.Exit(1)
	}
}
