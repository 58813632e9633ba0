package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"daily-digits/internal/config"
	"daily-digits/internal/logger"
	"daily-digits/internal/metrics"
	"daily-digits/internal/service"

	"github.com/gin-gonic/gin"
)

// Server HTTP服务
type Server struct {
	httpServer *http.Server
	cfg        config.HTTP
}

// RouterOption 路由可选项
type RouterOption func(*Handlers)

// WithBotInfo /healthz 附带机器人身份
func WithBotInfo(bot BotInfoProvider) RouterOption {
	return func(h *Handlers) {
		h.bot = bot
	}
}

// NewRouter 创建路由，m 为 nil 时不挂载 /metrics
func NewRouter(svc *service.PredictionService, health HealthChecker, m *metrics.Manager, opts ...RouterOption) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog())
	if m != nil {
		router.Use(Metrics(m))
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := &Handlers{svc: svc, health: health}
	for _, opt := range opts {
		opt(h)
	}
	router.GET("/healthz", h.healthz)

	api := router.Group("/api")
	api.GET("/predictions", h.getPredictions)
	api.POST("/results", h.postResults)
	api.GET("/history", h.getHistory)

	return router
}

// NewServer 创建HTTP服务
func NewServer(cfg config.HTTP, handler http.Handler) *Server {
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start 在后台开始监听，监听失败通过返回的通道报告
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
