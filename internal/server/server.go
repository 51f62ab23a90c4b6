package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"salespulse/internal/api"
	"salespulse/internal/config"
	"salespulse/internal/importer"
	"salespulse/internal/logger"
	"salespulse/internal/store"
)

// devFrontendURL 开发模式下前端开发服务器地址
const devFrontendURL = "http://localhost:5173"

// API 限流：每 100ms 补充一个令牌，突发 30
const (
	apiRateEvery = 100 * time.Millisecond
	apiRateBurst = 30
)

// Server HTTP服务器
type Server struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	store    *store.Store
	pipeline *Pipeline
	api      *api.Handler
	http     *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, store.DBFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	handler := api.NewHandler(api.Deps{
		Config:      cfg,
		Store:       sqliteStore,
		Session:     pipeline.Session,
		Coordinator: importer.NewCoordinator(sqliteStore, pipeline.Session, pipeline.Normalizer),
		DataDir:     dataDir,
	})
	handler.RestoreCriteria()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = 32 << 20

	s := &Server{
		cfg:      cfg,
		router:   router,
		store:    sqliteStore,
		pipeline: pipeline,
		api:      handler,
	}
	s.setupRoutes(devMode)

	logger.L.Info("server initialized",
		"dataDir", dataDir,
		"rules", len(pipeline.Rules.Rules()),
		"devMode", devMode,
	)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(cors())

	apiGroup := s.router.Group("/api", rateLimit(rate.NewLimiter(rate.Every(apiRateEvery), apiRateBurst)))
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(func(c *gin.Context) {
		if devMode && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			// 开发模式：交给前端开发服务器
			c.Redirect(http.StatusTemporaryRedirect, devFrontendURL+c.Request.URL.Path)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài nguyên"})
	})
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止服务并释放资源
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.api.Close()
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}

// Pipeline 当前计算管线
func (s *Server) Pipeline() *Pipeline {
	return s.pipeline
}
