package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/importer"
	"salespulse/internal/logger"
	"salespulse/internal/model"
	"salespulse/internal/service/calculator"
	"salespulse/internal/store"
)

// Handler API 处理器
type Handler struct {
	cfg         *config.AppConfig
	store       *store.Store
	session     *calculator.Session
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	downloads   *downloadStore
	dataDir     string
	now         func() time.Time
}

// Deps 处理器依赖
type Deps struct {
	Config      *config.AppConfig
	Store       *store.Store
	Session     *calculator.Session
	Coordinator *importer.Coordinator
	DataDir     string
}

// NewHandler 创建 API 处理器
func NewHandler(deps Deps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handler{
		cfg:         cfg,
		store:       deps.Store,
		session:     deps.Session,
		coordinator: deps.Coordinator,
		exporter:    exporter.NewExporter(cfg.Location()),
		downloads:   newDownloadStore(downloadTTL),
		dataDir:     deps.DataDir,
		now:         time.Now,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据导入
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)

	// 统计结果
	router.GET("/snapshot", h.GetSnapshot)
	router.GET("/options", h.GetOptions)
	router.GET("/records", h.ListRecords)
	router.GET("/rules", h.GetRules)

	// 过滤条件
	router.GET("/criteria", h.GetCriteria)
	router.PUT("/criteria", h.PutCriteria)
	router.DELETE("/criteria", h.ResetCriteria)
	router.POST("/criteria/preset", h.ApplyPreset)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}

// RestoreCriteria 恢复上次保存的过滤条件
func (h *Handler) RestoreCriteria() {
	if h.store == nil {
		return
	}
	var c model.FilterCriteria
	ok, err := h.store.GetConfigJSON(store.ConfigKeyCriteria, &c)
	if err != nil {
		logger.L.Warn("failed to restore criteria", "error", err)
		return
	}
	if ok {
		h.session.SetCriteria(c)
	}
}

// saveCriteria 持久化过滤条件；失败只记日志
func (h *Handler) saveCriteria(c model.FilterCriteria) {
	if h.store == nil {
		return
	}
	if err := h.store.SetConfigJSON(store.ConfigKeyCriteria, c); err != nil {
		logger.L.Warn("failed to save criteria", "error", err)
	}
}

// Close 清理未下载的导出文件
func (h *Handler) Close() {
	h.downloads.flush()
}
