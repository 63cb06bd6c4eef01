package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/kamalu-chioma/OpenRFM/internal/analyzer"
	"github.com/kamalu-chioma/OpenRFM/internal/config"
	"github.com/kamalu-chioma/OpenRFM/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store       *store.Store
	coordinator *analyzer.Coordinator
	cfg         *config.AppConfig
	uploadDir   string
	downloads   *resultDownloadStore
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, coordinator *analyzer.Coordinator, cfg *config.AppConfig, uploadDir string) *Handler {
	return &Handler{
		store:       st,
		coordinator: coordinator,
		cfg:         cfg,
		uploadDir:   uploadDir,
		downloads:   newResultDownloadStore(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 文件上传与分析
	router.POST("/upload", h.Upload)
	router.POST("/analyze", h.Analyze)

	// 历史运行查询
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	router.GET("/runs/:id/download", h.DownloadRunResult)

	// 临时下载链接
	router.GET("/download/:token", h.DownloadResult)
}
