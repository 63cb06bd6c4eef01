package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized bool   `json:"initialized"` // 是否已有分析记录
	RunCount    int    `json:"runCount"`    // 历史运行数
	LastRunTime string `json:"lastRunTime"` // 最近一次运行时间 (RFC3339)，无记录时为空
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count, err := h.store.CountRuns()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{
			Initialized: false,
		})
		return
	}

	lastRun := ""
	if last, err := h.store.LastRunTime(); err == nil && !last.IsZero() {
		lastRun = last.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized: count > 0,
		RunCount:    count,
		LastRunTime: lastRun,
	})
}
