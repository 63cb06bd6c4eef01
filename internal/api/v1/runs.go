package v1

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kamalu-chioma/OpenRFM/internal/store"
)

// RunDetail 单次运行详情
type RunDetail struct {
	Run      *store.RunRecord      `json:"run"`
	Segments []store.SegmentRecord `json:"segments"`
}

// ListRuns 历史运行列表
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.store.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询运行记录失败"})
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun 运行详情（含逐客户分群）
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.store.GetRun(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询运行记录失败"})
		return
	}

	segments, err := h.store.GetSegments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询分群结果失败"})
		return
	}
	if segments == nil {
		segments = []store.SegmentRecord{}
	}

	c.JSON(http.StatusOK, RunDetail{Run: run, Segments: segments})
}

// DownloadRunResult 下载历史运行的结果 CSV
// GET /api/runs/:id/download
func (h *Handler) DownloadRunResult(c *gin.Context) {
	id := c.Param("id")

	run, err := h.store.GetRun(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询运行记录失败"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"rfm_%s.csv\"", run.ID))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.File(run.ResultPath)
}
