package v1

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// DownloadResult 通过一次性 token 下载结果 CSV
// GET /api/download/:token
func (h *Handler) DownloadResult(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "结果文件不存在"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"rfm_%s.csv\"", item.runID))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.File(item.filePath)

	// token 一次性，结果文件保留（运行记录仍引用它）
	h.downloads.delete(token)
}
