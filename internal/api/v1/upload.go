package v1

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadResponse 上传响应
type UploadResponse struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload 上传交易文件，返回后续分析使用的 fileId
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.cfg.ExtensionAllowed(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("不支持的文件类型: %s，仅支持 %s", ext, strings.Join(h.cfg.Upload.AllowedExtensions, ", ")),
		})
		return
	}

	if file.Size > h.cfg.MaxFileSizeBytes() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("文件超过大小限制 (%d MB)", h.cfg.Upload.MaxFileSizeMB),
		})
		return
	}

	fileID := uuid.New().String()
	dest := filepath.Join(h.uploadDir, fileID+ext)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		FileID:   fileID + ext,
		Filename: file.Filename,
		Size:     file.Size,
	})
}
