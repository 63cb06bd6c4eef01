package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamalu-chioma/OpenRFM/internal/analyzer"
)

const downloadTokenTTL = 30 * time.Minute

// Analyze 分析交易文件 (SSE 流式响应)
// POST /api/analyze
//
// 两种调用方式：直接 multipart 携带 file，或传入 /upload 返回的 fileId。
func (h *Handler) Analyze(c *gin.Context) {
	filePath, filename, cleanup, ok := h.resolveInput(c)
	if !ok {
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	clusterSize := 0 // 0 = 肘部法自动选簇
	if v := c.DefaultPostForm("clusters", "auto"); v != "auto" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的簇数，应为 auto 或 ≥2 的整数"})
			return
		}
		clusterSize = n
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Analyze(analyzer.Options{
		FilePath:    filePath,
		Filename:    filename,
		ClusterSize: clusterSize,
		MaxClusters: h.cfg.Analysis.MaxClusters,
	})

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range progressChan {
		if event.Type == "done" {
			event = h.attachDownloadURL(c, event)
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// resolveInput 解析分析输入：multipart file 或已上传的 fileId
func (h *Handler) resolveInput(c *gin.Context) (filePath, filename string, cleanup func(), ok bool) {
	if file, err := c.FormFile("file"); err == nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !h.cfg.ExtensionAllowed(ext) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不支持的文件类型: %s", ext)})
			return "", "", nil, false
		}
		if file.Size > h.cfg.MaxFileSizeBytes() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("文件超过大小限制 (%d MB)", h.cfg.Upload.MaxFileSizeMB)})
			return "", "", nil, false
		}

		tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("openrfm_analyze_%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, tempPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
			return "", "", nil, false
		}
		return tempPath, file.Filename, func() { _ = os.Remove(tempPath) }, true
	}

	fileID := c.PostForm("fileId")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件或 fileId"})
		return "", "", nil, false
	}
	// fileId 由 /upload 生成，不允许路径穿越
	if fileID != filepath.Base(fileID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 fileId"})
		return "", "", nil, false
	}

	path := filepath.Join(h.uploadDir, fileID)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "上传文件不存在或已过期"})
		return "", "", nil, false
	}
	return path, fileID, nil, true
}

// attachDownloadURL 为完成事件补充一次性下载链接
func (h *Handler) attachDownloadURL(c *gin.Context, event analyzer.ProgressEvent) analyzer.ProgressEvent {
	result, ok := event.Data.(*analyzer.Result)
	if !ok {
		return event
	}

	token := h.downloads.put(result.ResultPath, result.RunID, downloadTokenTTL)
	event.Data = gin.H{
		"result":      result,
		"downloadUrl": fmt.Sprintf("/api/download/%s", token),
	}
	return event
}
