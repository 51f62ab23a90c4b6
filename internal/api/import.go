package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salespulse/internal/importer"
)

// Import 导入 Excel/CSV 数据（SSE 流式进度）
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	if h.coordinator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chức năng nhập dữ liệu chưa sẵn sàng"})
		return
	}

	uploaded, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không tìm thấy tệp tải lên"})
		return
	}
	if limit := int64(h.cfg.Import.MaxUploadMB) << 20; limit > 0 && uploaded.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Tệp vượt quá %d MB", h.cfg.Import.MaxUploadMB),
		})
		return
	}

	uploadDir := filepath.Join(h.dataDir, "uploads")
	if h.dataDir == "" {
		uploadDir = os.TempDir()
	}
	// 保留扩展名用于识别格式
	tempPath := filepath.Join(uploadDir, uuid.NewString()+filepath.Ext(uploaded.Filename))
	if err := c.SaveUploadedFile(uploaded, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lưu tệp thất bại"})
		return
	}
	defer os.Remove(tempPath)

	sheetName := c.PostForm("sheet")
	if sheetName == "" {
		sheetName = h.cfg.Import.SheetName
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không hỗ trợ phản hồi dạng luồng"})
		return
	}
	setSSEHeaders(c)

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		FilePath:  tempPath,
		Filename:  filepath.Base(uploaded.Filename),
		SheetName: sheetName,
	})
	for event := range progressChan {
		writeSSE(c, flusher, event)
	}
}

// ListImports 导入历史
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []any{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được lịch sử nhập"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// writeSSE 以 "data: {json}\n\n" 格式写出事件
func writeSSE(c *gin.Context, flusher http.Flusher, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", b)
	flusher.Flush()
}
