package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salespulse/internal/exporter"
	"salespulse/internal/logger"
)

// ExportRequest 导出请求
type ExportRequest struct {
	IncludeDetail bool `json:"includeDetail"` // 是否附带过滤后的明细
}

type exportProgressEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Export 导出当前快照（SSE 进度 + 完成后提供下载地址）
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tham số xuất không hợp lệ"})
			return
		}
	}
	if h.session.Store().Count() == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Chưa có dữ liệu để xuất"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không hỗ trợ phản hồi dạng luồng"})
		return
	}
	setSSEHeaders(c)
	send := func(e exportProgressEvent) {
		e.Timestamp = time.Now()
		writeSSE(c, flusher, e)
	}
	send(exportProgressEvent{Type: "start", Message: "Bắt đầu xuất báo cáo"})

	opts := exporter.ExportOptions{
		Snapshot:    h.session.Snapshot(),
		Criteria:    h.session.Criteria(),
		Dataset:     h.session.Store().Info(),
		Rules:       h.session.Rules(),
		GeneratedAt: h.now(),
	}
	if req.IncludeDetail {
		opts.Records = h.session.Filtered()
	}
	lastPercent := -1
	opts.Progress = func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{Type: "progress", Message: p.Stage, Data: p})
	}

	exportDir := filepath.Join(h.dataDir, "exports")
	if h.dataDir == "" {
		exportDir = os.TempDir()
	}
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		send(exportProgressEvent{Type: "error", Message: "Không tạo được thư mục xuất"})
		return
	}
	path := filepath.Join(exportDir, uuid.NewString()+".xlsx")
	if err := h.exporter.WriteFile(path, opts); err != nil {
		logger.L.Warn("export failed", "error", err)
		_ = os.Remove(path)
		send(exportProgressEvent{Type: "error", Message: "Xuất báo cáo thất bại: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("bao-cao-doanh-thu_%s.xlsx", opts.GeneratedAt.In(h.cfg.Location()).Format("20060102_1504"))
	token := h.downloads.put(exportDownload{filePath: path, filename: filename})
	send(exportProgressEvent{
		Type:    "done",
		Message: "Xuất báo cáo hoàn tất",
		Data: gin.H{
			"percent":     100,
			"downloadUrl": "/api/export/download/" + token,
			"filename":    filename,
		},
	})
}

// DownloadExport 下载导出的文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Liên kết tải xuống đã hết hạn"})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "Tệp xuất không tồn tại"})
		return
	}

	c.FileAttachment(item.filePath, item.filename)
	h.downloads.delete(token)
}
