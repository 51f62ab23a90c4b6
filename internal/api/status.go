package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salespulse/internal/model"
	"salespulse/internal/service/calculator"
	svcstore "salespulse/internal/service/store"
	"salespulse/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool                  `json:"initialized"` // 是否已载入数据
	State         calculator.State      `json:"state"`
	RecordCount   int                   `json:"recordCount"`
	EligibleCount int                   `json:"eligibleCount"`
	Dataset       *svcstore.DatasetInfo `json:"dataset,omitempty"`

	LastImport             *model.ImportLog `json:"lastImport,omitempty"` // 最近一次导入（含失败）
	LastSuccessfulImportID string           `json:"lastSuccessfulImportId,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count := h.session.Store().Count()
	resp := StatusResponse{
		Initialized:   count > 0,
		State:         h.session.State(),
		RecordCount:   count,
		EligibleCount: h.session.Snapshot().EligibleCount,
		Dataset:       h.session.Store().Info(),
	}

	if h.store != nil {
		logs, err := h.store.ListImportLogs(1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được lịch sử nhập"})
			return
		}
		if len(logs) > 0 {
			resp.LastImport = logs[0]
		}
		id, err := h.store.GetConfig(store.ConfigKeyLastImportID)
		switch {
		case err == nil:
			resp.LastSuccessfulImportID = id
		case !errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được trạng thái"})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
