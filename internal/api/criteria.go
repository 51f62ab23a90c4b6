package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salespulse/internal/model"
)

const dayLayout = "2006-01-02"

// DateRangeRequest 日期区间（YYYY-MM-DD，按业务时区解释）
type DateRangeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// CriteriaRequest 过滤条件请求
type CriteriaRequest struct {
	Creators       []string          `json:"creators"`
	Statuses       []string          `json:"statuses"`
	ExportTypes    []string          `json:"exportTypes"`
	ReturnStatuses []string          `json:"returnStatuses"`
	DateRange      *DateRangeRequest `json:"dateRange"`
	Keyword        string            `json:"keyword"`
}

// PresetRequest 时间快捷选项请求
type PresetRequest struct {
	Preset string `json:"preset" binding:"required"`
}

// GetCriteria 当前过滤条件
// GET /api/criteria
func (h *Handler) GetCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Criteria())
}

// PutCriteria 替换过滤条件并返回重算后的快照
// PUT /api/criteria
func (h *Handler) PutCriteria(c *gin.Context) {
	var req CriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu bộ lọc không hợp lệ"})
		return
	}
	criteria, err := req.toCriteria(h.cfg.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.session.SetCriteria(criteria)
	h.saveCriteria(criteria)
	c.JSON(http.StatusOK, SnapshotResponse{State: h.session.State(), Criteria: criteria, Snapshot: snap})
}

// ResetCriteria 清空过滤条件
// DELETE /api/criteria
func (h *Handler) ResetCriteria(c *gin.Context) {
	snap := h.session.ResetCriteria()
	criteria := h.session.Criteria()
	h.saveCriteria(criteria)
	c.JSON(http.StatusOK, SnapshotResponse{State: h.session.State(), Criteria: criteria, Snapshot: snap})
}

// ApplyPreset 按快捷选项设置日期区间，其余条件不变
// POST /api/criteria/preset
func (h *Handler) ApplyPreset(c *gin.Context) {
	var req PresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tham số preset"})
		return
	}
	dr, err := model.PresetRange(req.Preset, h.now().In(h.cfg.Location()), h.cfg.WeekStartDay())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lựa chọn thời gian không hợp lệ"})
		return
	}

	snap := h.session.UpdateCriteria(func(fc *model.FilterCriteria) { fc.DateRange = dr })
	criteria := h.session.Criteria()
	h.saveCriteria(criteria)
	c.JSON(http.StatusOK, SnapshotResponse{State: h.session.State(), Criteria: criteria, Snapshot: snap})
}

type requestError string

func (e requestError) Error() string { return string(e) }

func (r CriteriaRequest) toCriteria(loc *time.Location) (model.FilterCriteria, error) {
	c := model.FilterCriteria{
		Creators:       r.Creators,
		Statuses:       r.Statuses,
		ExportTypes:    r.ExportTypes,
		ReturnStatuses: r.ReturnStatuses,
		Keyword:        r.Keyword,
	}
	if r.DateRange == nil {
		return c, nil
	}
	start, err := time.ParseInLocation(dayLayout, r.DateRange.Start, loc)
	if err != nil {
		return c, requestError("Ngày bắt đầu không hợp lệ")
	}
	end, err := time.ParseInLocation(dayLayout, r.DateRange.End, loc)
	if err != nil {
		return c, requestError("Ngày kết thúc không hợp lệ")
	}
	if end.Before(start) {
		return c, requestError("Ngày kết thúc phải sau ngày bắt đầu")
	}
	c.DateRange = &model.DateRange{Start: start, End: end}
	return c, nil
}
