package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salespulse/internal/model"
	"salespulse/internal/service/calculator"
)

// 明细分页
const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SnapshotResponse 当前快照与其对应的过滤条件
type SnapshotResponse struct {
	State    calculator.State          `json:"state"`
	Criteria model.FilterCriteria      `json:"criteria"`
	Snapshot *model.StatisticsSnapshot `json:"snapshot"`
}

// GetSnapshot 当前统计快照
// GET /api/snapshot
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, SnapshotResponse{
		State:    h.session.State(),
		Criteria: h.session.Criteria(),
		Snapshot: h.session.Snapshot(),
	})
}

// GetOptions 当前数据集中可选的过滤项
// GET /api/options
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.FilterOptions())
}

// RecordItem 明细行及其系数判定
type RecordItem struct {
	model.RawRecord
	calculator.Evaluation
}

// ListRecords 过滤后的明细（分页）
// GET /api/records?page=1&pageSize=50
func (h *Handler) ListRecords(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tham số page không hợp lệ"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tham số pageSize không hợp lệ"})
		return
	}
	pageSize = min(pageSize, maxPageSize)

	records := h.session.Filtered()
	total := len(records)
	// 超出末页返回空页
	start := total
	if page <= total/pageSize+1 {
		start = min((page-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	rules := h.session.Rules()
	items := make([]RecordItem, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, RecordItem{
			RawRecord:  records[i],
			Evaluation: rules.Evaluate(&records[i]),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"items":    items,
	})
}

// GetRules 当前系数规则表
// GET /api/rules
func (h *Handler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Rules().File())
}
