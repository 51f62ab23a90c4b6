package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 分组缺省键
const (
	DefaultIndustryKey = "Khác"
	DefaultGroupKey    = "Chưa phân nhóm"
	DefaultCreatorKey  = "Unknown"
)

// RawRecord 标准化后的单行交易记录（导入后不再修改）
type RawRecord struct {
	RowNo int `json:"rowNo"`

	Creator       string `json:"creator"`
	IndustryLabel string `json:"industryLabel"` // "<code> - <name>" 或自由文本
	GroupLabel    string `json:"groupLabel"`

	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"` // 可为负（退款）

	ExportType   string `json:"exportType"`
	LoanType     string `json:"loanType"`
	Status       string `json:"status"`
	ReturnStatus string `json:"returnStatus"`

	TransactionDate *time.Time `json:"transactionDate,omitempty"`

	ProductName string `json:"productName"`
	OrderCode   string `json:"orderCode"`

	Installment bool `json:"installment"` // 由 ExportType/LoanType 推导
}

// IndustryKey 行业分组键
func (r *RawRecord) IndustryKey() string {
	return keyOr(r.IndustryLabel, DefaultIndustryKey)
}

// GroupKey 商品组分组键
func (r *RawRecord) GroupKey() string {
	return keyOr(r.GroupLabel, DefaultGroupKey)
}

// CreatorKey 员工分组键
func (r *RawRecord) CreatorKey() string {
	return keyOr(r.Creator, DefaultCreatorKey)
}

// keyOr 去除首尾空白；空白时返回缺省键
func keyOr(label, fallback string) string {
	if label = strings.TrimSpace(label); label == "" {
		return fallback
	}
	return label
}
