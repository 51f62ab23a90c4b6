package parser

import "salespulse/internal/model"

// CanonicalField 标准字段
type CanonicalField string

const (
	FieldCreator      CanonicalField = "creator"
	FieldIndustry     CanonicalField = "industry"
	FieldGroup        CanonicalField = "group"
	FieldQuantity     CanonicalField = "quantity"
	FieldRevenue      CanonicalField = "revenue"
	FieldExportType   CanonicalField = "exportType"
	FieldLoanType     CanonicalField = "loanType"
	FieldStatus       CanonicalField = "status"
	FieldReturnStatus CanonicalField = "returnStatus"
	FieldDate         CanonicalField = "date"
	FieldProductName  CanonicalField = "productName"
	FieldOrderCode    CanonicalField = "orderCode"
)

// MatchType 列名匹配方式
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchSubstring MatchType = "substring"
)

// FieldMapping 字段映射结果
type FieldMapping struct {
	Field      CanonicalField `json:"field"`
	ColumnName string         `json:"columnName"` // 原始表头
	Candidate  string         `json:"candidate"`  // 命中的候选名
	MatchType  MatchType      `json:"matchType"`
}

// MappingWarning 必填字段未能映射到任何列（非致命）
type MappingWarning struct {
	Field      CanonicalField `json:"field"`
	Candidates []string       `json:"candidates"`
	Message    string         `json:"message"`
}

// NormalizeResult 标准化结果
type NormalizeResult struct {
	Records       []model.RawRecord               `json:"records"`
	Mappings      map[CanonicalField]FieldMapping `json:"mappings"`
	Warnings      []MappingWarning                `json:"warnings"`
	ParseDefaults int                             `json:"parseDefaults"` // 数值/日期解析失败而取默认值的单元格数
}

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string  `json:"sheetName"`
	Confidence float64 `json:"confidence"` // 置信度 0-1
	Resolved   int     `json:"resolved"`   // 命中的标准字段数
}
