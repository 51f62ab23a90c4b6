package model

import "github.com/shopspring/decimal"

// GroupNode 商品组汇总（行业下的二级节点）
type GroupNode struct {
	Key  string `json:"key"`
	Name string `json:"name"`

	Quantity         decimal.Decimal `json:"quantity"`
	Revenue          decimal.Decimal `json:"revenue"`
	ConvertedRevenue decimal.Decimal `json:"convertedRevenue"`

	Coefficient        float64 `json:"coefficient"`
	CoefficientPercent string  `json:"coefficientPercent"` // 如 "545%"
	Efficiency         float64 `json:"efficiency"`
	TargetPercent      float64 `json:"targetPercent"`
}

// IndustryNode 行业汇总
type IndustryNode struct {
	Key  string `json:"key"`
	Name string `json:"name"`

	Quantity         decimal.Decimal `json:"quantity"`
	Revenue          decimal.Decimal `json:"revenue"`
	ConvertedRevenue decimal.Decimal `json:"convertedRevenue"`

	Efficiency    float64 `json:"efficiency"`
	RevenueShare  float64 `json:"revenueShare"`
	TargetPercent float64 `json:"targetPercent"`

	Groups []GroupNode `json:"groups"`
}

// StaffAggregate 员工汇总
type StaffAggregate struct {
	Creator string `json:"creator"`

	RecordCount      int             `json:"recordCount"`
	Quantity         decimal.Decimal `json:"quantity"`
	Revenue          decimal.Decimal `json:"revenue"`
	ConvertedRevenue decimal.Decimal `json:"convertedRevenue"`
	InsuranceRevenue decimal.Decimal `json:"insuranceRevenue"`

	Efficiency    float64 `json:"efficiency"`
	TargetPercent float64 `json:"targetPercent"`
}

// StatisticsSnapshot 一次 (数据, 过滤条件) 的完整统计结果
type StatisticsSnapshot struct {
	RecordCount   int `json:"recordCount"`
	EligibleCount int `json:"eligibleCount"`

	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	TotalQuantity         decimal.Decimal `json:"totalQuantity"`
	TotalConvertedRevenue decimal.Decimal `json:"totalConvertedRevenue"`
	ConversionEfficiency  float64         `json:"conversionEfficiency"`

	InstallmentRevenue decimal.Decimal `json:"installmentRevenue"`
	InstallmentCount   int             `json:"installmentCount"`
	InstallmentRate    float64         `json:"installmentRate"`

	PendingConvertedRevenue decimal.Decimal `json:"pendingConvertedRevenue"`

	Industries []IndustryNode   `json:"industries"`
	Staff      []StaffAggregate `json:"staff"`
}

// NewEmptySnapshot 全零快照
func NewEmptySnapshot() *StatisticsSnapshot {
	return &StatisticsSnapshot{
		Industries: []IndustryNode{},
		Staff:      []StaffAggregate{},
	}
}
