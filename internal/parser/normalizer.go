package parser

import (
	"time"

	"salespulse/internal/model"
)

// DefaultInstallmentMarker 出库类型/分期类型中标记分期付款的文本
const DefaultInstallmentMarker = "trả góp"

// NormalizeOptions 标准化选项
type NormalizeOptions struct {
	InstallmentMarker string
	Location          *time.Location
	// ExtraCandidates 追加的候选表头（按字段）
	ExtraCandidates map[CanonicalField][]string
}

// Normalizer 将任意表头的行数据映射为 RawRecord
type Normalizer struct {
	mapper *FieldMapper
	marker string
	loc    *time.Location
}

// NewNormalizer 创建标准化器
func NewNormalizer(opts NormalizeOptions) *Normalizer {
	marker := opts.InstallmentMarker
	if marker == "" {
		marker = DefaultInstallmentMarker
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		mapper: NewFieldMapper(opts.ExtraCandidates),
		marker: marker,
		loc:    loc,
	}
}

// Mapper 返回内部字段映射器
func (n *Normalizer) Mapper() *FieldMapper {
	return n.mapper
}

// Normalize 标准化行数据
//
// 不会返回错误：无法映射的字段取类型默认值，数值/日期解析失败计入 ParseDefaults，
// 必填字段缺失以 MappingWarning 形式返回。
func (n *Normalizer) Normalize(rows []map[string]any, header []string) *NormalizeResult {
	mappings, warnings := n.mapper.Resolve(header)
	result := &NormalizeResult{
		Records:  make([]model.RawRecord, 0, len(rows)),
		Mappings: mappings,
		Warnings: warnings,
	}

	column := func(field CanonicalField) (string, bool) {
		m, ok := mappings[field]
		return m.ColumnName, ok
	}
	text := func(row map[string]any, field CanonicalField) string {
		col, ok := column(field)
		if !ok {
			return ""
		}
		return ToText(row[col])
	}

	for i, row := range rows {
		if row == nil {
			row = map[string]any{}
		}
		rec := model.RawRecord{
			RowNo:         i + 1,
			Creator:       text(row, FieldCreator),
			IndustryLabel: text(row, FieldIndustry),
			GroupLabel:    text(row, FieldGroup),
			ExportType:    text(row, FieldExportType),
			LoanType:      text(row, FieldLoanType),
			Status:        text(row, FieldStatus),
			ReturnStatus:  text(row, FieldReturnStatus),
			ProductName:   text(row, FieldProductName),
			OrderCode:     text(row, FieldOrderCode),
		}

		if col, ok := column(FieldQuantity); ok {
			v, parsed := ParseNumber(row[col])
			if !parsed {
				result.ParseDefaults++
			}
			rec.Quantity = v
		}
		if col, ok := column(FieldRevenue); ok {
			v, parsed := ParseNumber(row[col])
			if !parsed {
				result.ParseDefaults++
			}
			rec.Revenue = v
		}
		if col, ok := column(FieldDate); ok {
			t, parsed := ParseDate(row[col], n.loc)
			if !parsed {
				result.ParseDefaults++
			}
			rec.TransactionDate = t
		}

		rec.Installment = ContainsAny(rec.ExportType, []string{n.marker}) ||
			ContainsAny(rec.LoanType, []string{n.marker})

		result.Records = append(result.Records, rec)
	}
	return result
}

// HasWarnings 是否存在必填字段缺失
func (r *NormalizeResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
