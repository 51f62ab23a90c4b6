package parser

import (
	"fmt"
	"strings"
)

// fieldCandidates 各标准字段的候选表头（按优先级）
var fieldCandidates = map[CanonicalField][]string{
	FieldCreator:      {"Người tạo", "Nhân viên bán hàng", "Nhân viên", "Người bán", "Creator", "Salesman"},
	FieldIndustry:     {"Ngành hàng", "Ngành", "Industry"},
	FieldGroup:        {"Nhóm hàng", "Nhóm sản phẩm", "Product group", "Group"},
	FieldQuantity:     {"Số lượng", "Quantity", "Qty"},
	FieldRevenue:      {"Phải thu", "Doanh thu", "Thành tiền", "Revenue", "Amount"},
	FieldExportType:   {"Loại YCX", "Loại yêu cầu xuất", "Hình thức xuất", "Export type"},
	FieldLoanType:     {"Loại trả góp", "Hình thức trả góp", "Công ty tài chính", "Loan type"},
	FieldReturnStatus: {"Trạng thái trả hàng", "Trạng thái hoàn", "Trả hàng", "Return status"},
	FieldStatus:       {"Trạng thái xuất", "Trạng thái", "Export status", "Status"},
	FieldDate:         {"Ngày tạo", "Ngày xuất", "Ngày", "Created at", "Date"},
	FieldProductName:  {"Tên sản phẩm", "Sản phẩm", "Product name", "Product"},
	FieldOrderCode:    {"Mã đơn hàng", "Mã đơn", "Order code", "Order"},
}

// fieldOrder 解析顺序；子串匹配阶段先处理更具体的字段（如退货状态先于出库状态）
var fieldOrder = []CanonicalField{
	FieldCreator,
	FieldIndustry,
	FieldGroup,
	FieldQuantity,
	FieldRevenue,
	FieldExportType,
	FieldLoanType,
	FieldReturnStatus,
	FieldStatus,
	FieldDate,
	FieldProductName,
	FieldOrderCode,
}

// RequiredFields 缺失时需要提示的字段
var RequiredFields = []CanonicalField{
	FieldCreator,
	FieldIndustry,
	FieldGroup,
	FieldQuantity,
	FieldRevenue,
}

// FieldMapper 字段映射器
type FieldMapper struct {
	candidates map[CanonicalField][]string
}

// NewFieldMapper 创建字段映射器；overrides 可为部分字段追加候选表头（优先于内置候选）
func NewFieldMapper(overrides map[CanonicalField][]string) *FieldMapper {
	candidates := make(map[CanonicalField][]string, len(fieldCandidates))
	for field, list := range fieldCandidates {
		merged := append([]string{}, overrides[field]...)
		candidates[field] = append(merged, list...)
	}
	return &FieldMapper{candidates: candidates}
}

// Candidates 返回字段的候选表头
func (m *FieldMapper) Candidates(field CanonicalField) []string {
	return append([]string{}, m.candidates[field]...)
}

// Resolve 将表头映射到标准字段
//
// 先对所有字段做精确匹配（忽略大小写与空白），再对未命中的字段做子串匹配；
// 已被占用的表头不会被再次分配。
func (m *FieldMapper) Resolve(header []string) (map[CanonicalField]FieldMapping, []MappingWarning) {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = columnKey(h)
	}
	claimed := make([]bool, len(header))
	mappings := make(map[CanonicalField]FieldMapping)

	claim := func(field CanonicalField, idx int, candidate string, mt MatchType) {
		claimed[idx] = true
		mappings[field] = FieldMapping{
			Field:      field,
			ColumnName: header[idx],
			Candidate:  candidate,
			MatchType:  mt,
		}
	}

	// 第一轮：精确匹配
	for _, field := range fieldOrder {
	exact:
		for _, candidate := range m.candidates[field] {
			ck := columnKey(candidate)
			for idx, key := range keys {
				if !claimed[idx] && key != "" && key == ck {
					claim(field, idx, candidate, MatchExact)
					break exact
				}
			}
		}
	}

	// 第二轮：子串匹配
	for _, field := range fieldOrder {
		if _, ok := mappings[field]; ok {
			continue
		}
	substring:
		for _, candidate := range m.candidates[field] {
			ck := columnKey(candidate)
			if ck == "" {
				continue
			}
			for idx, key := range keys {
				if !claimed[idx] && key != "" && strings.Contains(key, ck) {
					claim(field, idx, candidate, MatchSubstring)
					break substring
				}
			}
		}
	}

	var warnings []MappingWarning
	for _, field := range RequiredFields {
		if _, ok := mappings[field]; ok {
			continue
		}
		warnings = append(warnings, MappingWarning{
			Field:      field,
			Candidates: m.Candidates(field),
			Message:    fmt.Sprintf("Không tìm thấy cột cho trường bắt buộc %q", field),
		})
	}
	return mappings, warnings
}

