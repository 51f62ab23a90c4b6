package parser

import (
	"strings"
)

// MinSheetConfidence 判定为交易明细表的最低置信度
const MinSheetConfidence = 0.6

// 明细表常见的 Sheet 名关键字
var detailSheetHints = []string{"chi tiết", "dữ liệu", "giao dịch", "data", "detail"}

// SheetRecognizer Sheet 识别器：判断哪个 Sheet 是交易明细表
type SheetRecognizer struct {
	mapper *FieldMapper
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(mapper *FieldMapper) *SheetRecognizer {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	return &SheetRecognizer{mapper: mapper}
}

// Recognize 根据表头计算置信度：命中的必填字段占比，Sheet 名命中关键字时加 0.1
func (r *SheetRecognizer) Recognize(sheetName string, header []string) SheetRecognitionResult {
	mappings, _ := r.mapper.Resolve(header)

	required := 0
	for _, field := range RequiredFields {
		if _, ok := mappings[field]; ok {
			required++
		}
	}
	confidence := float64(required) / float64(len(RequiredFields))

	if required > 0 && ContainsAny(sheetName, detailSheetHints) {
		confidence += 0.1
	}
	if confidence > 1 {
		confidence = 1
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		Confidence: confidence,
		Resolved:   len(mappings),
	}
}

// Best 从候选结果中选出置信度最高的 Sheet（相同时取靠前者，其次比较命中字段数）
// 没有达到 MinSheetConfidence 的候选时返回 false
func Best(results []SheetRecognitionResult) (SheetRecognitionResult, bool) {
	var best SheetRecognitionResult
	found := false
	for _, res := range results {
		if res.Confidence < MinSheetConfidence {
			continue
		}
		if !found ||
			res.Confidence > best.Confidence ||
			(res.Confidence == best.Confidence && res.Resolved > best.Resolved) {
			best = res
			found = true
		}
	}
	return best, found
}

// IsBlankHeader 表头是否全部为空
func IsBlankHeader(header []string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			return false
		}
	}
	return true
}
