package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMapper_Resolve_ExactBeforeSubstring(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(nil)
	header := []string{"Trạng thái trả hàng", "Trạng thái xuất", "Ngành hàng", "Nhóm hàng", "Người tạo", "Số lượng", "Phải thu"}
	mappings, warnings := m.Resolve(header)

	assert.Empty(t, warnings)
	assert.Equal(t, "Trạng thái xuất", mappings[FieldStatus].ColumnName)
	assert.Equal(t, MatchExact, mappings[FieldStatus].MatchType)
	assert.Equal(t, "Trạng thái trả hàng", mappings[FieldReturnStatus].ColumnName)
	assert.Equal(t, "Phải thu", mappings[FieldRevenue].ColumnName)
}

func TestFieldMapper_Resolve_SubstringDoesNotReuseClaimedColumn(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(nil)
	// "Trạng thái" 精确命中出库状态后，不能再被子串匹配给退货状态
	mappings, _ := m.Resolve([]string{"Trạng thái", "Người tạo (NV)"})

	assert.Equal(t, "Trạng thái", mappings[FieldStatus].ColumnName)
	_, ok := mappings[FieldReturnStatus]
	assert.False(t, ok)
	assert.Equal(t, MatchSubstring, mappings[FieldCreator].MatchType)
	assert.Equal(t, "Người tạo (NV)", mappings[FieldCreator].ColumnName)
}

func TestFieldMapper_Resolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(nil)
	mappings, _ := m.Resolve([]string{"  NGƯỜI TẠO ", "loại  ycx"})

	assert.Equal(t, MatchExact, mappings[FieldCreator].MatchType)
	assert.Equal(t, MatchExact, mappings[FieldExportType].MatchType)
}

func TestFieldMapper_Resolve_MissingRequiredFields(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(nil)
	_, warnings := m.Resolve([]string{"Người tạo", "Phải thu"})

	fields := make([]CanonicalField, 0, len(warnings))
	for _, w := range warnings {
		fields = append(fields, w.Field)
		assert.NotEmpty(t, w.Candidates)
	}
	assert.Equal(t, []CanonicalField{FieldIndustry, FieldGroup, FieldQuantity}, fields)
}

func TestFieldMapper_Overrides(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(map[CanonicalField][]string{FieldRevenue: {"Tổng tiền"}})
	mappings, _ := m.Resolve([]string{"Tổng tiền", "Doanh thu"})

	assert.Equal(t, "Tổng tiền", mappings[FieldRevenue].ColumnName)
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("ICT", 7*3600)
	n := NewNormalizer(NormalizeOptions{Location: loc})

	header := []string{"Mã đơn hàng", "Người tạo", "Ngành hàng", "Nhóm hàng", "Số lượng", "Phải thu", "Loại YCX", "Trạng thái xuất", "Ngày tạo", "Tên sản phẩm"}
	rows := []map[string]any{
		{
			"Mã đơn hàng":     "DH001",
			"Người tạo":       " 1234 - Trần Thị B ",
			"Ngành hàng":      "664 - Sim",
			"Nhóm hàng":       "",
			"Số lượng":        "1",
			"Phải thu":        "1.000.000",
			"Loại YCX":        "Xuất bán trả góp",
			"Trạng thái xuất": "Đã xuất",
			"Ngày tạo":        "15/01/2024 10:00",
			"Tên sản phẩm":    "Sim 4G",
		},
		{
			"Người tạo":  "1234 - Trần Thị B",
			"Ngành hàng": "304 - Điện tử",
			"Số lượng":   "x",
			"Phải thu":   2000000.0,
			"Ngày tạo":   "không rõ",
		},
	}

	res := n.Normalize(rows, header)
	require.Len(t, res.Records, 2)
	assert.False(t, res.HasWarnings())
	assert.Equal(t, 2, res.ParseDefaults)

	first := res.Records[0]
	assert.Equal(t, 1, first.RowNo)
	assert.Equal(t, "1234 - Trần Thị B", first.Creator)
	assert.Equal(t, "664 - Sim", first.IndustryLabel)
	assert.True(t, first.Revenue.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, first.Installment)
	require.NotNil(t, first.TransactionDate)
	assert.True(t, first.TransactionDate.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, loc)))
	assert.Equal(t, "DH001", first.OrderCode)

	second := res.Records[1]
	assert.True(t, second.Quantity.IsZero())
	assert.True(t, second.Revenue.Equal(decimal.NewFromInt(2000000)))
	assert.Nil(t, second.TransactionDate)
	assert.False(t, second.Installment)
	assert.Equal(t, "", second.GroupLabel)
}

func TestNormalizer_Normalize_NeverFails(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizeOptions{})

	res := n.Normalize(nil, nil)
	assert.Empty(t, res.Records)
	assert.Len(t, res.Warnings, len(RequiredFields))

	res = n.Normalize([]map[string]any{nil, {"bất kỳ": 1}}, []string{"bất kỳ"})
	require.Len(t, res.Records, 2)
	assert.True(t, res.Records[0].Revenue.IsZero())
	assert.Equal(t, "", res.Records[1].Creator)
}

func TestNormalizer_InstallmentFromLoanType(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizeOptions{InstallmentMarker: "TRẢ GÓP"})
	res := n.Normalize(
		[]map[string]any{{"Loại trả góp": "Trả góp 0%"}},
		[]string{"Loại trả góp"},
	)
	require.Len(t, res.Records, 1)
	assert.True(t, res.Records[0].Installment)
}

func TestSheetRecognizer_Best(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(nil)
	results := []SheetRecognitionResult{
		r.Recognize("Tổng hợp", []string{"Tháng", "Tổng"}),
		r.Recognize("Chi tiết", []string{"Người tạo", "Ngành hàng", "Nhóm hàng", "Số lượng", "Phải thu", "Loại YCX"}),
		r.Recognize("Sheet3", []string{"Người tạo", "Ngành hàng", "Nhóm hàng"}),
	}

	best, ok := Best(results)
	require.True(t, ok)
	assert.Equal(t, "Chi tiết", best.SheetName)
	assert.Equal(t, 1.0, best.Confidence)
	assert.Equal(t, 0.0, results[0].Confidence)

	_, ok = Best(results[:1])
	assert.False(t, ok)
}
