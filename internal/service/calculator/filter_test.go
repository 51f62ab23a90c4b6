package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salespulse/internal/model"
)

var testLoc = time.FixedZone("ICT", 7*3600)

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, testLoc)
	return &t
}

func filterFixture() []model.RawRecord {
	return []model.RawRecord{
		{RowNo: 1, Creator: "An", Status: "Đã xuất", ExportType: "Xuất bán", ReturnStatus: "Chưa trả", ProductName: "Sim 4G Viettel", OrderCode: "DH001", TransactionDate: at(2024, 1, 1, 0), IndustryLabel: "664 - Sim", Revenue: decimal.NewFromInt(100)},
		{RowNo: 2, Creator: "Bình", Status: "Chưa xuất", ExportType: "Xuất bán trả góp", ProductName: "Tivi Sony", OrderCode: "DH002", TransactionDate: at(2024, 1, 15, 23), IndustryLabel: "304 - Điện tử", Revenue: decimal.NewFromInt(200)},
		{RowNo: 3, Creator: "An", Status: "Chưa xuất", ExportType: "Xuất bán", ProductName: "Loa JBL", OrderCode: "sim-777", TransactionDate: nil, IndustryLabel: "304 - Điện tử", Revenue: decimal.NewFromInt(300)},
		{RowNo: 4, Creator: "Cường", Status: "Đã xuất", ExportType: "Xuất bán", ReturnStatus: "Đã trả", ProductName: "Đồng hồ", OrderCode: "DH004", TransactionDate: at(2024, 1, 31, 23), IndustryLabel: "23 - Đồng hồ", Revenue: decimal.NewFromInt(400)},
		{RowNo: 5, Creator: "", Status: "", ProductName: "", OrderCode: "", TransactionDate: at(2024, 2, 1, 0), Revenue: decimal.NewFromInt(500)},
	}
}

func rowNos(records []model.RawRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.RowNo
	}
	return out
}

func TestFilter_Identity(t *testing.T) {
	t.Parallel()

	records := filterFixture()
	got := Filter(records, model.FilterCriteria{})
	assert.Equal(t, records, got)

	// 空集合与 nil 等价
	got = Filter(records, model.FilterCriteria{Creators: []string{}, Keyword: "   "})
	assert.Equal(t, records, got)
}

func TestFilter_Dimensions(t *testing.T) {
	t.Parallel()

	jan := &model.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, testLoc),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, testLoc),
	}

	tests := []struct {
		name     string
		criteria model.FilterCriteria
		want     []int
	}{
		{"按员工", model.FilterCriteria{Creators: []string{"An"}}, []int{1, 3}},
		{"按多个员工", model.FilterCriteria{Creators: []string{"Cường", "Bình"}}, []int{2, 4}},
		{"按状态", model.FilterCriteria{Statuses: []string{"Đã xuất"}}, []int{1, 4}},
		{"按出库类型", model.FilterCriteria{ExportTypes: []string{"Xuất bán trả góp"}}, []int{2}},
		{"按退货状态", model.FilterCriteria{ReturnStatuses: []string{"Đã trả"}}, []int{4}},
		{"关键字匹配商品名（不区分大小写）", model.FilterCriteria{Keyword: "SONY"}, []int{2}},
		{"关键字匹配商品名或单号", model.FilterCriteria{Keyword: "sim"}, []int{1, 3}},
		{"关键字两端空白", model.FilterCriteria{Keyword: "  jbl "}, []int{3}},
		{"日期区间含首尾两天，空日期排除", model.FilterCriteria{DateRange: jan}, []int{1, 2, 4}},
		{"多维度同时生效", model.FilterCriteria{Creators: []string{"An"}, Statuses: []string{"Chưa xuất"}}, []int{3}},
		{"无匹配", model.FilterCriteria{Creators: []string{"Không có"}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(filterFixture(), tt.criteria)
			assert.Equal(t, tt.want, rowNos(got))
		})
	}
}

func TestFilter_SingleDay(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, testLoc)
	got := Filter(filterFixture(), model.FilterCriteria{DateRange: &model.DateRange{Start: day, End: day}})
	assert.Equal(t, []int{2}, rowNos(got))
}

func TestFilter_Monotonic(t *testing.T) {
	t.Parallel()

	records := filterFixture()
	base := model.FilterCriteria{Statuses: []string{"Đã xuất", "Chưa xuất"}}
	baseLen := len(Filter(records, base))

	restrictions := []func(*model.FilterCriteria){
		func(c *model.FilterCriteria) { c.Creators = []string{"An"} },
		func(c *model.FilterCriteria) { c.Statuses = []string{"Đã xuất"} },
		func(c *model.FilterCriteria) { c.ExportTypes = []string{"Xuất bán"} },
		func(c *model.FilterCriteria) { c.ReturnStatuses = []string{"Chưa trả"} },
		func(c *model.FilterCriteria) { c.Keyword = "dh" },
		func(c *model.FilterCriteria) {
			d := time.Date(2024, 1, 1, 0, 0, 0, 0, testLoc)
			c.DateRange = &model.DateRange{Start: d, End: d}
		},
	}
	for i, restrict := range restrictions {
		c := base.Clone()
		restrict(&c)
		assert.LessOrEqual(t, len(Filter(records, c)), baseLen, "restriction #%d", i)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := filterFixture()
	before := filterFixture()
	_ = Filter(records, model.FilterCriteria{Keyword: "sim", Creators: []string{"An"}})
	assert.Equal(t, before, records)
}

func TestFilterOptionsOf(t *testing.T) {
	t.Parallel()

	opts := FilterOptionsOf(filterFixture())
	assert.Equal(t, []string{"An", "Bình", "Cường"}, opts.Creators)
	assert.Equal(t, []string{"Chưa xuất", "Đã xuất"}, opts.Statuses)
	assert.Equal(t, []string{"Xuất bán", "Xuất bán trả góp"}, opts.ExportTypes)
	assert.Equal(t, []string{"Chưa trả", "Đã trả"}, opts.ReturnStatuses)
}
