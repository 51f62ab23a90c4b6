package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/config"
	"salespulse/internal/exporter"
)

const salesCSV = "Người tạo;Ngành hàng;Nhóm hàng;Số lượng;Phải thu;Loại YCX;Trạng thái xuất;Ngày tạo\n" +
	"An;664 - Sim;;1;1000000;Bán thường;Đã xuất;05/03/2024\n" +
	"Bình;304 - Điện tử;880 - Loa;2;2000000;Bán trả góp;Đã xuất;20/03/2024\n" +
	"An;999 - Khác;;1;500000;;Chưa xuất;02/02/2024\n"

func writeSalesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ban-hang.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))
	return path
}

func TestRunReport_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     reportFlags
		revenue   string
		converted string
	}{
		{
			name:      "无过滤",
			flags:     reportFlags{format: "json"},
			revenue:   "3000000",
			converted: "8030000",
		},
		{
			name:      "按人员过滤",
			flags:     reportFlags{format: "json", creators: []string{"An"}},
			revenue:   "1000000",
			converted: "5450000",
		},
		{
			name:      "按日期区间过滤",
			flags:     reportFlags{format: "json", from: "2024-03-10", to: "2024-03-31"},
			revenue:   "2000000",
			converted: "2580000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			err := runReport(context.Background(), config.DefaultConfig(), writeSalesFile(t), tt.flags, &buf)
			require.NoError(t, err)

			var out struct {
				Snapshot struct {
					TotalRevenue          string `json:"totalRevenue"`
					TotalConvertedRevenue string `json:"totalConvertedRevenue"`
				} `json:"snapshot"`
				Import struct {
					ImportedRows int `json:"importedRows"`
				} `json:"import"`
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
			assert.Equal(t, 3, out.Import.ImportedRows)
			assert.Equal(t, tt.revenue, out.Snapshot.TotalRevenue)
			assert.Equal(t, tt.converted, out.Snapshot.TotalConvertedRevenue)
		})
	}
}

func TestRunReport_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := runReport(context.Background(), config.DefaultConfig(), writeSalesFile(t), reportFlags{format: "text"}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ban-hang.csv")
	assert.Contains(t, out, "3.000.000")
	assert.Contains(t, out, "8.030.000")
	assert.Contains(t, out, "Bình")
}

func TestRunReport_WritesWorkbook(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "bao-cao.xlsx")
	var buf bytes.Buffer
	err := runReport(context.Background(), config.DefaultConfig(), writeSalesFile(t),
		reportFlags{format: "text", out: out, detail: true}, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), exporter.SheetOverview)
	assert.Contains(t, f.GetSheetList(), exporter.SheetDetail)
}

func TestRunReport_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		flags reportFlags
	}{
		{name: "未知输出格式", flags: reportFlags{format: "xml"}},
		{name: "只有开始日期", flags: reportFlags{format: "text", from: "2024-03-01"}},
		{name: "未知快捷选项", flags: reportFlags{format: "text", preset: "next_year"}},
		{name: "文件不存在", path: "khong-ton-tai.csv", flags: reportFlags{format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := tt.path
			if path == "" {
				path = writeSalesFile(t)
			} else {
				path = filepath.Join(t.TempDir(), path)
			}
			var buf bytes.Buffer
			assert.Error(t, runReport(context.Background(), config.DefaultConfig(), path, tt.flags, &buf))
		})
	}
}

func TestReportFlags_Criteria(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	loc := cfg.Location()
	now := time.Date(2024, 3, 21, 10, 0, 0, 0, loc)

	t.Run("快捷选项本月", func(t *testing.T) {
		t.Parallel()
		c, err := reportFlags{preset: "this_month"}.criteria(cfg, now)
		require.NoError(t, err)
		require.NotNil(t, c.DateRange)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), c.DateRange.Start)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, loc), c.DateRange.End)
	})

	t.Run("无日期条件", func(t *testing.T) {
		t.Parallel()
		c, err := reportFlags{keyword: "sim"}.criteria(cfg, now)
		require.NoError(t, err)
		assert.Nil(t, c.DateRange)
		assert.Equal(t, "sim", c.Keyword)
	})

	t.Run("结束早于开始", func(t *testing.T) {
		t.Parallel()
		_, err := reportFlags{from: "2024-03-10", to: "2024-03-01"}.criteria(cfg, now)
		assert.Error(t, err)
	})
}
