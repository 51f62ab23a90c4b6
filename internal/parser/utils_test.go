package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		in     any
		want   string
		parsed bool
	}{
		{"空值", nil, "0", true},
		{"空字符串", "  ", "0", true},
		{"千分位逗号", "1,234,567", "1234567", true},
		{"越南式点分组", "1.234.567", "1234567", true},
		{"单个点为小数", "12.5", "12.5", true},
		{"单个点千分位", "150.000", "150000", true},
		{"单个点千分位带货币", "150.000 đ", "150000", true},
		{"单个点千分位 2.500", "2.500", "2500", true},
		{"负数单个点千分位", "-2.500", "-2500", true},
		{"货币符号时三位小数视为分组", "1.125₫", "1125", true},
		{"三位小数无尾随零", "1.125", "1.125", true},
		{"零开头为小数", "0.500", "0.5", true},
		{"超过三位整数为小数", "1234.500", "1234.5", true},
		{"逗号千分位+点小数", "1,234.50", "1234.5", true},
		{"点千分位+逗号小数", "1.234,50", "1234.5", true},
		{"货币符号", "2.000.000 ₫", "2000000", true},
		{"VNĐ 后缀", "150,000VNĐ", "150000", true},
		{"括号负数", "(500,000)", "-500000", true},
		{"负数", "-1200", "-1200", true},
		{"浮点", 3.25, "3.25", true},
		{"整数", 42, "42", true},
		{"无法解析", "abc", "0", false},
		{"不支持的类型", []int{1}, "0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseNumber(tc.in)
			assert.Equal(t, tc.parsed, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("ICT", 7*3600)

	cases := []struct {
		name   string
		in     any
		want   time.Time
		isNil  bool
		parsed bool
	}{
		{"空值", nil, time.Time{}, true, true},
		{"空字符串", "", time.Time{}, true, true},
		{"ISO 日期", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), false, true},
		{"ISO 日期时间", "2024-03-05 14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, loc), false, true},
		{"日/月/年", "05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), false, true},
		{"日/月/年 时:分", "5/3/2024 08:15", time.Date(2024, 3, 5, 8, 15, 0, 0, loc), false, true},
		{"Excel 序列号", 45356.0, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), false, true},
		{"序列号字符串", "45356", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), false, true},
		{"无法解析", "hôm qua", time.Time{}, true, false},
		{"序列号越界", -3.0, time.Time{}, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseDate(tc.in, loc)
			assert.Equal(t, tc.parsed, ok)
			if tc.isNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestToText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ToText(nil))
	assert.Equal(t, "Nguyễn Văn A", ToText("  Nguyễn Văn A \t"))
	assert.Equal(t, "1200", ToText(1200.0))
	assert.Equal(t, "7", ToText(7))
	// NFD 输入统一为 NFC
	assert.Equal(t, "Điện tử", ToText("\u0110i\u0065\u0323\u0302n t\u01b0\u0309"))
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ngườitạo", NormalizeColumnName(" Người  tạo "))
	assert.Equal(t, columnKey("LOẠI YCX"), columnKey("loại ycx"))
}
