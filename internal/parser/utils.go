package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名，去除空白字符并统一为 NFC
func NormalizeColumnName(name string) string {
	name = norm.NFC.String(name)
	return whitespaceRe.ReplaceAllString(name, "")
}

// columnKey 列名比较键（规范化 + 小写）
func columnKey(name string) string {
	return strings.ToLower(NormalizeColumnName(name))
}

// NormalizeText 规范化单元格文本：NFC + 去首尾空白
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// ContainsAny 检查字符串是否包含任意一个关键词（不区分大小写）
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(norm.NFC.String(text))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(norm.NFC.String(kw))) {
			return true
		}
	}
	return false
}

// ToText 将单元格值转为文本
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeText(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case interface{ String() string }:
		return NormalizeText(x.String())
	default:
		return ""
	}
}

var currencyMarks = []string{"VNĐ", "VND", "vnd", "₫", "đ", "Đ"}

// ParseNumber 解析数值；空值返回 (0, true)，无法解析返回 (0, false)
//
// 千分位：`,` 一律视为千分位；仅含多个 `.` 时视为越南式分组（1.234.567）；
// 同时含 `,` 与 `.` 时以靠后的一个作为小数点。括号表示负数。
func ParseNumber(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case decimal.Decimal:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case int32:
		return decimal.NewFromInt32(x), true
	case string:
		return parseNumberText(x)
	default:
		return decimal.Zero, false
	}
}

func parseNumberText(s string) (decimal.Decimal, bool) {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ReplaceAll(s, " ", "")
	hadCurrency := false
	for _, mark := range currencyMarks {
		if strings.Contains(s, mark) {
			hadCurrency = true
			s = strings.ReplaceAll(s, mark, "")
		}
	}
	if s == "" || s == "-" {
		return decimal.Zero, true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 0:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1, dots == 1 && isDotGrouping(s, hadCurrency):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// isDotGrouping 判断唯一的点是否为千分位：点前 1-3 位（非 0 开头）、点后恰好 3 位，
// 且点后以 0 结尾或原文带货币符号。Excel 原始数值不会带尾随 0，
// 因此 "150.000"、"2.500" 按分组解析，"1.125" 仍为小数。
func isDotGrouping(s string, hadCurrency bool) bool {
	intPart, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(frac) != 3 || len(intPart) == 0 || len(intPart) > 3 || intPart[0] == '0' {
		return false
	}
	if !isDigitString(intPart) || !isDigitString(frac) {
		return false
	}
	return hadCurrency || frac[2] == '0'
}

func isDigitString(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// 日期格式（按优先级）
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"1-2-06 15:04",
	"1-2-06",
}

// Excel 日期序列号的有效范围（1900-01-01 ~ 9999-12-31）
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseDate 解析日期；空值返回 (nil, true)，无法解析返回 (nil, false)
func ParseDate(v any, loc *time.Location) (*time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch x := v.(type) {
	case nil:
		return nil, true
	case time.Time:
		if x.IsZero() {
			return nil, true
		}
		return &x, true
	case *time.Time:
		if x == nil || x.IsZero() {
			return nil, true
		}
		t := *x
		return &t, true
	case float64:
		return fromExcelSerial(x, loc)
	case int:
		return fromExcelSerial(float64(x), loc)
	case int64:
		return fromExcelSerial(float64(x), loc)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromExcelSerial(f, loc)
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return &t, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func fromExcelSerial(serial float64, loc *time.Location) (*time.Time, bool) {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return nil, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil, false
	}
	// 序列号无时区，按业务时区解释墙上时间
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	return &local, true
}
