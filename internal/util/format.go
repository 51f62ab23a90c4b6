package util

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vnPrinter = message.NewPrinter(language.Vietnamese)

var (
	billion  = decimal.NewFromInt(1_000_000_000)
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// FormatAmount 取整后按越南语习惯分组，如 1234567 → "1.234.567"
func FormatAmount(d decimal.Decimal) string {
	return vnPrinter.Sprintf("%d", d.Round(0).IntPart())
}

// FormatMoneyShort 金额缩写：Tỷ（十亿）、Tr（百万）、k（千）
//
// 负数与千以下金额不缩写。
func FormatMoneyShort(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return "0"
	case d.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(1) + " Tỷ"
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(1) + " Tr"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(0) + " k"
	default:
		return FormatAmount(d)
	}
}

// FormatPercent 百分数展示（入参已是百分数），如 119.7 → "119.7%"
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
