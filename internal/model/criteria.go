package model

import (
	"fmt"
	"strings"
	"time"
)

// DateRange 日期区间（按天，首尾均包含）
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains 判断时间是否落在 [Start 当天 00:00, End 当天结束]
func (r DateRange) Contains(t time.Time) bool {
	loc := r.Start.Location()
	t = t.In(loc)
	from := startOfDay(r.Start)
	until := startOfDay(r.End.In(loc)).AddDate(0, 0, 1)
	return !t.Before(from) && t.Before(until)
}

// FilterCriteria 过滤条件；任一集合为空表示该维度不限制
type FilterCriteria struct {
	Creators       []string   `json:"creators"`
	Statuses       []string   `json:"statuses"`
	ExportTypes    []string   `json:"exportTypes"`
	ReturnStatuses []string   `json:"returnStatuses"`
	DateRange      *DateRange `json:"dateRange,omitempty"`
	Keyword        string     `json:"keyword"`
}

// Clone 深拷贝
func (c FilterCriteria) Clone() FilterCriteria {
	out := FilterCriteria{
		Creators:       cloneStrings(c.Creators),
		Statuses:       cloneStrings(c.Statuses),
		ExportTypes:    cloneStrings(c.ExportTypes),
		ReturnStatuses: cloneStrings(c.ReturnStatuses),
		Keyword:        c.Keyword,
	}
	if c.DateRange != nil {
		dr := *c.DateRange
		out.DateRange = &dr
	}
	return out
}

// IsEmpty 是否为恒等过滤
func (c FilterCriteria) IsEmpty() bool {
	return len(c.Creators) == 0 &&
		len(c.Statuses) == 0 &&
		len(c.ExportTypes) == 0 &&
		len(c.ReturnStatuses) == 0 &&
		c.DateRange == nil &&
		strings.TrimSpace(c.Keyword) == ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// 时间快捷选项
const (
	PresetAll       = "all"
	PresetToday     = "today"
	PresetThisWeek  = "this_week"
	PresetThisMonth = "this_month"
	PresetLastMonth = "last_month"
)

// PresetRange 根据快捷选项生成日期区间；"all" 返回 nil
func PresetRange(preset string, now time.Time, weekStart time.Weekday) (*DateRange, error) {
	today := startOfDay(now)
	switch preset {
	case PresetAll, "":
		return nil, nil
	case PresetToday:
		return &DateRange{Start: today, End: today}, nil
	case PresetThisWeek:
		offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
		start := today.AddDate(0, 0, -offset)
		return &DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case PresetThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return &DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PresetLastMonth:
		thisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		start := thisMonth.AddDate(0, -1, 0)
		return &DateRange{Start: start, End: thisMonth.AddDate(0, 0, -1)}, nil
	default:
		return nil, fmt.Errorf("unknown date preset: %s", preset)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterOptions 可供选择的过滤项（去重、排序后的非空值）
type FilterOptions struct {
	Creators       []string `json:"creators"`
	Statuses       []string `json:"statuses"`
	ExportTypes    []string `json:"exportTypes"`
	ReturnStatuses []string `json:"returnStatuses"`
}
