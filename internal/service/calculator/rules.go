package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"salespulse/internal/model"
)

// FallbackCoefficient 未命中任何规则时的系数
const FallbackCoefficient = 1.0

// InsuranceCategory 保险类目键；命中该类目的营收计入员工的保险营收
const InsuranceCategory = "insurance"

// InsuranceCoefficient 默认规则表中保险类目的系数
const InsuranceCoefficient = 4.18

// ErrInvalidRuleSet 规则表配置非法
var ErrInvalidRuleSet = errors.New("invalid rule set")

// Category 业务类目：编码、关键字与系数
type Category struct {
	Key        string   `json:"key" yaml:"key"`
	Name       string   `json:"name" yaml:"name"`
	Multiplier float64  `json:"multiplier" yaml:"multiplier"`
	Codes      []string `json:"codes" yaml:"codes"`
	Keywords   []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// DefaultCategories 默认类目（顺序即同一阶段内的优先级）
func DefaultCategories() []Category {
	return []Category{
		{Key: "sim", Name: "SIM", Multiplier: 5.45, Codes: []string{"664"}, Keywords: []string{"sim"}},
		{Key: InsuranceCategory, Name: "Bảo hiểm", Multiplier: InsuranceCoefficient, Codes: []string{"164"}, Keywords: []string{"bảo hiểm"}},
		{Key: "accessories", Name: "Phụ kiện", Multiplier: 3.37, Codes: []string{"184", "1394", "16"}, Keywords: []string{"phụ kiện"}},
		{Key: "watches", Name: "Đồng hồ", Multiplier: 3.00, Codes: []string{"1274", "23"}, Keywords: []string{"đồng hồ"}},
		{Key: "bicycles", Name: "Xe đạp", Multiplier: 1.92, Codes: []string{"1034"}, Keywords: []string{"xe đạp"}},
		{Key: "home_appliances", Name: "Gia dụng", Multiplier: 1.85, Codes: []string{"484", "1214", "1116"}, Keywords: []string{"gia dụng"}},
		{Key: "speakers", Name: "Loa", Multiplier: 1.29, Codes: []string{"880"}, Keywords: []string{"loa"}},
		{Key: "electronics", Name: "Điện tử", Multiplier: 1.0, Codes: []string{"304"}},
	}
}

// DefaultWhitelist 默认参与统计的行业/商品组编码
func DefaultWhitelist() []string {
	return []string{
		"1034", "1116", "1214", "1274", "13", "1394", "16", "164", "1754",
		"1755", "1756", "184", "22", "23", "244", "304", "484", "664", "880",
	}
}

// EligibilityMode 白名单匹配方式
type EligibilityMode string

const (
	EligibilityExact  EligibilityMode = "exact"
	EligibilityPrefix EligibilityMode = "prefix"
)

// Scope 规则作用的标签
type Scope string

const (
	ScopeGroup    Scope = "group"
	ScopeIndustry Scope = "industry"
)

// MatchKind 规则的匹配方式
type MatchKind string

const (
	MatchCode MatchKind = "code" // 编码相等
	MatchText MatchKind = "text" // 标签包含关键字
)

// Rule 一条有序规则
type Rule struct {
	Category   string    `json:"category"`
	Scope      Scope     `json:"scope"`
	Kind       MatchKind `json:"kind"`
	Value      string    `json:"value"`
	Multiplier float64   `json:"multiplier"`
}

// Matches 判断规则是否命中
func (r Rule) Matches(c Classification) bool {
	switch r.Kind {
	case MatchCode:
		code := c.IndustryCode
		if r.Scope == ScopeGroup {
			code = c.GroupCode
		}
		return code != "" && code == r.Value
	case MatchText:
		text := c.IndustryText
		if r.Scope == ScopeGroup {
			text = c.GroupText
		}
		return text != "" && strings.Contains(text, r.Value)
	}
	return false
}

// Classification 一对 (行业, 商品组) 标签的解析结果
type Classification struct {
	IndustryCode string
	GroupCode    string
	IndustryText string // 小写 NFC 全文
	GroupText    string
}

// Classify 提取编码并生成用于关键字匹配的文本
func Classify(industryLabel, groupLabel string) Classification {
	industryCode, _ := model.SplitLabel(industryLabel)
	groupCode, _ := model.SplitLabel(groupLabel)
	return Classification{
		IndustryCode: industryCode,
		GroupCode:    groupCode,
		IndustryText: foldText(industryLabel),
		GroupText:    foldText(groupLabel),
	}
}

func foldText(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Resolution 系数解析结果
type Resolution struct {
	Coefficient float64 `json:"coefficient"`
	Category    string  `json:"category,omitempty"` // 未命中时为空
	RuleIndex   int     `json:"ruleIndex"`          // 未命中时为 -1
}

// Evaluation 单条记录的规则评估结果
type Evaluation struct {
	Eligible         bool    `json:"eligible"`
	Coefficient      float64 `json:"coefficient"`
	Category         string  `json:"category,omitempty"`
	ConvertedRevenue string  `json:"convertedRevenue"`
}

// RuleSet 不可变的系数规则表与白名单
type RuleSet struct {
	categories []Category
	rules      []Rule
	whitelist  []string
	whiteSet   map[string]struct{}
	mode       EligibilityMode
}

// NewRuleSet 由类目表生成有序规则
//
// 阶段顺序：商品组编码 → 行业编码 → 商品组关键字 → 行业关键字；同一阶段内按类目顺序。
func NewRuleSet(categories []Category, whitelist []string, mode EligibilityMode) (*RuleSet, error) {
	if mode == "" {
		mode = EligibilityExact
	}
	if mode != EligibilityExact && mode != EligibilityPrefix {
		return nil, fmt.Errorf("%w: unknown eligibility mode %q", ErrInvalidRuleSet, mode)
	}

	cats := make([]Category, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for i, c := range categories {
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" {
			return nil, fmt.Errorf("%w: category #%d has empty key", ErrInvalidRuleSet, i+1)
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidRuleSet, c.Key)
		}
		seen[c.Key] = struct{}{}
		if math.IsNaN(c.Multiplier) || math.IsInf(c.Multiplier, 0) || c.Multiplier <= 0 {
			return nil, fmt.Errorf("%w: category %q multiplier must be a finite positive number", ErrInvalidRuleSet, c.Key)
		}
		c.Codes = cleanList(c.Codes, strings.TrimSpace)
		c.Keywords = cleanList(c.Keywords, foldText)
		if len(c.Codes) == 0 && len(c.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has neither codes nor keywords", ErrInvalidRuleSet, c.Key)
		}
		cats = append(cats, c)
	}

	rs := &RuleSet{
		categories: cats,
		whitelist:  cleanList(whitelist, strings.TrimSpace),
		mode:       mode,
	}
	rs.whiteSet = make(map[string]struct{}, len(rs.whitelist))
	for _, code := range rs.whitelist {
		rs.whiteSet[code] = struct{}{}
	}

	stages := []struct {
		scope Scope
		kind  MatchKind
	}{
		{ScopeGroup, MatchCode},
		{ScopeIndustry, MatchCode},
		{ScopeGroup, MatchText},
		{ScopeIndustry, MatchText},
	}
	for _, st := range stages {
		for _, c := range cats {
			values := c.Codes
			if st.kind == MatchText {
				values = c.Keywords
			}
			for _, v := range values {
				rs.rules = append(rs.rules, Rule{
					Category:   c.Key,
					Scope:      st.scope,
					Kind:       st.kind,
					Value:      v,
					Multiplier: c.Multiplier,
				})
			}
		}
	}
	return rs, nil
}

// MustRuleSet 同 NewRuleSet，出错时 panic（用于内置规则）
func MustRuleSet(categories []Category, whitelist []string, mode EligibilityMode) *RuleSet {
	rs, err := NewRuleSet(categories, whitelist, mode)
	if err != nil {
		panic(err)
	}
	return rs
}

var defaultRuleSet = MustRuleSet(DefaultCategories(), DefaultWhitelist(), EligibilityExact)

// DefaultRuleSet 内置规则表
func DefaultRuleSet() *RuleSet {
	return defaultRuleSet
}

// Rules 有序规则副本
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule{}, rs.rules...)
}

// Categories 类目副本
func (rs *RuleSet) Categories() []Category {
	out := make([]Category, len(rs.categories))
	for i, c := range rs.categories {
		c.Codes = append([]string{}, c.Codes...)
		c.Keywords = append([]string{}, c.Keywords...)
		out[i] = c
	}
	return out
}

// Whitelist 白名单副本
func (rs *RuleSet) Whitelist() []string {
	return append([]string{}, rs.whitelist...)
}

// Mode 白名单匹配方式
func (rs *RuleSet) Mode() EligibilityMode {
	return rs.mode
}

// ResolveRule 按顺序匹配规则，首个命中者生效
func (rs *RuleSet) ResolveRule(industryLabel, groupLabel string) Resolution {
	c := Classify(industryLabel, groupLabel)
	for i, r := range rs.rules {
		if r.Matches(c) {
			return Resolution{Coefficient: r.Multiplier, Category: r.Category, RuleIndex: i}
		}
	}
	return Resolution{Coefficient: FallbackCoefficient, RuleIndex: -1}
}

// Resolve 返回系数
func (rs *RuleSet) Resolve(industryLabel, groupLabel string) float64 {
	return rs.ResolveRule(industryLabel, groupLabel).Coefficient
}

// IsEligible 行业或商品组编码命中白名单即参与统计
func (rs *RuleSet) IsEligible(industryLabel, groupLabel string) bool {
	industryCode, _ := model.SplitLabel(industryLabel)
	groupCode, _ := model.SplitLabel(groupLabel)
	return rs.codeAllowed(industryCode) || rs.codeAllowed(groupCode)
}

func (rs *RuleSet) codeAllowed(code string) bool {
	if code == "" {
		return false
	}
	if rs.mode == EligibilityExact {
		_, ok := rs.whiteSet[code]
		return ok
	}
	for _, w := range rs.whitelist {
		if strings.HasPrefix(code, w) {
			return true
		}
	}
	return false
}

// Evaluate 评估单条记录（用于明细展示）
func (rs *RuleSet) Evaluate(rec *model.RawRecord) Evaluation {
	res := rs.ResolveRule(rec.IndustryLabel, rec.GroupLabel)
	return Evaluation{
		Eligible:         rs.IsEligible(rec.IndustryLabel, rec.GroupLabel),
		Coefficient:      res.Coefficient,
		Category:         res.Category,
		ConvertedRevenue: convert(rec.Revenue, res.Coefficient).String(),
	}
}

// ResolveCoefficient 使用内置规则表解析系数
func ResolveCoefficient(industryLabel, groupLabel string) float64 {
	return defaultRuleSet.Resolve(industryLabel, groupLabel)
}

// IsEligible 使用内置白名单判断是否参与统计
func IsEligible(industryLabel, groupLabel string) bool {
	return defaultRuleSet.IsEligible(industryLabel, groupLabel)
}

// FormatCoefficient 系数的百分比展示，如 5.45 → "545%"
func FormatCoefficient(coef float64) string {
	pct := math.Round(coef*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func cleanList(in []string, fn func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = fn(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
