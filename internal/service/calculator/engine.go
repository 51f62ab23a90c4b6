package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"salespulse/internal/model"
)

// DefaultExportedStatus 已出库状态；其余状态的折算营收计为待出库
const DefaultExportedStatus = "Đã xuất"

// DefaultTargetShare 个人目标占总营收的比例
const DefaultTargetShare = 0.1

var hundred = decimal.NewFromInt(100)

// AggregateOptions 聚合选项
type AggregateOptions struct {
	ExportedStatus string
	TargetShare    float64
}

func (o AggregateOptions) withDefaults() AggregateOptions {
	if o.ExportedStatus == "" {
		o.ExportedStatus = DefaultExportedStatus
	}
	if o.TargetShare <= 0 {
		o.TargetShare = DefaultTargetShare
	}
	return o
}

type groupAcc struct {
	node model.GroupNode
}

type industryAcc struct {
	node   model.IndustryNode
	groups map[string]*groupAcc
}

// Aggregate 单次遍历合格记录，生成统计快照；不修改输入
func Aggregate(records []model.RawRecord, rules *RuleSet, opts AggregateOptions) *model.StatisticsSnapshot {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	opts = opts.withDefaults()

	snap := model.NewEmptySnapshot()
	snap.RecordCount = len(records)

	industries := make(map[string]*industryAcc)
	staff := make(map[string]*model.StaffAggregate)

	for i := range records {
		rec := &records[i]
		if !rules.IsEligible(rec.IndustryLabel, rec.GroupLabel) {
			continue
		}
		snap.EligibleCount++

		res := rules.ResolveRule(rec.IndustryLabel, rec.GroupLabel)
		converted := convert(rec.Revenue, res.Coefficient)

		snap.TotalRevenue = snap.TotalRevenue.Add(rec.Revenue)
		snap.TotalQuantity = snap.TotalQuantity.Add(rec.Quantity)
		snap.TotalConvertedRevenue = snap.TotalConvertedRevenue.Add(converted)

		if rec.Installment {
			snap.InstallmentRevenue = snap.InstallmentRevenue.Add(rec.Revenue)
			snap.InstallmentCount++
		}
		// 状态为空不计入待出库
		if rec.Status != "" && rec.Status != opts.ExportedStatus {
			snap.PendingConvertedRevenue = snap.PendingConvertedRevenue.Add(converted)
		}

		// 行业 → 商品组
		ikey := rec.IndustryKey()
		ind, ok := industries[ikey]
		if !ok {
			ind = &industryAcc{
				node:   model.IndustryNode{Key: ikey, Name: model.DisplayName(ikey)},
				groups: make(map[string]*groupAcc),
			}
			industries[ikey] = ind
		}
		ind.node.Quantity = ind.node.Quantity.Add(rec.Quantity)
		ind.node.Revenue = ind.node.Revenue.Add(rec.Revenue)
		ind.node.ConvertedRevenue = ind.node.ConvertedRevenue.Add(converted)

		gkey := rec.GroupKey()
		grp, ok := ind.groups[gkey]
		if !ok {
			grp = &groupAcc{node: model.GroupNode{
				Key:                gkey,
				Name:               model.DisplayName(gkey),
				Coefficient:        res.Coefficient,
				CoefficientPercent: FormatCoefficient(res.Coefficient),
			}}
			ind.groups[gkey] = grp
		}
		grp.node.Quantity = grp.node.Quantity.Add(rec.Quantity)
		grp.node.Revenue = grp.node.Revenue.Add(rec.Revenue)
		grp.node.ConvertedRevenue = grp.node.ConvertedRevenue.Add(converted)

		// 员工
		ckey := rec.CreatorKey()
		st, ok := staff[ckey]
		if !ok {
			st = &model.StaffAggregate{Creator: ckey}
			staff[ckey] = st
		}
		st.RecordCount++
		st.Quantity = st.Quantity.Add(rec.Quantity)
		st.Revenue = st.Revenue.Add(rec.Revenue)
		st.ConvertedRevenue = st.ConvertedRevenue.Add(converted)
		if res.Category == InsuranceCategory {
			st.InsuranceRevenue = st.InsuranceRevenue.Add(rec.Revenue)
		}
	}

	target := snap.TotalRevenue.Mul(decimal.NewFromFloat(opts.TargetShare))

	snap.ConversionEfficiency = efficiency(snap.TotalConvertedRevenue, snap.TotalRevenue)
	snap.InstallmentRate = percentOf(snap.InstallmentRevenue, snap.TotalRevenue)

	for _, ind := range industries {
		node := ind.node
		node.Efficiency = efficiency(node.ConvertedRevenue, node.Revenue)
		node.RevenueShare = percentOf(node.Revenue, snap.TotalRevenue)
		node.TargetPercent = percentOf(node.Revenue, target)
		node.Groups = make([]model.GroupNode, 0, len(ind.groups))
		for _, g := range ind.groups {
			gn := g.node
			gn.Efficiency = efficiency(gn.ConvertedRevenue, gn.Revenue)
			gn.TargetPercent = percentOf(gn.Revenue, target)
			node.Groups = append(node.Groups, gn)
		}
		sort.Slice(node.Groups, func(i, j int) bool {
			return byRevenueDesc(node.Groups[i].Revenue, node.Groups[j].Revenue, node.Groups[i].Key, node.Groups[j].Key)
		})
		snap.Industries = append(snap.Industries, node)
	}
	sort.Slice(snap.Industries, func(i, j int) bool {
		a, b := snap.Industries[i], snap.Industries[j]
		return byRevenueDesc(a.Revenue, b.Revenue, a.Key, b.Key)
	})

	for _, st := range staff {
		s := *st
		s.Efficiency = efficiency(s.ConvertedRevenue, s.Revenue)
		s.TargetPercent = percentOf(s.Revenue, target)
		snap.Staff = append(snap.Staff, s)
	}
	sort.Slice(snap.Staff, func(i, j int) bool {
		a, b := snap.Staff[i], snap.Staff[j]
		return byRevenueDesc(a.Revenue, b.Revenue, a.Creator, b.Creator)
	})

	return snap
}

// byRevenueDesc 营收降序，营收相同时按键升序
func byRevenueDesc(ra, rb decimal.Decimal, ka, kb string) bool {
	if c := ra.Cmp(rb); c != 0 {
		return c > 0
	}
	return ka < kb
}

// convert 折算营收 = 营收 × 系数
func convert(revenue decimal.Decimal, coef float64) decimal.Decimal {
	return revenue.Mul(decimal.NewFromFloat(coef))
}

// efficiency (折算 − 实际) / 实际 × 100；实际为 0 时返回 0
func efficiency(converted, revenue decimal.Decimal) float64 {
	if revenue.IsZero() {
		return 0
	}
	return converted.Sub(revenue).Div(revenue).Mul(hundred).Round(2).InexactFloat64()
}

// percentOf part / whole × 100；whole 为 0 时返回 0
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}
