package calculator

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"salespulse/internal/model"
)

type stringSet map[string]struct{}

func newStringSet(values []string) stringSet {
	if len(values) == 0 {
		return nil
	}
	set := make(stringSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// allows 空集合表示不限制
func (s stringSet) allows(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// predicate 单个过滤维度
type predicate func(*model.RawRecord) bool

// buildPredicates 每个生效的维度生成一个谓词；空维度不生成
func buildPredicates(c model.FilterCriteria) []predicate {
	var preds []predicate

	if set := newStringSet(c.Creators); set != nil {
		preds = append(preds, func(r *model.RawRecord) bool { return set.allows(r.Creator) })
	}
	if set := newStringSet(c.Statuses); set != nil {
		preds = append(preds, func(r *model.RawRecord) bool { return set.allows(r.Status) })
	}
	if set := newStringSet(c.ExportTypes); set != nil {
		preds = append(preds, func(r *model.RawRecord) bool { return set.allows(r.ExportType) })
	}
	if set := newStringSet(c.ReturnStatuses); set != nil {
		preds = append(preds, func(r *model.RawRecord) bool { return set.allows(r.ReturnStatus) })
	}
	if kw := foldText(c.Keyword); kw != "" {
		preds = append(preds, func(r *model.RawRecord) bool {
			return strings.Contains(foldText(r.ProductName), kw) || strings.Contains(foldText(r.OrderCode), kw)
		})
	}
	if c.DateRange != nil {
		dr := *c.DateRange
		preds = append(preds, func(r *model.RawRecord) bool {
			return r.TransactionDate != nil && dr.Contains(*r.TransactionDate)
		})
	}
	return preds
}

// Filter 返回满足所有生效维度的记录，保持原有顺序；不修改输入
func Filter(records []model.RawRecord, criteria model.FilterCriteria) []model.RawRecord {
	preds := buildPredicates(criteria)
	out := make([]model.RawRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		keep := true
		for _, p := range preds {
			if !p(rec) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, *rec)
		}
	}
	return out
}

// FilterOptionsOf 汇总记录中出现过的过滤项
func FilterOptionsOf(records []model.RawRecord) model.FilterOptions {
	creators := map[string]struct{}{}
	statuses := map[string]struct{}{}
	exportTypes := map[string]struct{}{}
	returnStatuses := map[string]struct{}{}
	for i := range records {
		r := &records[i]
		addNonEmpty(creators, r.Creator)
		addNonEmpty(statuses, r.Status)
		addNonEmpty(exportTypes, r.ExportType)
		addNonEmpty(returnStatuses, r.ReturnStatus)
	}
	return model.FilterOptions{
		Creators:       sortedKeys(creators),
		Statuses:       sortedKeys(statuses),
		ExportTypes:    sortedKeys(exportTypes),
		ReturnStatuses: sortedKeys(returnStatuses),
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if strings.TrimSpace(v) != "" {
		set[v] = struct{}{}
	}
}

// sortedKeys 按越南语排序规则排序
func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	collate.New(language.Vietnamese).SortStrings(out)
	return out
}
