package exporter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/model"
	"salespulse/internal/service/calculator"
	svcstore "salespulse/internal/service/store"
	"salespulse/internal/util"
)

// Sheet 名称
const (
	SheetOverview   = "Tổng quan"
	SheetIndustries = "Ngành hàng"
	SheetStaff      = "Nhân viên"
	SheetDetail     = "Chi tiết"
	SheetRules      = "Hệ số"
)

const dateLayout = "02/01/2006"

// ErrNoSnapshot 没有可导出的快照
var ErrNoSnapshot = errors.New("no snapshot to export")

// Exporter 统计报表导出器：把快照写成多 Sheet 工作簿
type Exporter struct {
	loc *time.Location
}

// NewExporter 创建导出器；loc 为日期展示时区
func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{loc: loc}
}

// ExportOptions 导出选项
type ExportOptions struct {
	Snapshot *model.StatisticsSnapshot
	Criteria model.FilterCriteria
	Dataset  *svcstore.DatasetInfo
	Rules    *calculator.RuleSet
	// Records 非 nil 时输出明细 Sheet（应为过滤后的记录）
	Records     []model.RawRecord
	GeneratedAt time.Time
	Progress    func(ProgressEvent)
}

type styles struct {
	header int
	bold   int
	money  int
	ratio  int
}

// Export 生成工作簿；调用方负责 Close
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	if opts.Snapshot == nil {
		return nil, ErrNoSnapshot
	}
	if opts.Rules == nil {
		opts.Rules = calculator.DefaultRuleSet()
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		percent int
		stage   string
		fn      func() error
	}{
		{10, "Đang ghi tổng quan", func() error { return e.writeOverview(f, st, opts) }},
		{35, "Đang ghi ngành hàng", func() error { return e.writeIndustries(f, st, opts.Snapshot) }},
		{60, "Đang ghi nhân viên", func() error { return e.writeStaff(f, st, opts.Snapshot) }},
		{80, "Đang ghi chi tiết", func() error { return e.writeDetail(f, st, opts) }},
		{95, "Đang ghi bảng hệ số", func() error { return e.writeRules(f, st, opts.Rules) }},
	}
	for _, s := range steps {
		reportProgress(opts.Progress, s.percent, s.stage)
		if err := s.fn(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	// NewFile 自带的 Sheet1 已被重命名为总览
	f.SetActiveSheet(0)
	reportProgress(opts.Progress, 100, "Hoàn tất")
	return f, nil
}

// WriteFile 导出并保存到 path
func (e *Exporter) WriteFile(path string, opts ExportOptions) error {
	f, err := e.Export(opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return st, fmt.Errorf("failed to create header style: %w", err)
	}
	if st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 3}); err != nil {
		return st, fmt.Errorf("failed to create bold style: %w", err)
	}
	if st.money, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil {
		return st, fmt.Errorf("failed to create money style: %w", err)
	}
	if st.ratio, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return st, fmt.Errorf("failed to create ratio style: %w", err)
	}
	return st, nil
}

// sheetWriter 顺序写行的小工具
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) write(values ...any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", w.sheet, w.row, err)
	}
	return nil
}

// style 给当前行的 [fromCol, toCol] 设置样式
func (w *sheetWriter) style(fromCol, toCol, styleID int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, w.row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, w.row)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, from, to, styleID)
}

func money(d decimal.Decimal) float64 {
	return d.Round(0).InexactFloat64()
}

func (e *Exporter) writeOverview(f *excelize.File, st styles, opts ExportOptions) error {
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: SheetOverview}
	snap := opts.Snapshot

	if err := w.write("BÁO CÁO DOANH THU QUY ĐỔI"); err != nil {
		return err
	}
	if err := w.style(1, 1, st.bold); err != nil {
		return err
	}
	source, sheet := "", ""
	if opts.Dataset != nil {
		source, sheet = opts.Dataset.SourceName, opts.Dataset.SheetName
	}
	meta := [][2]string{
		{"Tệp nguồn", source},
		{"Sheet", sheet},
		{"Thời điểm xuất", opts.GeneratedAt.In(e.loc).Format("02/01/2006 15:04")},
		{"Bộ lọc", describeCriteria(opts.Criteria, e.loc)},
	}
	for _, m := range meta {
		if err := w.write(m[0], m[1]); err != nil {
			return err
		}
	}
	w.row++

	if err := w.write("Chỉ tiêu", "Giá trị", "Hiển thị"); err != nil {
		return err
	}
	if err := w.style(1, 3, st.header); err != nil {
		return err
	}
	type kpi struct {
		label   string
		value   any
		display string
		style   int
	}
	kpis := []kpi{
		{"Số dòng dữ liệu", snap.RecordCount, fmt.Sprint(snap.RecordCount), st.money},
		{"Số dòng được tính", snap.EligibleCount, fmt.Sprint(snap.EligibleCount), st.money},
		{"Tổng số lượng", money(snap.TotalQuantity), util.FormatAmount(snap.TotalQuantity), st.money},
		{"Tổng doanh thu", money(snap.TotalRevenue), util.FormatMoneyShort(snap.TotalRevenue), st.money},
		{"Doanh thu quy đổi", money(snap.TotalConvertedRevenue), util.FormatMoneyShort(snap.TotalConvertedRevenue), st.money},
		{"Hiệu quả quy đổi (%)", snap.ConversionEfficiency, util.FormatPercent(snap.ConversionEfficiency), st.ratio},
		{"Doanh thu trả góp", money(snap.InstallmentRevenue), util.FormatMoneyShort(snap.InstallmentRevenue), st.money},
		{"Số đơn trả góp", snap.InstallmentCount, fmt.Sprint(snap.InstallmentCount), st.money},
		{"Tỷ lệ trả góp (%)", snap.InstallmentRate, util.FormatPercent(snap.InstallmentRate), st.ratio},
		{"DT quy đổi chưa xuất", money(snap.PendingConvertedRevenue), util.FormatMoneyShort(snap.PendingConvertedRevenue), st.money},
	}
	for _, k := range kpis {
		if err := w.write(k.label, k.value, k.display); err != nil {
			return err
		}
		if err := w.style(2, 2, k.style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetOverview, "A", "A", 26); err != nil {
		return err
	}
	return f.SetColWidth(SheetOverview, "B", "C", 22)
}

func (e *Exporter) writeIndustries(f *excelize.File, st styles, snap *model.StatisticsSnapshot) error {
	if _, err := f.NewSheet(SheetIndustries); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: SheetIndustries}
	titles := []any{"Ngành hàng", "Nhóm hàng", "Số lượng", "Doanh thu", "Hệ số", "DT quy đổi", "Hiệu quả (%)", "Tỷ trọng (%)", "% mục tiêu"}
	if err := w.write(titles...); err != nil {
		return err
	}
	if err := w.style(1, len(titles), st.header); err != nil {
		return err
	}

	for _, ind := range snap.Industries {
		if err := w.write(ind.Key, "", money(ind.Quantity), money(ind.Revenue), "",
			money(ind.ConvertedRevenue), ind.Efficiency, ind.RevenueShare, ind.TargetPercent); err != nil {
			return err
		}
		if err := w.style(1, 6, st.bold); err != nil {
			return err
		}
		if err := w.style(7, 9, st.ratio); err != nil {
			return err
		}
		for _, g := range ind.Groups {
			if err := w.write("", g.Key, money(g.Quantity), money(g.Revenue), g.CoefficientPercent,
				money(g.ConvertedRevenue), g.Efficiency, "", g.TargetPercent); err != nil {
				return err
			}
			if err := w.style(3, 6, st.money); err != nil {
				return err
			}
			if err := w.style(7, 9, st.ratio); err != nil {
				return err
			}
		}
	}
	if err := f.SetPanes(SheetIndustries, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetIndustries, "A", "B", 28); err != nil {
		return err
	}
	return f.SetColWidth(SheetIndustries, "C", "I", 15)
}

func (e *Exporter) writeStaff(f *excelize.File, st styles, snap *model.StatisticsSnapshot) error {
	if _, err := f.NewSheet(SheetStaff); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: SheetStaff}
	titles := []any{"Nhân viên", "Số dòng", "Số lượng", "Doanh thu", "DT quy đổi", "DT bảo hiểm", "Hiệu quả (%)", "% mục tiêu"}
	if err := w.write(titles...); err != nil {
		return err
	}
	if err := w.style(1, len(titles), st.header); err != nil {
		return err
	}
	for _, s := range snap.Staff {
		if err := w.write(s.Creator, s.RecordCount, money(s.Quantity), money(s.Revenue),
			money(s.ConvertedRevenue), money(s.InsuranceRevenue), s.Efficiency, s.TargetPercent); err != nil {
			return err
		}
		if err := w.style(2, 6, st.money); err != nil {
			return err
		}
		if err := w.style(7, 8, st.ratio); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetStaff, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(SheetStaff, "B", "H", 15)
}

// writeDetail 明细行可能很多，使用流式写入
func (e *Exporter) writeDetail(f *excelize.File, st styles, opts ExportOptions) error {
	if opts.Records == nil {
		return nil
	}
	if _, err := f.NewSheet(SheetDetail); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetDetail)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetColWidth(3, 6, 24); err != nil {
		return err
	}

	titles := []string{"Dòng", "Ngày", "Người tạo", "Ngành hàng", "Nhóm hàng", "Sản phẩm", "Mã đơn",
		"Số lượng", "Doanh thu", "Trạng thái", "Trả góp", "Được tính", "Hệ số", "DT quy đổi"}
	header := make([]any, len(titles))
	for i, t := range titles {
		header[i] = excelize.Cell{StyleID: st.header, Value: t}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := range opts.Records {
		r := &opts.Records[i]
		ev := opts.Rules.Evaluate(r)
		date := ""
		if r.TransactionDate != nil {
			date = r.TransactionDate.In(e.loc).Format(dateLayout)
		}
		converted, _ := decimal.NewFromString(ev.ConvertedRevenue)
		row := []any{
			r.RowNo, date, r.Creator, r.IndustryLabel, r.GroupLabel, r.ProductName, r.OrderCode,
			excelize.Cell{StyleID: st.money, Value: money(r.Quantity)},
			excelize.Cell{StyleID: st.money, Value: money(r.Revenue)},
			r.Status, yesNo(r.Installment), yesNo(ev.Eligible),
			calculator.FormatCoefficient(ev.Coefficient),
			excelize.Cell{StyleID: st.money, Value: money(converted)},
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write detail row %d: %w", i+2, err)
		}
	}
	return sw.Flush()
}

func (e *Exporter) writeRules(f *excelize.File, st styles, rules *calculator.RuleSet) error {
	if _, err := f.NewSheet(SheetRules); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: SheetRules}
	titles := []any{"Danh mục", "Tên", "Mã", "Từ khóa", "Hệ số", "Hiển thị"}
	if err := w.write(titles...); err != nil {
		return err
	}
	if err := w.style(1, len(titles), st.header); err != nil {
		return err
	}
	for _, c := range rules.Categories() {
		if err := w.write(c.Key, c.Name, strings.Join(c.Codes, ", "), strings.Join(c.Keywords, ", "),
			c.Multiplier, calculator.FormatCoefficient(c.Multiplier)); err != nil {
			return err
		}
	}
	w.row++
	if err := w.write("Mã được tính", strings.Join(rules.Whitelist(), ", ")); err != nil {
		return err
	}
	if err := w.write("Cách so khớp", string(rules.Mode())); err != nil {
		return err
	}
	return f.SetColWidth(SheetRules, "A", "D", 20)
}

// describeCriteria 过滤条件的可读描述
func describeCriteria(c model.FilterCriteria, loc *time.Location) string {
	if c.IsEmpty() {
		return "Tất cả"
	}
	var parts []string
	add := func(label string, values []string) {
		if len(values) > 0 {
			parts = append(parts, label+": "+strings.Join(values, ", "))
		}
	}
	add("Người tạo", c.Creators)
	add("Trạng thái", c.Statuses)
	add("Loại YCX", c.ExportTypes)
	add("Trả hàng", c.ReturnStatuses)
	if c.DateRange != nil {
		parts = append(parts, fmt.Sprintf("Thời gian: %s - %s",
			c.DateRange.Start.In(loc).Format(dateLayout), c.DateRange.End.In(loc).Format(dateLayout)))
	}
	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		parts = append(parts, "Từ khóa: "+kw)
	}
	return strings.Join(parts, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Có"
	}
	return "Không"
}
