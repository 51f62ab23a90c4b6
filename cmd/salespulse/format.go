package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"salespulse/internal/importer"
	"salespulse/internal/model"
	svcstore "salespulse/internal/service/store"
	"salespulse/internal/util"
)

// writeTextReport 以对齐表格输出汇总结果
func writeTextReport(w io.Writer, report *importer.ImportReport, info *svcstore.DatasetInfo, snap *model.StatisticsSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	if info != nil {
		p.linef("Nguồn: %s (sheet %s, %d dòng)\n", info.SourceName, info.SheetName, info.RowCount)
	}
	for _, warn := range report.Warnings {
		p.linef("Cảnh báo: %s\n", warn.Message)
	}
	if report.ParseDefaults > 0 {
		p.linef("Cảnh báo: %d ô không đọc được, đã lấy giá trị mặc định\n", report.ParseDefaults)
	}
	p.linef("\n")

	p.linef("Chỉ số\tGiá trị\t\n")
	p.linef("Số dòng\t%d\t\n", snap.RecordCount)
	p.linef("Số dòng hợp lệ\t%d\t\n", snap.EligibleCount)
	p.linef("Số lượng\t%s\t\n", util.FormatAmount(snap.TotalQuantity))
	p.linef("Doanh thu\t%s\t\n", util.FormatAmount(snap.TotalRevenue))
	p.linef("Doanh thu quy đổi\t%s\t\n", util.FormatAmount(snap.TotalConvertedRevenue))
	p.linef("Hiệu quả quy đổi\t%s\t\n", util.FormatPercent(snap.ConversionEfficiency))
	p.linef("Trả góp\t%s (%d đơn, %s)\t\n",
		util.FormatMoneyShort(snap.InstallmentRevenue), snap.InstallmentCount, util.FormatPercent(snap.InstallmentRate))
	p.linef("Quy đổi chờ xuất\t%s\t\n", util.FormatAmount(snap.PendingConvertedRevenue))
	p.linef("\t\t\n")

	p.linef("Ngành hàng / Nhóm\tSố lượng\tDoanh thu\tQuy đổi\tHệ số\tHiệu quả\t\n")
	for _, ind := range snap.Industries {
		p.linef("%s\t%s\t%s\t%s\t\t%s\t\n",
			ind.Name,
			util.FormatAmount(ind.Quantity),
			util.FormatAmount(ind.Revenue),
			util.FormatAmount(ind.ConvertedRevenue),
			util.FormatPercent(ind.Efficiency),
		)
		for _, g := range ind.Groups {
			p.linef("  %s\t%s\t%s\t%s\t%s\t%s\t\n",
				g.Name,
				util.FormatAmount(g.Quantity),
				util.FormatAmount(g.Revenue),
				util.FormatAmount(g.ConvertedRevenue),
				g.CoefficientPercent,
				util.FormatPercent(g.Efficiency),
			)
		}
	}
	p.linef("\t\t\t\t\t\t\n")

	p.linef("Nhân viên\tSố đơn\tDoanh thu\tQuy đổi\tBảo hiểm\tHiệu quả\t\n")
	for _, s := range snap.Staff {
		p.linef("%s\t%d\t%s\t%s\t%s\t%s\t\n",
			s.Creator,
			s.RecordCount,
			util.FormatAmount(s.Revenue),
			util.FormatAmount(s.ConvertedRevenue),
			util.FormatAmount(s.InsuranceRevenue),
			util.FormatPercent(s.Efficiency),
		)
	}

	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// printer 记录第一次写入错误
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
