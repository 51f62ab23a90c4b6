package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/importer"
	"salespulse/internal/model"
	"salespulse/internal/server"
)

const dayLayout = "2006-01-02"

// reportFlags report 子命令参数
type reportFlags struct {
	sheet          string
	creators       []string
	statuses       []string
	exportTypes    []string
	returnStatuses []string
	from           string
	to             string
	preset         string
	keyword        string
	format         string
	out            string
	detail         bool
}

func reportCmd(configPath *string) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Nhập một tệp bán hàng và in báo cáo tổng hợp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), cfg, args[0], f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.sheet, "sheet", "", "tên sheet (mặc định tự nhận diện)")
	flags.StringSliceVar(&f.creators, "creator", nil, "lọc theo người tạo")
	flags.StringSliceVar(&f.statuses, "status", nil, "lọc theo trạng thái")
	flags.StringSliceVar(&f.exportTypes, "export-type", nil, "lọc theo kiểu xuất")
	flags.StringSliceVar(&f.returnStatuses, "return-status", nil, "lọc theo trạng thái trả hàng")
	flags.StringVar(&f.from, "from", "", "từ ngày (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "đến ngày (YYYY-MM-DD)")
	flags.StringVar(&f.preset, "preset", "", "khoảng thời gian nhanh: today | this_week | this_month | last_month")
	flags.StringVar(&f.keyword, "keyword", "", "từ khóa tìm trong tên sản phẩm hoặc mã đơn")
	flags.StringVarP(&f.format, "format", "f", "text", "định dạng đầu ra: text | json")
	flags.StringVarP(&f.out, "out", "o", "", "ghi thêm báo cáo Excel (.xlsx)")
	flags.BoolVar(&f.detail, "detail", false, "kèm sheet chi tiết khi ghi Excel")
	return cmd
}

func runReport(ctx context.Context, cfg *config.AppConfig, path string, f reportFlags, w io.Writer) error {
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown output format: %s", f.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	criteria, err := f.criteria(cfg, time.Now())
	if err != nil {
		return err
	}

	pipeline, err := server.NewPipeline(cfg)
	if err != nil {
		return err
	}
	sheet := f.sheet
	if sheet == "" {
		sheet = cfg.Import.SheetName
	}
	coordinator := importer.NewCoordinator(nil, pipeline.Session, pipeline.Normalizer)
	report, err := coordinator.Run(ctx, importer.ImportOptions{
		FilePath:  path,
		Filename:  filepath.Base(path),
		SheetName: sheet,
	}, nil)
	if err != nil {
		return err
	}

	snap := pipeline.Session.SetCriteria(criteria)

	if f.out != "" {
		opts := exporter.ExportOptions{
			Snapshot:    snap,
			Criteria:    criteria,
			Dataset:     pipeline.Session.Store().Info(),
			Rules:       pipeline.Rules,
			GeneratedAt: time.Now(),
		}
		if f.detail {
			opts.Records = pipeline.Session.Filtered()
		}
		if err := exporter.NewExporter(cfg.Location()).WriteFile(f.out, opts); err != nil {
			return err
		}
	}

	if f.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{Import: report, Criteria: criteria, Snapshot: snap})
	}
	return writeTextReport(w, report, pipeline.Session.Store().Info(), snap)
}

// reportOutput json 输出结构
type reportOutput struct {
	Import   *importer.ImportReport    `json:"import"`
	Criteria model.FilterCriteria      `json:"criteria"`
	Snapshot *model.StatisticsSnapshot `json:"snapshot"`
}

// criteria 由命令行参数生成过滤条件；--from/--to 优先于 --preset
func (f reportFlags) criteria(cfg *config.AppConfig, now time.Time) (model.FilterCriteria, error) {
	loc := cfg.Location()
	c := model.FilterCriteria{
		Creators:       f.creators,
		Statuses:       f.statuses,
		ExportTypes:    f.exportTypes,
		ReturnStatuses: f.returnStatuses,
		Keyword:        f.keyword,
	}

	if f.from == "" && f.to == "" {
		dr, err := model.PresetRange(f.preset, now.In(loc), cfg.WeekStartDay())
		if err != nil {
			return c, err
		}
		c.DateRange = dr
		return c, nil
	}

	if f.from == "" || f.to == "" {
		return c, fmt.Errorf("--from and --to must be used together")
	}
	start, err := time.ParseInLocation(dayLayout, f.from, loc)
	if err != nil {
		return c, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation(dayLayout, f.to, loc)
	if err != nil {
		return c, fmt.Errorf("invalid --to: %w", err)
	}
	if end.Before(start) {
		return c, fmt.Errorf("--to is before --from")
	}
	c.DateRange = &model.DateRange{Start: start, End: end}
	return c, nil
}
