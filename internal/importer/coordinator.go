package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salespulse/internal/logger"
	"salespulse/internal/model"
	"salespulse/internal/parser"
	"salespulse/internal/service/calculator"
	svcstore "salespulse/internal/service/store"
	"salespulse/internal/store"
)

var (
	// ErrNoDataSheet 没有任何 Sheet 被识别为交易明细表
	ErrNoDataSheet = errors.New("no transaction sheet recognized")
	// ErrSheetNotFound 指定的 Sheet 不存在
	ErrSheetNotFound = errors.New("sheet not found")
)

// 进度事件类型
const (
	EventStart   = "start"
	EventInfo    = "info"
	EventSheet   = "sheet"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// Coordinator 导入协调器：读取文件 → 识别 Sheet → 标准化 → 载入会话
type Coordinator struct {
	store      *store.Store // 为 nil 时不记录导入日志
	session    *calculator.Session
	normalizer *parser.Normalizer
	recognizer *parser.SheetRecognizer
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, session *calculator.Session, normalizer *parser.Normalizer) *Coordinator {
	if normalizer == nil {
		normalizer = parser.NewNormalizer(parser.NormalizeOptions{})
	}
	return &Coordinator{
		store:      st,
		session:    session,
		normalizer: normalizer,
		recognizer: parser.NewSheetRecognizer(normalizer.Mapper()),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath  string
	Filename  string // 显示名；为空时取 FilePath 的文件名
	SheetName string // 为空时自动识别
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ImportReport 导入报告
type ImportReport struct {
	ImportID      string                                        `json:"importId,omitempty"`
	Filename      string                                        `json:"filename"`
	SheetName     string                                        `json:"sheetName"`
	Sheets        []parser.SheetRecognitionResult               `json:"sheets"`
	TotalRows     int                                           `json:"totalRows"`
	ImportedRows  int                                           `json:"importedRows"`
	ParseDefaults int                                           `json:"parseDefaults"`
	Mappings      map[parser.CanonicalField]parser.FieldMapping `json:"mappings"`
	Warnings      []parser.MappingWarning                       `json:"warnings"`
	Status        model.ImportStatus                            `json:"status"`
	Duration      time.Duration                                 `json:"duration"`

	Snapshot *model.StatisticsSnapshot `json:"-"`
}

// Import 异步执行导入，返回进度通道；最后一个事件为 done 或 error
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		emit := func(e ProgressEvent) { c.sendProgress(ctx, progressChan, e) }

		report, err := c.Run(ctx, opts, emit)
		if err != nil {
			emit(ProgressEvent{
				Type:      EventError,
				Message:   errorMessage(err),
				Data:      report,
				Timestamp: time.Now(),
			})
			return
		}
		emit(ProgressEvent{
			Type:      EventDone,
			Message:   fmt.Sprintf("Đã nhập %d dòng từ sheet %s", report.ImportedRows, report.SheetName),
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// Run 同步执行导入；progress 可为 nil
//
// 失败时当前会话的数据保持不变，导入日志标记为 failed。
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions, progress func(ProgressEvent)) (*ImportReport, error) {
	started := time.Now()
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}
	report := &ImportReport{Filename: filename, Status: model.ImportStatusProcessing}

	progress(ProgressEvent{
		Type:      EventStart,
		Message:   "Bắt đầu nhập dữ liệu",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})

	var fileSize int64
	if st, err := os.Stat(opts.FilePath); err == nil {
		fileSize = st.Size()
	}
	if c.store != nil {
		id, err := c.store.CreateImportLog(filename, fileSize)
		if err != nil {
			return report, err
		}
		report.ImportID = id
	}

	err := c.run(ctx, opts, report, progress)
	report.Duration = time.Since(started)
	if err != nil {
		report.Status = model.ImportStatusFailed
	}
	c.finishLog(report, err)

	if err != nil {
		logger.L.Warn("import failed", "file", filename, "error", err)
		return report, err
	}
	logger.L.Info("import finished",
		"file", filename,
		"sheet", report.SheetName,
		"rows", report.ImportedRows,
		"parseDefaults", report.ParseDefaults,
		"warnings", len(report.Warnings),
		"elapsed", report.Duration,
	)
	return report, nil
}

func (c *Coordinator) run(ctx context.Context, opts ImportOptions, report *ImportReport, progress func(ProgressEvent)) error {
	tables, err := ReadWorkbook(opts.FilePath)
	if err != nil {
		return err
	}
	progress(ProgressEvent{
		Type:      EventInfo,
		Message:   fmt.Sprintf("Tìm thấy %d sheet", len(tables)),
		Data:      map[string]int{"totalSheets": len(tables)},
		Timestamp: time.Now(),
	})

	results := make([]parser.SheetRecognitionResult, len(tables))
	for i, t := range tables {
		results[i] = c.recognizer.Recognize(t.SheetName, t.Header)
		progress(ProgressEvent{
			Type:      EventSheet,
			Message:   fmt.Sprintf("Sheet %s: độ tin cậy %.0f%%", t.SheetName, results[i].Confidence*100),
			Data:      results[i],
			Timestamp: time.Now(),
		})
	}
	report.Sheets = results

	idx, err := selectSheet(opts.SheetName, results)
	if err != nil {
		c.recordSheets(report.ImportID, tables, results, -1, nil)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	table := tables[idx]
	res := c.normalizer.Normalize(table.Rows, table.Header)
	c.recordSheets(report.ImportID, tables, results, idx, res.Mappings)

	report.SheetName = table.SheetName
	report.TotalRows = len(table.Rows)
	report.ImportedRows = len(res.Records)
	report.ParseDefaults = res.ParseDefaults
	report.Mappings = res.Mappings
	report.Warnings = res.Warnings
	for _, w := range res.Warnings {
		progress(ProgressEvent{Type: EventWarning, Message: w.Message, Data: w, Timestamp: time.Now()})
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.session != nil {
		snap, err := c.session.Load(res.Records, &svcstore.DatasetInfo{
			ImportID:   report.ImportID,
			SourceName: report.Filename,
			SheetName:  table.SheetName,
			LoadedAt:   time.Now(),
		})
		if err != nil {
			return err
		}
		report.Snapshot = snap
	} else if len(res.Records) == 0 {
		return calculator.ErrEmptyDataset
	}

	report.Status = model.ImportStatusSuccess
	if res.HasWarnings() || res.ParseDefaults > 0 {
		report.Status = model.ImportStatusWarning
	}
	return nil
}

// selectSheet 指定 Sheet 时按名称查找，否则取置信度最高者
func selectSheet(name string, results []parser.SheetRecognitionResult) (int, error) {
	if name != "" {
		for i, r := range results {
			if r.SheetName == name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	best, ok := parser.Best(results)
	if !ok {
		return -1, ErrNoDataSheet
	}
	for i, r := range results {
		if r.SheetName == best.SheetName {
			return i, nil
		}
	}
	return -1, ErrNoDataSheet
}

// recordSheets 写入各 Sheet 的识别结果；写入失败只记日志
func (c *Coordinator) recordSheets(importID string, tables []Table, results []parser.SheetRecognitionResult, selected int, mappings map[parser.CanonicalField]parser.FieldMapping) {
	if c.store == nil || importID == "" {
		return
	}
	for i, t := range tables {
		meta := model.SheetMeta{
			ImportLogID:  importID,
			SheetName:    t.SheetName,
			Confidence:   results[i].Confidence,
			Resolved:     results[i].Resolved,
			TotalRows:    len(t.Rows),
			TotalColumns: len(t.Header),
			ColumnsJSON:  store.BuildJSON(t.Header, "[]"),
			MappingJSON:  "{}",
			Selected:     i == selected,
		}
		if i == selected {
			meta.MappingJSON = store.BuildJSON(mappings, "{}")
		}
		if err := c.store.InsertSheetMeta(meta); err != nil {
			logger.L.Warn("failed to record sheet meta", "sheet", t.SheetName, "error", err)
		}
	}
}

// finishLog 更新导入日志；成功时记录最近一次导入
func (c *Coordinator) finishLog(report *ImportReport, runErr error) {
	if c.store == nil || report.ImportID == "" {
		return
	}
	warnings := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		warnings = append(warnings, w.Message)
	}
	log := &model.ImportLog{
		ID:           report.ImportID,
		SheetName:    report.SheetName,
		TotalRows:    report.TotalRows,
		ImportedRows: report.ImportedRows,
		ParseDefault: report.ParseDefaults,
		Warnings:     warnings,
		Status:       report.Status,
	}
	if runErr != nil {
		log.ErrorMessage = runErr.Error()
	}
	if err := c.store.FinishImportLog(log); err != nil {
		logger.L.Warn("failed to finish import log", "id", report.ImportID, "error", err)
		return
	}
	if runErr == nil {
		if err := c.store.SetConfig(store.ConfigKeyLastImportID, report.ImportID); err != nil {
			logger.L.Warn("failed to save last import id", "error", err)
		}
	}
}

// sendProgress 发送进度事件；调用方取消后不再阻塞
func (c *Coordinator) sendProgress(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}

// errorMessage 面向用户的错误描述
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "Định dạng tệp không được hỗ trợ (chỉ nhận .xlsx hoặc .csv)"
	case errors.Is(err, ErrNoDataSheet):
		return "Không tìm thấy sheet chứa dữ liệu giao dịch"
	case errors.Is(err, ErrSheetNotFound):
		return "Không tìm thấy sheet được chỉ định"
	case errors.Is(err, calculator.ErrEmptyDataset):
		return "Tệp không có dòng dữ liệu nào"
	case errors.Is(err, context.Canceled):
		return "Đã hủy nhập dữ liệu"
	default:
		return fmt.Sprintf("Nhập dữ liệu thất bại: %v", err)
	}
}
