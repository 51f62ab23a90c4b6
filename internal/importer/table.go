package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("unsupported file format")

// 表头探测的最大行数
const headerScanRows = 20

// Table 单个 Sheet 的表格数据（表头 + 行）
type Table struct {
	SheetName string
	Header    []string
	Rows      []map[string]any
}

// ReadWorkbook 读取 xlsx/xlsm/csv 文件中的所有表格
func ReadWorkbook(path string) ([]Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		return readExcel(path)
	case ".csv", ".txt":
		t, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return []Table{t}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadTable 读取单个表格；sheet 为空时取第一个
func ReadTable(path, sheet string) (Table, error) {
	tables, err := ReadWorkbook(path)
	if err != nil {
		return Table{}, err
	}
	for _, t := range tables {
		if sheet == "" || t.SheetName == sheet {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

func readExcel(path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tables := make([]Table, 0, f.SheetCount)
	for _, sheet := range f.GetSheetList() {
		// 原始值：日期保留序列号，数值不带格式
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		tables = append(tables, buildTable(sheet, rows))
	}
	return tables, nil
}

func readCSV(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, rec)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return buildTable(name, rows), nil
}

// sniffDelimiter 根据首行判断分隔符
func sniffDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// buildTable 定位表头行并把后续行转成 表头→值 映射
//
// 表头为前若干行中第一个至少有两个非空单元格的行；空行跳过；
// 空表头命名为 "Cột N"，重复表头追加 _1、_2 后缀。
func buildTable(sheet string, rows [][]string) Table {
	t := Table{SheetName: sheet, Rows: []map[string]any{}}

	headerIdx := -1
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if nonEmptyCells(rows[i]) >= 2 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return t
	}

	t.Header = uniqueHeader(rows[headerIdx])
	for _, row := range rows[headerIdx+1:] {
		if nonEmptyCells(row) == 0 {
			continue
		}
		m := make(map[string]any, len(t.Header))
		for i, cell := range row {
			if i >= len(t.Header) {
				break
			}
			if cell == "" {
				continue
			}
			m[t.Header[i]] = cell
		}
		t.Rows = append(t.Rows, m)
	}
	return t
}

func uniqueHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Cột " + strconv.Itoa(i+1)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		header[i] = h
	}
	return header
}

func nonEmptyCells(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
