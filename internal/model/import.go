package model

import "time"

// ImportStatus 导入状态
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusSuccess    ImportStatus = "success"
	ImportStatusWarning    ImportStatus = "warning" // 成功但存在缺失字段
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportLog 导入日志
type ImportLog struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	FileSize     int64        `json:"fileSize"`
	SheetName    string       `json:"sheetName"`
	TotalRows    int          `json:"totalRows"`
	ImportedRows int          `json:"importedRows"`
	ParseDefault int          `json:"parseDefaults"`
	Warnings     []string     `json:"warnings"`
	Status       ImportStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	StartedAt    time.Time    `json:"startedAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// SheetMeta 导入时每个 Sheet 的识别结果（用于追溯）
type SheetMeta struct {
	ImportLogID  string  `json:"importLogId"`
	SheetName    string  `json:"sheetName"`
	Confidence   float64 `json:"confidence"`
	Resolved     int     `json:"resolved"`
	TotalRows    int     `json:"totalRows"`
	TotalColumns int     `json:"totalColumns"`
	ColumnsJSON  string  `json:"columnsJson"`
	MappingJSON  string  `json:"mappingJson"`
	Selected     bool    `json:"selected"`
}
