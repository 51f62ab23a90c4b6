package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salespulse/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// CreateImportLog 创建导入日志（状态 processing），返回日志 ID
func (s *Store) CreateImportLog(filename string, fileSize int64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO import_logs (id, filename, file_size, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, filename, fileSize, model.ImportStatusProcessing, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create import log: %w", err)
	}
	return id, nil
}

// FinishImportLog 完成导入日志更新
func (s *Store) FinishImportLog(log *model.ImportLog) error {
	warnings := log.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE import_logs SET
			sheet_name = ?,
			total_rows = ?,
			imported_rows = ?,
			parse_defaults = ?,
			warnings_json = ?,
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, log.SheetName, log.TotalRows, log.ImportedRows, log.ParseDefault,
		string(warningsJSON), log.Status, log.ErrorMessage, time.Now().UTC(), log.ID)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import log %s: %w", log.ID, ErrNotFound)
	}
	return nil
}

const importLogColumns = `id, filename, file_size, sheet_name, total_rows, imported_rows,
	parse_defaults, warnings_json, status, error_message, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImportLog(row rowScanner) (*model.ImportLog, error) {
	var (
		log          model.ImportLog
		warningsJSON string
		completedAt  sql.NullTime
	)
	if err := row.Scan(
		&log.ID, &log.Filename, &log.FileSize, &log.SheetName, &log.TotalRows, &log.ImportedRows,
		&log.ParseDefault, &warningsJSON, &log.Status, &log.ErrorMessage, &log.StartedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(warningsJSON), &log.Warnings); err != nil {
		log.Warnings = []string{}
	}
	if completedAt.Valid {
		t := completedAt.Time
		log.CompletedAt = &t
	}
	return &log, nil
}

// GetImportLog 查询单条导入日志
func (s *Store) GetImportLog(id string) (*model.ImportLog, error) {
	row := s.db.QueryRow(`SELECT `+importLogColumns+` FROM import_logs WHERE id = ?`, id)
	log, err := scanImportLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("import log %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get import log: %w", err)
	}
	return log, nil
}

// ListImportLogs 按开始时间倒序列出导入日志
func (s *Store) ListImportLogs(limit int) ([]*model.ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+importLogColumns+` FROM import_logs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*model.ImportLog, 0)
	for rows.Next() {
		log, err := scanImportLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
