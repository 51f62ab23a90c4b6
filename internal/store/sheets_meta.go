package store

import (
	"encoding/json"
	"fmt"

	"salespulse/internal/model"
)

// InsertSheetMeta 写入 Sheet 识别结果（用于追溯与容错）
func (s *Store) InsertSheetMeta(meta model.SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (
			import_log_id, sheet_name, confidence, resolved,
			total_rows, total_columns,
			columns_json, mapping_json,
			selected
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ImportLogID, meta.SheetName, meta.Confidence, meta.Resolved,
		meta.TotalRows, meta.TotalColumns,
		meta.ColumnsJSON, meta.MappingJSON,
		meta.Selected,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 查询某次导入的 Sheet 识别结果
func (s *Store) ListSheetMeta(importLogID string) ([]model.SheetMeta, error) {
	rows, err := s.db.Query(`
		SELECT import_log_id, sheet_name, confidence, resolved,
			total_rows, total_columns, columns_json, mapping_json, selected
		FROM sheets_meta WHERE import_log_id = ? ORDER BY id
	`, importLogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets_meta: %w", err)
	}
	defer rows.Close()

	metas := make([]model.SheetMeta, 0)
	for rows.Next() {
		var m model.SheetMeta
		if err := rows.Scan(
			&m.ImportLogID, &m.SheetName, &m.Confidence, &m.Resolved,
			&m.TotalRows, &m.TotalColumns, &m.ColumnsJSON, &m.MappingJSON, &m.Selected,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sheets_meta: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// BuildJSON 序列化为 JSON 文本；失败时返回 fallback
func BuildJSON(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}
