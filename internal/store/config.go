package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// 偏好设置键
const (
	ConfigKeyCriteria     = "criteria"
	ConfigKeyLastImportID = "last_import_id"
)

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// GetConfigJSON 读取 JSON 配置项；不存在时返回 false
func (s *Store) GetConfigJSON(key string, out any) (bool, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode config %s: %w", key, err)
	}
	return true, nil
}

// SetConfigJSON 以 JSON 保存配置项
func (s *Store) SetConfigJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode config %s: %w", key, err)
	}
	return s.SetConfig(key, string(b))
}
