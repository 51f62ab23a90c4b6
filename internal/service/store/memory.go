package store

import (
	"sync"
	"time"

	"salespulse/internal/model"
)

// DatasetInfo 当前数据集的来源信息
type DatasetInfo struct {
	ImportID   string    `json:"importId"`
	SourceName string    `json:"sourceName"`
	SheetName  string    `json:"sheetName"`
	LoadedAt   time.Time `json:"loadedAt"`
	RowCount   int       `json:"rowCount"`
}

// MemoryStore 内存数据存储：当前数据集与过滤条件
type MemoryStore struct {
	mu       sync.RWMutex
	records  []model.RawRecord
	criteria model.FilterCriteria
	info     *DatasetInfo
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetRecords 整体替换数据集（复制输入）
func (s *MemoryStore) SetRecords(records []model.RawRecord, info *DatasetInfo) {
	copied := make([]model.RawRecord, len(records))
	copy(copied, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
	if info != nil {
		i := *info
		i.RowCount = len(copied)
		s.info = &i
	} else {
		s.info = nil
	}
}

// Records 当前数据集；记录导入后不可变，调用方不得修改返回的切片
func (s *MemoryStore) Records() []model.RawRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Info 数据集来源信息；未加载时返回 nil
func (s *MemoryStore) Info() *DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil
	}
	i := *s.info
	return &i
}

// Count 记录数
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Criteria 当前过滤条件（副本）
func (s *MemoryStore) Criteria() model.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria.Clone()
}

// SetCriteria 设置过滤条件
func (s *MemoryStore) SetCriteria(c model.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c.Clone()
}

// UpdateCriteria 在写锁内修改过滤条件，返回修改后的副本
func (s *MemoryStore) UpdateCriteria(fn func(*model.FilterCriteria)) model.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.criteria.Clone()
	fn(&c)
	s.criteria = c
	return c.Clone()
}

// State 一致地读取数据集与过滤条件
func (s *MemoryStore) State() ([]model.RawRecord, model.FilterCriteria) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.criteria.Clone()
}

// Clear 清空数据集与过滤条件
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.criteria = model.FilterCriteria{}
	s.info = nil
}
