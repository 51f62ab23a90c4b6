package calculator

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"salespulse/internal/logger"
	"salespulse/internal/model"
	"salespulse/internal/service/store"
)

// ErrEmptyDataset 载入空数据集
var ErrEmptyDataset = errors.New("empty dataset")

// State 重算状态
type State string

const (
	StateIdle        State = "idle"        // 未载入数据
	StateReady       State = "ready"       // 快照与当前过滤条件一致
	StateRecomputing State = "recomputing" // 正在重算
)

// Recompute 过滤后聚合：(数据, 过滤条件) → 快照
func Recompute(records []model.RawRecord, criteria model.FilterCriteria, rules *RuleSet, opts AggregateOptions) *model.StatisticsSnapshot {
	return Aggregate(Filter(records, criteria), rules, opts)
}

// Session 持有当前数据集、过滤条件与最新快照
//
// 每次数据替换或过滤条件变化都会触发重算；新快照计算完成后原子替换，
// 被更新请求取代的重算结果直接丢弃。
type Session struct {
	store *store.MemoryStore
	rules *RuleSet
	opts  AggregateOptions

	publishMu  sync.Mutex
	generation atomic.Uint64
	snapshot   atomic.Pointer[model.StatisticsSnapshot]
	state      atomic.Value // State
}

// NewSession 创建会话；rules 为 nil 时使用内置规则表
func NewSession(st *store.MemoryStore, rules *RuleSet, opts AggregateOptions) *Session {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if rules == nil {
		rules = DefaultRuleSet()
	}
	s := &Session{
		store: st,
		rules: rules,
		opts:  opts.withDefaults(),
	}
	s.snapshot.Store(model.NewEmptySnapshot())
	s.state.Store(StateIdle)
	return s
}

// Rules 当前规则表
func (s *Session) Rules() *RuleSet {
	return s.rules
}

// Options 聚合选项
func (s *Session) Options() AggregateOptions {
	return s.opts
}

// Store 底层存储
func (s *Session) Store() *store.MemoryStore {
	return s.store
}

// State 当前状态
func (s *Session) State() State {
	return s.state.Load().(State)
}

// Snapshot 最新快照（不会为 nil）
func (s *Session) Snapshot() *model.StatisticsSnapshot {
	return s.snapshot.Load()
}

// Load 替换数据集并重算；空数据集返回 ErrEmptyDataset 且不改变当前状态
func (s *Session) Load(records []model.RawRecord, info *store.DatasetInfo) (*model.StatisticsSnapshot, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	s.store.SetRecords(records, info)
	return s.recompute("load"), nil
}

// Criteria 当前过滤条件
func (s *Session) Criteria() model.FilterCriteria {
	return s.store.Criteria()
}

// SetCriteria 替换过滤条件并重算
func (s *Session) SetCriteria(c model.FilterCriteria) *model.StatisticsSnapshot {
	s.store.SetCriteria(c)
	return s.recompute("criteria")
}

// UpdateCriteria 修改过滤条件并重算
func (s *Session) UpdateCriteria(fn func(*model.FilterCriteria)) *model.StatisticsSnapshot {
	s.store.UpdateCriteria(fn)
	return s.recompute("criteria")
}

// ResetCriteria 清空过滤条件并重算
func (s *Session) ResetCriteria() *model.StatisticsSnapshot {
	return s.SetCriteria(model.FilterCriteria{})
}

// Filtered 按当前过滤条件返回记录（包含不参与统计的记录，用于明细展示）
func (s *Session) Filtered() []model.RawRecord {
	records, criteria := s.store.State()
	return Filter(records, criteria)
}

// FilterOptions 当前数据集中的可选过滤项
func (s *Session) FilterOptions() model.FilterOptions {
	return FilterOptionsOf(s.store.Records())
}

// Clear 清空数据并回到 Idle
func (s *Session) Clear() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.generation.Add(1)
	s.store.Clear()
	s.snapshot.Store(model.NewEmptySnapshot())
	s.state.Store(StateIdle)
}

// recompute 计算并发布快照；若期间有更新的请求，本次结果被丢弃
func (s *Session) recompute(reason string) *model.StatisticsSnapshot {
	gen := s.generation.Add(1)
	records, criteria := s.store.State()
	if len(records) == 0 {
		// 无数据时过滤条件照常保存，快照保持为空
		return s.Snapshot()
	}
	s.markRecomputing(gen)

	started := time.Now()
	snap := Recompute(records, criteria, s.rules, s.opts)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if gen != s.generation.Load() {
		logger.L.Debug("recompute superseded", "reason", reason, "generation", gen)
		if s.store.Count() == 0 {
			s.state.Store(StateIdle)
		}
		return s.Snapshot()
	}
	s.snapshot.Store(snap)
	s.state.Store(StateReady)
	logger.L.Debug("recompute finished",
		"reason", reason,
		"generation", gen,
		"records", len(records),
		"eligible", snap.EligibleCount,
		"elapsed", time.Since(started),
	)
	return snap
}

// markRecomputing 仅当 gen 仍是最新一代时进入 Recomputing
func (s *Session) markRecomputing(gen uint64) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if gen != s.generation.Load() {
		return false
	}
	s.state.Store(StateRecomputing)
	return true
}
