package calculator

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/model"
	"salespulse/internal/service/store"
)

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()

	s := NewSession(store.NewMemoryStore(), nil, AggregateOptions{})
	assert.Equal(t, StateIdle, s.State())
	require.NotNil(t, s.Snapshot())
	assert.Empty(t, s.Snapshot().Industries)

	// 空数据集不改变状态
	_, err := s.Load(nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
	assert.Equal(t, StateIdle, s.State())

	records := []model.RawRecord{
		rec("An", "664 - Sim", "", 100, 1),
		rec("Bình", "304 - Điện tử", "880 - Loa", 200, 1),
	}
	snap, err := s.Load(records, &store.DatasetInfo{SourceName: "sales.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assertDecimal(t, "300", snap.TotalRevenue)
	assert.Same(t, snap, s.Snapshot())

	snap = s.UpdateCriteria(func(c *model.FilterCriteria) { c.Creators = []string{"Bình"} })
	assertDecimal(t, "200", snap.TotalRevenue)
	assert.Equal(t, []string{"Bình"}, s.Criteria().Creators)
	assert.Len(t, s.Filtered(), 1)

	snap = s.ResetCriteria()
	assertDecimal(t, "300", snap.TotalRevenue)
	assert.True(t, s.Criteria().IsEmpty())

	assert.Equal(t, []string{"An", "Bình"}, s.FilterOptions().Creators)

	s.Clear()
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.Snapshot().TotalRevenue.IsZero())
	assert.Equal(t, 0, s.Store().Count())
}

func TestSession_CriteriaBeforeLoad(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil, AggregateOptions{})
	snap := s.SetCriteria(model.FilterCriteria{Creators: []string{"An"}})
	assert.True(t, snap.TotalRevenue.IsZero())
	assert.Equal(t, StateIdle, s.State())

	_, err := s.Load([]model.RawRecord{
		rec("An", "664 - Sim", "", 100, 1),
		rec("Bình", "664 - Sim", "", 200, 1),
	}, nil)
	require.NoError(t, err)
	// 载入前设置的过滤条件在载入后生效
	assertDecimal(t, "100", s.Snapshot().TotalRevenue)
}

func TestSession_LoadReplacesDataset(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil, AggregateOptions{})
	_, err := s.Load([]model.RawRecord{rec("An", "664 - Sim", "", 100, 1)}, nil)
	require.NoError(t, err)
	old := s.Snapshot()

	_, err = s.Load([]model.RawRecord{rec("An", "664 - Sim", "", 700, 1)}, nil)
	require.NoError(t, err)

	assertDecimal(t, "700", s.Snapshot().TotalRevenue)
	// 旧快照不被修改
	assertDecimal(t, "100", old.TotalRevenue)
}

func TestSession_ConcurrentUpdatesConverge(t *testing.T) {
	t.Parallel()

	records := make([]model.RawRecord, 0, 200)
	for i := 0; i < 200; i++ {
		creator := "An"
		if i%2 == 1 {
			creator = "Bình"
		}
		records = append(records, rec(creator, "664 - Sim", "", 10, 1))
	}

	s := NewSession(nil, nil, AggregateOptions{})
	_, err := s.Load(records, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetCriteria(model.FilterCriteria{Creators: []string{"An"}})
			} else {
				s.ResetCriteria()
			}
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	// 所有请求结束后必须回到 Ready
	assert.Equal(t, StateReady, s.State())

	// 最后一次发布的快照必须与当前过滤条件一致
	final := s.SetCriteria(s.Criteria())
	want := Recompute(records, s.Criteria(), nil, AggregateOptions{})
	assert.True(t, want.TotalRevenue.Equal(final.TotalRevenue))
	assert.Equal(t, StateReady, s.State())
}

func TestSession_SupersededRecomputeKeepsState(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil, AggregateOptions{})
	_, err := s.Load([]model.RawRecord{rec("An", "664 - Sim", "", 10, 1)}, nil)
	require.NoError(t, err)
	require.Equal(t, StateReady, s.State())

	// 旧请求取得第 1 代后，新请求完成了完整的重算
	stale := s.generation.Add(1)
	s.SetCriteria(model.FilterCriteria{Creators: []string{"An"}})
	require.Equal(t, StateReady, s.State())

	// 旧请求迟到时不得把状态改回 Recomputing
	assert.False(t, s.markRecomputing(stale))
	assert.Equal(t, StateReady, s.State())

	assert.True(t, s.markRecomputing(s.generation.Load()))
	assert.Equal(t, StateRecomputing, s.State())
}
