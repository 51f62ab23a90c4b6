package store

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/model"
)

func sampleRecords() []model.RawRecord {
	return []model.RawRecord{
		{RowNo: 1, Creator: "An", IndustryLabel: "664 - Sim", Revenue: decimal.NewFromInt(100)},
		{RowNo: 2, Creator: "Bình", IndustryLabel: "304 - Điện tử", Revenue: decimal.NewFromInt(200)},
	}
}

func TestMemoryStore_SetRecordsCopiesInput(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	in := sampleRecords()
	s.SetRecords(in, &DatasetInfo{ImportID: "imp-1", SourceName: "sales.xlsx"})

	in[0].Creator = "changed"
	require.Equal(t, 2, s.Count())
	assert.Equal(t, "An", s.Records()[0].Creator)

	info := s.Info()
	require.NotNil(t, info)
	assert.Equal(t, 2, info.RowCount)
	assert.Equal(t, "imp-1", info.ImportID)
}

func TestMemoryStore_CriteriaCopyOut(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.SetCriteria(model.FilterCriteria{Creators: []string{"An"}})

	c := s.Criteria()
	c.Creators[0] = "Bình"
	assert.Equal(t, []string{"An"}, s.Criteria().Creators)

	updated := s.UpdateCriteria(func(c *model.FilterCriteria) {
		c.Keyword = "sim"
	})
	assert.Equal(t, "sim", updated.Keyword)
	assert.Equal(t, []string{"An"}, updated.Creators)

	_, criteria := s.State()
	assert.Equal(t, "sim", criteria.Keyword)
}

func TestMemoryStore_Clear(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.SetRecords(sampleRecords(), nil)
	s.SetCriteria(model.FilterCriteria{Keyword: "x"})
	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Nil(t, s.Info())
	assert.True(t, s.Criteria().IsEmpty())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetRecords(sampleRecords(), nil)
		}()
		go func() {
			defer wg.Done()
			s.UpdateCriteria(func(c *model.FilterCriteria) { c.Keyword = "k" })
			_ = s.Records()
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, s.Count())
}
