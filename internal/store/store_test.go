package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", DBFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImportLog_Lifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.CreateImportLog("sales.xlsx", 2048)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	log, err := s.GetImportLog(id)
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusProcessing, log.Status)
	assert.Equal(t, int64(2048), log.FileSize)
	assert.Nil(t, log.CompletedAt)
	assert.Empty(t, log.Warnings)

	log.SheetName = "Chi tiết"
	log.TotalRows = 10
	log.ImportedRows = 10
	log.ParseDefault = 2
	log.Warnings = []string{"Không tìm thấy cột cho trường bắt buộc \"group\""}
	log.Status = model.ImportStatusWarning
	require.NoError(t, s.FinishImportLog(log))

	got, err := s.GetImportLog(id)
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusWarning, got.Status)
	assert.Equal(t, "Chi tiết", got.SheetName)
	assert.Equal(t, 2, got.ParseDefault)
	assert.Equal(t, log.Warnings, got.Warnings)
	require.NotNil(t, got.CompletedAt)
}

func TestImportLog_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetImportLog("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.FinishImportLog(&model.ImportLog{ID: "missing", Status: model.ImportStatusFailed})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListImportLogs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ids := make([]string, 0, 3)
	for _, name := range []string{"a.xlsx", "b.xlsx", "c.csv"} {
		id, err := s.CreateImportLog(name, 1)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	logs, err := s.ListImportLogs(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, ids[2], logs[0].ID)
	assert.Equal(t, ids[1], logs[1].ID)

	logs, err = s.ListImportLogs(0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestSheetMeta(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	id, err := s.CreateImportLog("sales.xlsx", 1)
	require.NoError(t, err)

	require.NoError(t, s.InsertSheetMeta(model.SheetMeta{
		ImportLogID:  id,
		SheetName:    "Tổng hợp",
		Confidence:   0,
		TotalColumns: 2,
		ColumnsJSON:  BuildJSON([]string{"Tháng", "Tổng"}, "[]"),
		MappingJSON:  "{}",
	}))
	require.NoError(t, s.InsertSheetMeta(model.SheetMeta{
		ImportLogID: id,
		SheetName:   "Chi tiết",
		Confidence:  1,
		Resolved:    8,
		TotalRows:   120,
		ColumnsJSON: "[]",
		MappingJSON: "{}",
		Selected:    true,
	}))

	metas, err := s.ListSheetMeta(id)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "Tổng hợp", metas[0].SheetName)
	assert.Equal(t, `["Tháng","Tổng"]`, metas[0].ColumnsJSON)
	assert.False(t, metas[0].Selected)
	assert.True(t, metas[1].Selected)
	assert.Equal(t, 120, metas[1].TotalRows)

	// 外键约束
	err = s.InsertSheetMeta(model.SheetMeta{ImportLogID: "missing", SheetName: "x", ColumnsJSON: "[]", MappingJSON: "{}"})
	assert.Error(t, err)
}

func TestConfigJSON(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	var criteria model.FilterCriteria
	found, err := s.GetConfigJSON(ConfigKeyCriteria, &criteria)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetConfigJSON(ConfigKeyCriteria, model.FilterCriteria{Creators: []string{"An"}, Keyword: "sim"}))
	require.NoError(t, s.SetConfigJSON(ConfigKeyCriteria, model.FilterCriteria{Creators: []string{"Bình"}}))

	found, err = s.GetConfigJSON(ConfigKeyCriteria, &criteria)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Bình"}, criteria.Creators)
	assert.Equal(t, "", criteria.Keyword)

	require.NoError(t, s.SetConfig(ConfigKeyLastImportID, "abc"))
	v, err := s.GetConfig(ConfigKeyLastImportID)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
