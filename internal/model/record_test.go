package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawRecord_Keys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                      string
		rec                       RawRecord
		industry, group, creator string
	}{
		{
			name:     "空值取缺省键",
			rec:      RawRecord{},
			industry: DefaultIndustryKey, group: DefaultGroupKey, creator: DefaultCreatorKey,
		},
		{
			name:     "纯空白取缺省键",
			rec:      RawRecord{IndustryLabel: "  ", GroupLabel: "\t", Creator: " \n "},
			industry: DefaultIndustryKey, group: DefaultGroupKey, creator: DefaultCreatorKey,
		},
		{
			name:     "去除首尾空白",
			rec:      RawRecord{IndustryLabel: " 664 - Sim ", GroupLabel: "880 - Loa ", Creator: " An"},
			industry: "664 - Sim", group: "880 - Loa", creator: "An",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.industry, tt.rec.IndustryKey())
			assert.Equal(t, tt.group, tt.rec.GroupKey())
			assert.Equal(t, tt.creator, tt.rec.CreatorKey())
		})
	}
}
