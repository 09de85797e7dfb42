package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeta(t *testing.T) {
	cases := []struct {
		total     int64
		limit     int
		wantPages int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 10, 10},
		{5, 0, 5},
		{5, -3, 5},
	}
	for _, tc := range cases {
		meta := NewMeta(1, tc.limit, tc.total)
		assert.Equal(t, tc.wantPages, meta.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}
