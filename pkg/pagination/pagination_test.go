package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults applied", 0, 0, 1, 20, 0},
		{"negative page clamped", -3, 10, 1, 10, 0},
		{"limit capped at max", 2, 9999, 2, 500, 500},
		{"valid values untouched", 3, 25, 3, 25, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, got.Page)
			assert.Equal(t, tc.wantLimit, got.Limit)
			assert.Equal(t, tc.wantOffset, got.Offset)
		})
	}
}

func TestPages(t *testing.T) {
	p := Params{Page: 1, Limit: 20}
	assert.EqualValues(t, 0, p.Pages(0))
	assert.EqualValues(t, 1, p.Pages(20))
	assert.EqualValues(t, 2, p.Pages(21))
	assert.EqualValues(t, 0, Params{}.Pages(100))
}
