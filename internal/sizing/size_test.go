package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   int
		want   int
		wantOK bool
	}{
		{"zero", 0, 0, 0, true},
		{"offsets", 0x35C20, 0xA0, 0x35CC0, true},
		{"max", math.MaxInt, 0, math.MaxInt, true},
		{"overflow", math.MaxInt, 1, 0, false},
		{"negative", -1, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AddInt(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithin(t *testing.T) {
	t.Parallel()

	assert.True(t, Within(0, 8, 8))
	assert.True(t, Within(8, 0, 8))
	assert.False(t, Within(1, 8, 8))
	assert.False(t, Within(math.MaxInt, 1, math.MaxInt))
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	assert.True(t, Overlaps(0, 8, 4, 8))
	assert.True(t, Overlaps(4, 8, 0, 8))
	assert.False(t, Overlaps(0, 8, 8, 8), "adjacent ranges")
	assert.False(t, Overlaps(0, 0, 0, 8), "empty range")
}
