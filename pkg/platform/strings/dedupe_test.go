package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single broker", "localhost:9092", []string{"localhost:9092"}},
		{"trims and dedupes", " a:9092, b:9092 ,a:9092,, ", []string{"a:9092", "b:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestDedupeAndTrim_AllBlank(t *testing.T) {
	assert.Empty(t, DedupeAndTrim([]string{" ", ""}))
}
