package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "healx/pkg/domain"
)

func TestExtractString(t *testing.T) {
	list := []any{"batch_id", id.BatchID("B-1"), "location", "Delhi", "quantity", 10, "dangling"}

	assert.Equal(t, "B-1", ExtractString(list, "batch_id"))
	assert.Equal(t, "Delhi", ExtractString(list, "location"))
	assert.Empty(t, ExtractString(list, "quantity"))
	assert.Empty(t, ExtractString(list, "dangling"))
	assert.Empty(t, ExtractString(list, "missing"))
	assert.Empty(t, ExtractString(nil, "batch_id"))
}
