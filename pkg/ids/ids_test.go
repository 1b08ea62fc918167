package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []int64{5, 7, 1}, Unique([]int64{5, 7, 5, 1, 7}))
	assert.Equal(t, []int64{3}, Unique([]int64{3, 3, 3}))
	assert.Empty(t, Unique(nil))
}
