package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseQueueFlushOrder(t *testing.T) {
	q := &ReleaseQueue{}
	var order []string
	q.Defer("a", func() error { order = append(order, "a"); return nil })
	q.Defer("nil", nil)
	q.Defer("b", func() error { order = append(order, "b"); return errors.New("busy") })
	q.Defer("c", func() error { order = append(order, "c"); return nil })
	assert.Equal(t, 3, q.Len())

	err := q.Flush()
	assert.EqualError(t, err, "release b: busy")
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, q.Len())
	assert.NoError(t, q.Flush())
}
