package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipRows(t *testing.T) {
	pix := []byte{
		1, 1,
		2, 2,
		3, 3,
	}
	flipRows(pix, 2, 3)
	assert.Equal(t, []byte{3, 3, 2, 2, 1, 1}, pix)

	even := []byte{1, 2, 3, 4}
	flipRows(even, 2, 2)
	assert.Equal(t, []byte{3, 4, 1, 2}, even)
}
