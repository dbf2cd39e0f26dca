package regelum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_Ordering(t *testing.T) {
	a := Tag{T: 1, M: 0}
	b := Tag{T: 1, M: 1}
	c := Tag{T: 2, M: 0}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestTag_NextAndAdvance(t *testing.T) {
	g := ZeroTag
	assert.Equal(t, Tag{T: 0, M: 1}, g.Next())
	assert.Equal(t, Tag{T: 1, M: 0}, g.Advance())
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "(3,2)", Tag{T: 3, M: 2}.String())
}
