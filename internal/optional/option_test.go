package optional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	var zero Option[string]
	assert.False(t, zero.IsPresent())

	v, ok := None[int]().Get()
	assert.False(t, ok)
	assert.Zero(t, v)

	s := Some("x")
	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	assert.Equal(t, "def", None[string]().OrElse("def"))
	assert.Equal(t, "x", s.OrElse("def"))
}

func TestFromPtr(t *testing.T) {
	assert.False(t, FromPtr[int](nil).IsPresent())

	n := 3
	o := FromPtr(&n)
	n = 4
	assert.Equal(t, 3, o.OrElse(0))
}
