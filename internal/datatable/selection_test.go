package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSelectAllThenToggle(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]string{"a", "b", "c"})
	s.Toggle("b")

	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.True(t, s.IsSelected("a"))
	assert.False(t, s.IsSelected("b"))
	assert.Equal(t, 2, s.Len())
}

func TestSelectionToggleTwiceRestores(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]string{"x"})
	before := s.IDs()
	s.Toggle("y")
	s.Toggle("y")
	assert.Equal(t, before, s.IDs())
}

func TestSelectionDeselectAllAndRetain(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]string{"a", "b", "c"})
	s.Retain([]string{"c", "d"})
	assert.Equal(t, []string{"c"}, s.IDs())

	s.DeselectAll()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.IDs())
}

func TestSelectionZeroValueToggle(t *testing.T) {
	var s Selection
	s.Toggle("a")
	assert.True(t, s.IsSelected("a"))
}
