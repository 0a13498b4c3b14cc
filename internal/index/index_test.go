package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocSetOperations(t *testing.T) {
	a := NewDocSet("1", "2", "3")
	b := NewDocSet("2", "3", "4")

	assert.Equal(t, []string{"1", "2", "3", "4"}, a.Union(b).IDs())
	assert.Equal(t, []string{"2", "3"}, a.Intersect(b).IDs())
	assert.Equal(t, []string{"1"}, a.Difference(b).IDs())
	assert.Equal(t, []string{"4"}, b.Difference(a).IDs())

	// Operations never mutate their operands.
	assert.Equal(t, []string{"1", "2", "3"}, a.IDs())
	assert.Equal(t, []string{"2", "3", "4"}, b.IDs())
}

func TestDocSetWithEmpty(t *testing.T) {
	a := NewDocSet("1", "2")
	empty := DocSet{}

	assert.True(t, a.Union(empty).Equal(a))
	assert.Empty(t, a.Intersect(empty))
	assert.True(t, a.Difference(empty).Equal(a))
	assert.Empty(t, empty.Difference(a))
}

func TestDocSetIDsNumericOrder(t *testing.T) {
	s := NewDocSet("10", "2", "1")
	assert.Equal(t, []string{"1", "2", "10"}, s.IDs())
}

func TestInvertedAdd(t *testing.T) {
	inv := NewInverted()
	inv.Add("apple", "1")
	inv.Add("Apple", "2")
	inv.Add("apple", "1")
	inv.Add("", "3")

	assert.Equal(t, 1, inv.TermCount())
	assert.Equal(t, []string{"1", "2"}, inv.Postings("apple").IDs())
	assert.Nil(t, inv.Postings("Apple"))
	assert.Nil(t, inv.Postings("missing"))
}

func TestInvertedEqual(t *testing.T) {
	a := NewInverted()
	a.Add("x", "1")
	a.Add("y", "2")

	b := NewInverted()
	b.Add("y", "2")
	b.Add("x", "1")

	assert.True(t, a.Equal(b))

	b.Add("x", "3")
	assert.False(t, a.Equal(b))
}
