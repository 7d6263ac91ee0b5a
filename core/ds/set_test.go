package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddContains(t *testing.T) {
	s := NewSet[string]()
	require.True(t, s.IsEmpty())

	s.Add("a")
	s.Add("b")
	s.Add("a") // duplicate is a no-op

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
}

func TestSet_OrderPreserved(t *testing.T) {
	s := NewSet("c", "a", "b")
	assert.Equal(t, []string{"c", "a", "b"}, s.Values())

	var visited []string
	s.ForEach(func(v string) { visited = append(visited, v) })
	assert.Equal(t, []string{"c", "a", "b"}, visited)
}

func TestSet_Intersect(t *testing.T) {
	a := NewSet(1, 2, 3, 4)
	b := NewSet(3, 4, 5)

	assert.Equal(t, []int{3, 4}, a.Intersect(b).Values())
	assert.True(t, a.ContainsAny(b))
	assert.False(t, NewSet(1, 2).ContainsAny(NewSet(3, 4)))
	assert.True(t, NewSet[int]().Intersect(a).IsEmpty())
}

func TestSet_Eq(t *testing.T) {
	assert.True(t, NewSet("a", "b").Eq(NewSet("b", "a")), "order is ignored")
	assert.False(t, NewSet("a").Eq(NewSet("a", "b")))
	assert.True(t, NewSet[string]().Eq(NewSet[string]()))
}

func TestSet_MergeClear(t *testing.T) {
	s := NewSet(1, 2)
	s.Merge(NewSet(2, 3))
	assert.Equal(t, []int{1, 2, 3}, s.Values())

	s.Clear()
	assert.True(t, s.IsEmpty())
	s.Add(9)
	assert.Equal(t, []int{9}, s.Values())
}

func TestSet_Pointers(t *testing.T) {
	type node struct{ name string }
	var (
		a = &node{"a"}
		b = &node{"b"}
	)
	s := NewSet(a)
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(b))
	assert.False(t, s.Contains(&node{"a"}), "identity, not value")
}
