package propset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetGetOrder(t *testing.T) {
	s := New()
	s.Set("svn:author", "alice")
	s.Set("svn:log", "hi")
	s.Set("svn:date", "2024-01-01T00:00:00.000000Z")
	assert.Equal(t, []string{"svn:author", "svn:log", "svn:date"}, s.Names())
	v, ok := s.Get("svn:log")
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestReinsertSameValueIsNoop(t *testing.T) {
	s := New()
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("a", "1")
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

func TestReinsertDifferentValueMovesToTail(t *testing.T) {
	s := New()
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("a", "3")
	assert.Equal(t, []string{"b", "a"}, s.Names())
	v, _ := s.Get("a")
	assert.Equal(t, "3", v)
}

func TestDeleteRemovesFromOrder(t *testing.T) {
	s := New()
	s.Set("a", "1")
	s.Set("b", "2")
	s.Delete("a")
	assert.Equal(t, []string{"b"}, s.Names())
	assert.False(t, s.Has("a"))
}

func TestTombstoneHiddenFromGetButPresentInEach(t *testing.T) {
	s := New()
	s.Set("a", "1")
	s.Tombstone("a")
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.True(t, s.Has("a"))
	var seen []Entry
	s.Each(func(e Entry) { seen = append(seen, e) })
	assert.Len(t, seen, 1)
	assert.True(t, seen[0].Deleted)
}

func TestAtPositional(t *testing.T) {
	s := New()
	s.Set("a", "1")
	s.Set("b", "2")
	assert.Equal(t, Entry{Name: "a", Value: "1"}, s.At(0))
	assert.Equal(t, Entry{Name: "b", Value: "2"}, s.At(1))
}

func TestCloneIndependent(t *testing.T) {
	s := New()
	s.Set("a", "1")
	c := s.Clone()
	c.Set("a", "2")
	v, _ := s.Get("a")
	assert.Equal(t, "1", v)
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
}
