package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deslash/deslash/internal/pyparse"
)

func TestEditSetApply(t *testing.T) {
	t.Parallel()
	src := []byte("def f(a, b, /, c):")

	var s EditSet
	s.Add(pyparse.Span{Start: 10, End: 13}, "") // ", /"
	out := s.Apply(src, nil)
	assert.Equal(t, "def f(a, b, c):", out)
}

func TestEditSetApplyDiscoveryOrderAtSameOffset(t *testing.T) {
	t.Parallel()
	src := []byte("lambda x: x")

	var s EditSet
	s.Add(pyparse.Span{Start: 0, End: 0}, "deco('x')(")
	s.Add(pyparse.Span{Start: 11, End: 11}, ")")
	out := s.Apply(src, nil)
	assert.Equal(t, "deco('x')(lambda x: x)", out)
}

func TestEditSetApplyBlockPrecedesEditsAtSameOffset(t *testing.T) {
	t.Parallel()
	src := []byte("def f(): pass")

	var s EditSet
	s.Add(pyparse.Span{Start: 0, End: 0}, "@deco()\n")
	out := s.Apply(src, &BlockInsertion{Offset: 0, Text: "def deco(): pass\n"})
	assert.Equal(t, "def deco(): pass\n@deco()\ndef f(): pass", out)
}

func TestEditSetApplyOverlapPanics(t *testing.T) {
	t.Parallel()
	src := []byte("0123456789")

	var s EditSet
	s.Add(pyparse.Span{Start: 2, End: 6}, "x")
	s.Add(pyparse.Span{Start: 4, End: 8}, "y")

	defer func() {
		r := recover()
		_, ok := r.(InternalFault)
		assert.True(t, ok, "expected InternalFault, got %v", r)
	}()
	s.Apply(src, nil)
}

func TestEditSetApplyOutOfRangePanics(t *testing.T) {
	t.Parallel()
	src := []byte("short")

	var s EditSet
	s.Add(pyparse.Span{Start: 2, End: 99}, "x")

	defer func() {
		r := recover()
		_, ok := r.(InternalFault)
		assert.True(t, ok, "expected InternalFault, got %v", r)
	}()
	s.Apply(src, nil)
}

func TestEditSetEditsSortedByOffset(t *testing.T) {
	t.Parallel()
	var s EditSet
	s.Add(pyparse.Span{Start: 9, End: 9}, "c")
	s.Add(pyparse.Span{Start: 1, End: 2}, "a")
	s.Add(pyparse.Span{Start: 5, End: 5}, "b")

	edits := s.Edits()
	assert.Equal(t, uint32(1), edits[0].Span.Start)
	assert.Equal(t, uint32(5), edits[1].Span.Start)
	assert.Equal(t, uint32(9), edits[2].Span.Start)
	assert.Equal(t, 3, s.Len())
}

func TestRenderNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "'a', 'b'", renderNames([]string{"a", "b"}, "", false, '\''))
	assert.Equal(t, `"a"`, renderNames([]string{"a"}, "", false, '"'))
	assert.Equal(t, "'self', '_Cls__arg'", renderNames([]string{"self", "__arg"}, "Cls", true, '\''))
	assert.Equal(t, "", renderNames(nil, "", false, '\''))
}

func TestWrapQuote(t *testing.T) {
	t.Parallel()
	assert.Equal(t, byte('"'), wrapQuote('\''))
	assert.Equal(t, byte('\''), wrapQuote('"'))
}
