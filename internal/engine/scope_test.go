package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cls      string
		ident    string
		expected string
	}{
		{"private name", "Cls", "__arg", "_Cls__arg"},
		{"single underscore untouched", "Cls", "_arg", "_arg"},
		{"public name untouched", "Cls", "arg", "arg"},
		{"dunder untouched", "Cls", "__init__", "__init__"},
		{"class leading underscores stripped", "_Cls", "__arg", "_Cls__arg"},
		{"many leading underscores stripped", "___Cls", "__arg", "_Cls__arg"},
		{"all-underscore class untouched", "___", "__arg", "__arg"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Mangle(tt.cls, tt.ident))
		})
	}
}

func TestScopeStackClassName(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	s.Enter(ScopeModule, "")
	s.Enter(ScopeClass, "Cls")
	s.Enter(ScopeLambda, "")

	cls, ok := s.ClassName(true)
	assert.True(t, ok)
	assert.Equal(t, "Cls", cls)

	_, ok = s.ClassName(false)
	assert.False(t, ok)

	assert.Equal(t, ScopeLambda, s.Current().Kind)
}

func TestScopeStackFunctionShadowsNothing(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	s.Enter(ScopeModule, "")
	s.Enter(ScopeClass, "Cls")
	s.Enter(ScopeFunction, "meth")

	// A function scope between class and use site does not hide the class.
	cls, ok := s.ClassName(false)
	assert.True(t, ok)
	assert.Equal(t, "Cls", cls)
}

func TestScopeStackExpansionQuote(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	s.Enter(ScopeModule, "")

	_, ok := s.ExpansionQuote()
	assert.False(t, ok)

	h := s.EnterExpansion('"')
	quote, ok := s.ExpansionQuote()
	assert.True(t, ok)
	assert.Equal(t, byte('"'), quote)

	s.Exit(h)
	_, ok = s.ExpansionQuote()
	assert.False(t, ok)
}

func TestScopeStackExitMismatchPanics(t *testing.T) {
	t.Parallel()
	s := newScopeStack()
	h := s.Enter(ScopeModule, "")
	s.Enter(ScopeFunction, "f")

	defer func() {
		r := recover()
		_, ok := r.(InternalFault)
		assert.True(t, ok, "expected InternalFault, got %v", r)
	}()
	s.Exit(h) // exits out of order
}
