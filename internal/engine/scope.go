package engine

import (
	"fmt"
	"strings"
)

// ScopeKind tags a lexical scope descriptor on the traversal stack.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeLambda
	// ScopeStringExpansion marks source that originated from an upstream
	// f-string-to-format-call expansion; constructs inside it are subject
	// to the ambient quoting convention recorded on the scope.
	ScopeStringExpansion
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	case ScopeStringExpansion:
		return "string-expansion"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// Scope is one lexical-scope descriptor. The parent pointer is a
// back-reference owned by the stack, never by the scope itself.
type Scope struct {
	Kind ScopeKind
	// Name is the class or function name; empty for module, lambda and
	// string-expansion scopes.
	Name string
	// Quote is the ambient string delimiter, set on string-expansion
	// scopes only.
	Quote byte

	parent *Scope
}

// Handle records the stack depth at enter time so the matching exit can be
// checked.
type Handle int

// scopeStack tracks nested lexical context during one traversal. Scopes
// nest strictly: exiting out of order is an internal fault.
type scopeStack struct {
	top   *Scope
	depth int
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

// Enter pushes a scope and returns the handle its exit must present.
func (s *scopeStack) Enter(kind ScopeKind, name string) Handle {
	s.top = &Scope{Kind: kind, Name: name, parent: s.top}
	s.depth++
	return Handle(s.depth)
}

// EnterExpansion pushes a string-expansion scope carrying the ambient
// delimiter of the expanded literal.
func (s *scopeStack) EnterExpansion(quote byte) Handle {
	h := s.Enter(ScopeStringExpansion, "")
	s.top.Quote = quote
	return h
}

// Exit pops the scope entered with h. Depth mismatch means the traversal
// lost track of nesting; that is never a user error.
func (s *scopeStack) Exit(h Handle) {
	if s.top == nil || s.depth != int(h) {
		panic(InternalFault{Message: fmt.Sprintf("scope exit at depth %d does not match enter at depth %d", s.depth, int(h))})
	}
	s.top = s.top.parent
	s.depth--
}

// Current returns the innermost scope, or nil before the module scope is
// entered.
func (s *scopeStack) Current() *Scope { return s.top }

// ClassName reports the nearest enclosing class name. Generated decorator
// calls are re-injected into the same scope as the declaration, so names
// they quote must resolve to the binding the class machinery produces.
// When throughLambda is false the search stops at the first lambda scope,
// making the mangling policy for class-nested lambdas explicit.
func (s *scopeStack) ClassName(throughLambda bool) (string, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		switch sc.Kind {
		case ScopeClass:
			return sc.Name, true
		case ScopeLambda:
			if !throughLambda {
				return "", false
			}
		}
	}
	return "", false
}

// ExpansionQuote reports the ambient delimiter of the nearest enclosing
// string-expansion scope, if any.
func (s *scopeStack) ExpansionQuote() (byte, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		if sc.Kind == ScopeStringExpansion {
			return sc.Quote, true
		}
	}
	return 0, false
}

// Mangle rewrites a class-private name the way the class machinery would:
// __name declared under class Cls binds as _Cls__name. Names with fewer
// than two leading underscores or two or more trailing underscores are
// returned unchanged, as is everything under a class whose name is all
// underscores.
func Mangle(clsName, name string) string {
	if !strings.HasPrefix(name, "__") || strings.HasSuffix(name, "__") {
		return name
	}
	stripped := strings.TrimLeft(clsName, "_")
	if stripped == "" {
		return name
	}
	return "_" + stripped + name
}
