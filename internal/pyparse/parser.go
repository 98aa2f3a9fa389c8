// Package pyparse wraps the tree-sitter Python grammar behind the small
// surface the conversion engine needs: parsing with syntax-error reporting,
// preorder walks, and byte-span helpers against the original source.
//
// Tree-sitter keeps every node anchored to byte offsets in the source, so
// the source text itself is the single store of trivia (comments, blank
// lines, exact whitespace). Nothing is ever re-serialized from the tree;
// all output is produced by splicing spans of the original bytes.
package pyparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes the span covers.
func (s Span) Len() uint32 { return s.End - s.Start }

// Tree holds a parsed source unit. The Source slice must not be mutated
// while the tree is alive; node contents are slices into it.
type Tree struct {
	Source []byte
	tree   *sitter.Tree
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() { t.tree.Close() }

// SyntaxError reports the first invalid region of a source unit.
type SyntaxError struct {
	Line    int
	Column  int
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("invalid syntax at line %d, column %d", e.Line, e.Column)
	}
	return fmt.Sprintf("invalid syntax at line %d, column %d: %q", e.Line, e.Column, e.Snippet)
}

// Parse builds a full-fidelity CST for src. A grammar violation anywhere in
// the unit yields a *SyntaxError; there is no partial result.
func Parse(src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parser failure: %w", err)
	}

	root := tree.RootNode()
	if bad := firstErrorNode(root); bad != nil {
		point := bad.StartPoint()
		snippet := bad.Content(src)
		if len(snippet) > 40 {
			snippet = snippet[:40]
		}
		tree.Close()
		return nil, &SyntaxError{
			Line:    int(point.Row) + 1,
			Column:  int(point.Column) + 1,
			Snippet: snippet,
		}
	}

	return &Tree{Source: src, tree: tree}, nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	// HasError is set but no child carries it; report the node itself.
	return n
}

// Walk visits n and its descendants in preorder. Returning false from fn
// skips the node's children.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}

// LineStart returns the offset of the first byte of the line containing off.
func LineStart(src []byte, off uint32) uint32 {
	for off > 0 && src[off-1] != '\n' && src[off-1] != '\r' {
		off--
	}
	return off
}

// Position converts a byte offset to 1-based line and column.
func Position(src []byte, off uint32) (line, col int) {
	line, col = 1, 1
	for i := uint32(0); i < off && int(i) < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
