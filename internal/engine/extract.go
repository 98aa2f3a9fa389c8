package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/deslash/deslash/internal/pyparse"
)

// Extraction records one positional-only marker found in a parameter list:
// the span whose deletion closes the gap grammatically, and the parameter
// names declared before the marker, in order.
type Extraction struct {
	// Marker covers the slash and the separator run back to the end of
	// the last preceding parameter, so deletion leaves the remaining
	// separators intact.
	Marker pyparse.Span
	Names  []string
}

// parameterTypes are the CST node types that declare a parameter name.
var parameterTypes = map[string]bool{
	"identifier":              true,
	"typed_parameter":         true,
	"default_parameter":       true,
	"typed_default_parameter": true,
}

// extractParams scans a parameters or lambda_parameters node for the
// positional-only marker. It returns nil with no error for the common case
// of a signature without one.
func extractParams(list *sitter.Node, src []byte) (*Extraction, *ConversionError) {
	var (
		names   []string
		prevEnd uint32
		found   *Extraction
	)

	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(i)
		typ := child.Type()

		if typ == "positional_separator" || typ == "/" {
			if found != nil || len(names) == 0 {
				msg := "positional-only marker with no preceding parameters"
				if found != nil {
					msg = "multiple positional-only markers in one parameter list"
				}
				line, col := position(child)
				return nil, &ConversionError{
					Kind:    MalformedConstruct,
					Line:    line,
					Column:  col,
					Message: msg,
				}
			}
			found = &Extraction{
				Marker: pyparse.Span{Start: prevEnd, End: child.EndByte()},
				Names:  append([]string(nil), names...),
			}
			continue
		}

		if parameterTypes[typ] {
			if name, ok := parameterName(child, src); ok && found == nil {
				names = append(names, name)
			}
			prevEnd = child.EndByte()
		}
	}

	return found, nil
}

// parameterName digs the declared name out of a parameter node.
func parameterName(n *sitter.Node, src []byte) (string, bool) {
	if n.Type() == "identifier" {
		return n.Content(src), true
	}
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src), true
	}
	// typed_parameter has no name field; its first named child is the
	// declaring identifier.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "identifier" {
			return child.Content(src), true
		}
	}
	return "", false
}

func position(n *sitter.Node) (line, col int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}
