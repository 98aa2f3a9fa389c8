package engine

import sitter "github.com/smacker/go-tree-sitter"

// expansionQuote recognizes the shape the upstream f-string pass leaves
// behind — a call whose function is <string literal>.format — and reports
// the literal's delimiter. Constructs nested in the call's arguments are
// converted under a string-expansion scope carrying that delimiter.
func expansionQuote(call *sitter.Node, src []byte) (byte, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return 0, false
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil || attr.Content(src) != "format" {
		return 0, false
	}
	obj := fn.ChildByFieldName("object")
	if obj == nil {
		return 0, false
	}
	switch obj.Type() {
	case "string", "concatenated_string":
		return stringDelimiter(obj.Content(src)), true
	case "parenthesized_expression":
		if inner := firstNamedChild(obj); inner != nil &&
			(inner.Type() == "string" || inner.Type() == "concatenated_string") {
			return stringDelimiter(inner.Content(src)), true
		}
	}
	return 0, false
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// stringDelimiter returns the quote character of a literal, skipping any
// prefix letters (r, b, u and combinations, either case).
func stringDelimiter(lit string) byte {
	for i := 0; i < len(lit); i++ {
		if lit[i] == '\'' || lit[i] == '"' {
			return lit[i]
		}
	}
	return defaultNameQuote
}
