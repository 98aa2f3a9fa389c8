package engine

import "strings"

// definitionTemplate is the decorator's own source, line by line, with
// $deco and $indent substitution points. The rendered closure re-creates at
// runtime the keyword-argument check the newer grammar performs statically.
var definitionTemplate = []string{
	`def $deco(*names):`,
	`$indent"""Runtime checker for positional-only parameters."""`,
	`$indentimport functools`,
	`$indentdef caller(func):`,
	`$indent$indent@functools.wraps(func)`,
	`$indent$indentdef wrapper(*args, **kwargs):`,
	`$indent$indent$indentbanned = set(names).intersection(kwargs)`,
	`$indent$indent$indentif banned:`,
	`$indent$indent$indent$indentraise TypeError('%s() got some positional-only arguments passed as keyword arguments: %r' % (func.__name__, ', '.join(banned)))`,
	`$indent$indent$indentreturn func(*args, **kwargs)`,
	`$indent$indentreturn wrapper`,
	`$indentreturn caller`,
}

// DefinitionBlock renders the decorator definition for the given identifier
// and indentation unit. Lines are joined with linesep and the result ends
// with exactly one linesep.
func DefinitionBlock(decorator, indent, linesep string) string {
	r := strings.NewReplacer("$deco", decorator, "$indent", indent)
	var b strings.Builder
	for _, line := range definitionTemplate {
		b.WriteString(r.Replace(line))
		b.WriteString(linesep)
	}
	return b.String()
}

// defaultNameQuote is the delimiter used for quoted parameter names outside
// string-expansion contexts.
const defaultNameQuote = byte('\'')

// wrapQuote picks the delimiter for generated name literals inside a
// string expansion: the one the ambient literal does not use, so the
// generated text can never terminate the surrounding delimiter.
func wrapQuote(ambient byte) byte {
	if ambient == '\'' {
		return '"'
	}
	return '\''
}

// renderNames quotes the extracted names for a decorator call, applying
// class-private mangling when a class name is in scope. Declaration order
// is preserved.
func renderNames(names []string, clsName string, haveCls bool, quote byte) string {
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		if haveCls {
			name = Mangle(clsName, name)
		}
		b.WriteByte(quote)
		b.WriteString(name)
		b.WriteByte(quote)
	}
	return b.String()
}
