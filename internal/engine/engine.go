// Package engine implements the positional-only parameter backport: it
// walks a full-fidelity Python CST, tracks nested lexical context, locates
// `/` markers in function and lambda signatures, and produces an edited
// source string that is byte-identical to the original outside the
// rewritten spans.
package engine

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/deslash/deslash/internal/pyparse"
)

// Config carries the per-conversion knobs the engine needs. It is borrowed
// from the caller and never mutated.
type Config struct {
	// Indentation is the file's indentation unit, e.g. "    " or "\t".
	Indentation string
	// Linesep is the file's line separator, used for all generated lines.
	Linesep string
	// PEP8 pads the decorator definition block with blank lines per PEP 8.
	PEP8 bool
	// Filename is attached to errors; diagnostics only.
	Filename string
	// Decorator is the identifier for the runtime-check decorator.
	Decorator string
	// Dismiss strips markers without generating any runtime check.
	Dismiss bool
	// MangleThroughLambda controls whether class-private mangling applies
	// to constructs nested inside lambdas within a class body.
	MangleThroughLambda bool
}

// Status is the terminal state of a per-file conversion.
type Status int

const (
	// StatusUnchanged means no positional-only construct was found; the
	// output is the input, byte for byte.
	StatusUnchanged Status = iota
	// StatusAssembled means the edit set was applied and the output
	// differs from the input exactly at the edit spans.
	StatusAssembled
	// StatusFailed means parsing or extraction failed; no partial output
	// exists.
	StatusFailed
)

// Result is the outcome of converting one source unit. Edits and Block are
// exposed so callers can report affected spans without writing files and
// verify idempotent block insertion across runs.
type Result struct {
	Status Status
	Output string
	Edits  []Edit
	Block  *BlockInsertion
}

// Convert rewrites every positional-only parameter construct out of src.
// Given the same (src, cfg) pair it always produces the same output.
func Convert(src []byte, cfg Config) (*Result, error) {
	tree, err := pyparse.Parse(src)
	if err != nil {
		var syn *pyparse.SyntaxError
		if errors.As(err, &syn) {
			return &Result{Status: StatusFailed}, &ConversionError{
				Kind:     ParseFailure,
				Filename: cfg.Filename,
				Line:     syn.Line,
				Column:   syn.Column,
				Message:  syn.Error(),
			}
		}
		return &Result{Status: StatusFailed}, err
	}
	defer tree.Close()

	c := &converter{src: src, cfg: cfg, scopes: newScopeStack()}
	h := c.scopes.Enter(ScopeModule, "")
	cerr := c.walk(tree.Root())
	c.scopes.Exit(h)
	if cerr != nil {
		cerr.Filename = cfg.Filename
		return &Result{Status: StatusFailed}, cerr
	}

	if c.edits.Len() == 0 {
		return &Result{Status: StatusUnchanged, Output: string(src)}, nil
	}
	return &Result{
		Status: StatusAssembled,
		Output: c.edits.Apply(src, c.block),
		Edits:  c.edits.Edits(),
		Block:  c.block,
	}, nil
}

// converter holds the transient state of one traversal: the scope stack,
// the accumulated edit set, and the at-most-one block insertion.
type converter struct {
	src    []byte
	cfg    Config
	scopes *scopeStack
	edits  EditSet
	block  *BlockInsertion
}

func (c *converter) walk(n *sitter.Node) *ConversionError {
	switch n.Type() {
	case "function_definition":
		return c.funcdef(n)
	case "lambda":
		return c.lambdef(n)
	case "class_definition":
		return c.classdef(n)
	case "call":
		if quote, ok := expansionQuote(n, c.src); ok {
			return c.expansionCall(n, quote)
		}
	}
	return c.walkChildren(n)
}

func (c *converter) walkChildren(n *sitter.Node) *ConversionError {
	for i := 0; i < int(n.ChildCount()); i++ {
		if err := c.walk(n.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// funcdef handles def and async def. The decorator application line is
// rendered against the scope of the definition site, before the function's
// own scope is entered for its body.
func (c *converter) funcdef(n *sitter.Node) *ConversionError {
	params := n.ChildByFieldName("parameters")
	if params != nil {
		ext, err := extractParams(params, c.src)
		if err != nil {
			return err
		}
		if ext != nil {
			c.edits.Add(ext.Marker, "")
			if !c.cfg.Dismiss {
				lineStart := pyparse.LineStart(c.src, n.StartByte())
				indent := string(c.src[lineStart:n.StartByte()])
				app := indent + "@" + c.cfg.Decorator + "(" + c.names(ext.Names) + ")" + c.cfg.Linesep
				c.edits.Add(pyparse.Span{Start: lineStart, End: lineStart}, app)
				c.scheduleBlock(n)
			}
		}
		// Parameter defaults evaluate in the enclosing scope.
		if err := c.walkChildren(params); err != nil {
			return err
		}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		if err := c.walk(rt); err != nil {
			return err
		}
	}

	h := c.scopes.Enter(ScopeFunction, fieldContent(n, "name", c.src))
	defer c.scopes.Exit(h)
	if body := n.ChildByFieldName("body"); body != nil {
		return c.walk(body)
	}
	return nil
}

// lambdef handles lambda expressions. A decorator line cannot precede an
// expression, so the whole lambda span is wrapped in a call instead; the
// original lambda text is reused in place, keeping nested edits valid.
func (c *converter) lambdef(n *sitter.Node) *ConversionError {
	params := n.ChildByFieldName("parameters")
	if params != nil {
		ext, err := extractParams(params, c.src)
		if err != nil {
			return err
		}
		if ext != nil {
			c.edits.Add(ext.Marker, "")
			if !c.cfg.Dismiss {
				quote := defaultNameQuote
				if ambient, ok := c.scopes.ExpansionQuote(); ok {
					quote = wrapQuote(ambient)
				}
				open := c.cfg.Decorator + "(" + c.namesQuoted(ext.Names, quote) + ")("
				c.edits.Add(pyparse.Span{Start: n.StartByte(), End: n.StartByte()}, open)
				c.edits.Add(pyparse.Span{Start: n.EndByte(), End: n.EndByte()}, ")")
				c.scheduleBlock(n)
			}
		}
		if err := c.walkChildren(params); err != nil {
			return err
		}
	}

	h := c.scopes.Enter(ScopeLambda, "")
	defer c.scopes.Exit(h)
	if body := n.ChildByFieldName("body"); body != nil {
		return c.walk(body)
	}
	return nil
}

func (c *converter) classdef(n *sitter.Node) *ConversionError {
	// Superclass expressions evaluate outside the class scope.
	if args := n.ChildByFieldName("superclasses"); args != nil {
		if err := c.walkChildren(args); err != nil {
			return err
		}
	}

	h := c.scopes.Enter(ScopeClass, fieldContent(n, "name", c.src))
	defer c.scopes.Exit(h)
	if body := n.ChildByFieldName("body"); body != nil {
		return c.walk(body)
	}
	return nil
}

// expansionCall descends into the arguments of an expanded formatting call
// under a string-expansion scope. The receiver literal itself contains no
// rewritable constructs.
func (c *converter) expansionCall(n *sitter.Node, quote byte) *ConversionError {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	h := c.scopes.EnterExpansion(quote)
	defer c.scopes.Exit(h)
	return c.walkChildren(args)
}

func (c *converter) names(names []string) string {
	return c.namesQuoted(names, defaultNameQuote)
}

func (c *converter) namesQuoted(names []string, quote byte) string {
	cls, ok := c.scopes.ClassName(c.cfg.MangleThroughLambda)
	return renderNames(names, cls, ok, quote)
}

// scheduleBlock records the definition block insertion point: the line
// start of the top-level statement containing the first decorated entity.
// Idempotent; later call sites reuse the already-scheduled block.
func (c *converter) scheduleBlock(n *sitter.Node) {
	if c.block != nil {
		return
	}
	top := topLevelStatement(n)
	offset := pyparse.LineStart(c.src, top.StartByte())
	text := DefinitionBlock(c.cfg.Decorator, c.cfg.Indentation, c.cfg.Linesep)

	if c.cfg.PEP8 {
		if offset > 0 {
			want := 1
			if prev := top.PrevNamedSibling(); prev != nil && isDefinition(prev.Type()) {
				want = 2
			}
			if missing := want - blankLinesBefore(c.src, offset); missing > 0 {
				var pad string
				for i := 0; i < missing; i++ {
					pad += c.cfg.Linesep
				}
				text = pad + text
			}
		}
		// Two blank lines between the block and the entity it precedes.
		text += c.cfg.Linesep + c.cfg.Linesep
	}

	c.block = &BlockInsertion{Offset: offset, Text: text}
}

func topLevelStatement(n *sitter.Node) *sitter.Node {
	for n.Parent() != nil && n.Parent().Type() != "module" {
		n = n.Parent()
	}
	return n
}

func isDefinition(typ string) bool {
	switch typ {
	case "function_definition", "class_definition", "decorated_definition":
		return true
	}
	return false
}

// blankLinesBefore counts the empty lines immediately preceding a
// line-start offset.
func blankLinesBefore(src []byte, off uint32) int {
	newlines := 0
	i := off
	for i > 0 {
		switch src[i-1] {
		case '\n':
			newlines++
			i--
			if i > 0 && src[i-1] == '\r' {
				i--
			}
		case '\r':
			newlines++
			i--
		default:
			if newlines > 0 {
				return newlines - 1
			}
			return 0
		}
	}
	// Reached the start of the file; every separator seen bounds a blank
	// line.
	return newlines
}

func fieldContent(n *sitter.Node, field string, src []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(src)
}
