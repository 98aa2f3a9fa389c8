package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deslash/deslash/internal/pyparse"
)

// Edit replaces one source span with literal replacement text. A zero-width
// span is a pure insertion. Edits never overlap; the rewriter asserts this
// rather than trusting traversal order.
type Edit struct {
	Span pyparse.Span
	Text string

	// seq preserves discovery order among edits starting at the same
	// offset (wrapping inserts, the definition block).
	seq int
}

// BlockInsertion schedules the decorator definition block immediately
// before the first top-level entity that needs it. At most one exists per
// source unit.
type BlockInsertion struct {
	Offset uint32
	Text   string
}

// EditSet accumulates the non-overlapping edits discovered during one
// traversal and applies them against the original text in a single pass.
type EditSet struct {
	edits []Edit
	nseq  int
}

// Add records an edit in discovery order.
func (s *EditSet) Add(span pyparse.Span, text string) {
	s.edits = append(s.edits, Edit{Span: span, Text: text, seq: s.nseq})
	s.nseq++
}

// Len reports the number of recorded edits.
func (s *EditSet) Len() int { return len(s.edits) }

// Edits returns the edit set ordered by starting offset, for dry-run
// reporting.
func (s *EditSet) Edits() []Edit {
	out := make([]Edit, len(s.edits))
	copy(out, s.edits)
	sortEdits(out)
	return out
}

func sortEdits(edits []Edit) {
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		return edits[i].seq < edits[j].seq
	})
}

// Apply rewrites src, substituting each edit span with its replacement and
// copying everything else verbatim. The block, if scheduled, is spliced in
// ahead of any edit at the same offset. Every byte outside an edit span is
// reproduced exactly, original line separators included.
func (s *EditSet) Apply(src []byte, block *BlockInsertion) string {
	edits := make([]Edit, len(s.edits))
	copy(edits, s.edits)
	if block != nil {
		edits = append(edits, Edit{
			Span: pyparse.Span{Start: block.Offset, End: block.Offset},
			Text: block.Text,
			seq:  -1,
		})
	}
	sortEdits(edits)

	var b strings.Builder
	pos := uint32(0)
	for _, e := range edits {
		if e.Span.Start < pos || e.Span.End < e.Span.Start || int(e.Span.End) > len(src) {
			panic(InternalFault{Message: fmt.Sprintf("edit span [%d,%d) overlaps position %d or exceeds source length %d",
				e.Span.Start, e.Span.End, pos, len(src))})
		}
		b.Write(src[pos:e.Span.Start])
		b.WriteString(e.Text)
		pos = e.Span.End
	}
	b.Write(src[pos:])
	return b.String()
}
