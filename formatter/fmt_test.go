package formatter

import (
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/deslash/deslash/internal/engine"
	"github.com/deslash/deslash/internal/pyparse"
)

func init() {
	color.NoColor = true
}

func TestEditReport(t *testing.T) {
	t.Parallel()
	src := []byte("def f(a, b, /, c):\n    pass\n")
	edits := []engine.Edit{
		{Span: pyparse.Span{Start: 0, End: 0}, Text: "@check('a', 'b')\n"},
		{Span: pyparse.Span{Start: 10, End: 13}, Text: ""},
	}
	block := &engine.BlockInsertion{Offset: 0, Text: "def check(*names):\n"}

	out := EditReport("script.py", src, edits, block)
	assert.Contains(t, out, "script.py")
	assert.Contains(t, out, "insert decorator definition block")
	assert.Contains(t, out, `insert "@check('a', 'b')\n"`)
	assert.Contains(t, out, `remove ", /"`)
	assert.Contains(t, out, "1:11")
}

func TestErrorWithConversionError(t *testing.T) {
	t.Parallel()
	out := Error(&engine.ConversionError{
		Kind:     engine.ParseFailure,
		Filename: "broken.py",
		Line:     3,
		Column:   7,
		Message:  "invalid syntax",
	})
	assert.Contains(t, out, "error: parse failure")
	assert.Contains(t, out, "broken.py:3:7")
	assert.Contains(t, out, "invalid syntax")
}

func TestErrorWithPlainError(t *testing.T) {
	t.Parallel()
	out := Error(errors.New("boom"))
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "boom")
}

func TestSummary(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "3 converted, 2 unchanged\n", Summary(3, 2, 0))
	assert.Equal(t, "1 converted, 0 unchanged, 2 failed\n", Summary(1, 0, 2))
}

func TestWarning(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "warning: nothing to do\n", Warning("nothing to do"))
}
