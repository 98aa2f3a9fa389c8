// Package formatter renders conversion reports for terminal output:
// dry-run span listings, conversion failures, and batch summaries.
package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/deslash/deslash/internal/engine"
	"github.com/deslash/deslash/internal/pyparse"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	detailStyle  = color.New(color.FgYellow)
	successStyle = color.New(color.FgGreen, color.Bold)
)

const previewLimit = 40

// EditReport lists the spans a conversion would rewrite in file, one line
// per edit, plus the pending decorator definition block.
func EditReport(file string, src []byte, edits []engine.Edit, block *engine.BlockInsertion) string {
	var sb strings.Builder
	sb.WriteString(fileStyle.Sprint(file))
	sb.WriteString("\n")

	if block != nil {
		line, col := pyparse.Position(src, block.Offset)
		sb.WriteString(fmt.Sprintf("  %s insert decorator definition block\n",
			lineStyle.Sprintf("%d:%d", line, col)))
	}
	for _, e := range edits {
		line, col := pyparse.Position(src, e.Span.Start)
		pos := lineStyle.Sprintf("%d:%d", line, col)
		switch {
		case e.Span.Len() == 0:
			sb.WriteString(fmt.Sprintf("  %s insert %s\n", pos, detailStyle.Sprintf("%q", preview(e.Text))))
		case e.Text == "":
			old := string(src[e.Span.Start:e.Span.End])
			sb.WriteString(fmt.Sprintf("  %s remove %s\n", pos, detailStyle.Sprintf("%q", preview(old))))
		default:
			old := string(src[e.Span.Start:e.Span.End])
			sb.WriteString(fmt.Sprintf("  %s replace %s with %s\n", pos,
				detailStyle.Sprintf("%q", preview(old)), detailStyle.Sprintf("%q", preview(e.Text))))
		}
	}
	return sb.String()
}

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}

// Error renders a conversion failure. Conversion errors carry their own
// position; anything else is printed as-is.
func Error(err error) string {
	var cerr *engine.ConversionError
	if !errors.As(err, &cerr) {
		return fmt.Sprintf("%s %v\n", errorStyle.Sprint("error:"), err)
	}

	var sb strings.Builder
	sb.WriteString(errorStyle.Sprint("error: "))
	sb.WriteString(cerr.Kind.String())
	sb.WriteString("\n")
	sb.WriteString(lineStyle.Sprint(" --> "))
	if cerr.Filename != "" {
		sb.WriteString(fileStyle.Sprintf("%s:%d:%d", cerr.Filename, cerr.Line, cerr.Column))
	} else {
		sb.WriteString(fileStyle.Sprintf("%d:%d", cerr.Line, cerr.Column))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  = %s\n", cerr.Message))
	return sb.String()
}

// Summary renders the one-line batch outcome.
func Summary(converted, unchanged, failed int) string {
	parts := []string{
		successStyle.Sprintf("%d converted", converted),
		fmt.Sprintf("%d unchanged", unchanged),
	}
	if failed > 0 {
		parts = append(parts, errorStyle.Sprintf("%d failed", failed))
	}
	return strings.Join(parts, ", ") + "\n"
}

// Warning renders a non-fatal notice.
func Warning(msg string) string {
	return fmt.Sprintf("%s %s\n", warningStyle.Sprint("warning:"), msg)
}
