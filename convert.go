// Package deslash converts Python positional-only parameter syntax
// (PEP 570's `/` marker, Python 3.8+) back to code older interpreters can
// run. Markers are removed and, unless dismissed, a runtime-check decorator
// is applied so converted callables still reject keyword arguments for
// their positional-only names. Everything outside the rewritten spans is
// preserved byte for byte.
package deslash

import (
	"fmt"
	"os"

	"github.com/deslash/deslash/internal/detect"
	"github.com/deslash/deslash/internal/engine"
	"github.com/deslash/deslash/internal/pyparse"
)

// Convert rewrites positional-only parameter constructs out of source text
// and returns the converted unit. Sources without any marker come back
// unchanged.
func Convert(source []byte, cfg Config) (string, error) {
	resolved, err := cfg.resolve(source)
	if err != nil {
		return "", err
	}
	res, err := engine.Convert(source, resolved)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Edits reports the spans a conversion would rewrite, plus the pending
// decorator definition block, without assembling output. Used by dry runs.
func Edits(source []byte, cfg Config) ([]engine.Edit, *engine.BlockInsertion, error) {
	resolved, err := cfg.resolve(source)
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.Convert(source, resolved)
	if err != nil {
		return nil, nil, err
	}
	return res.Edits, res.Block, nil
}

// DefinitionBlock renders the runtime-check decorator definition the
// conversion would insert for source, one trailing line separator included.
func DefinitionBlock(source []byte, cfg Config) (string, error) {
	resolved, err := cfg.resolve(source)
	if err != nil {
		return "", err
	}
	return engine.DefinitionBlock(resolved.Decorator, resolved.Indentation, resolved.Linesep), nil
}

// ConvertFile converts path in place, preserving its encoding and file
// mode. It reports whether the file was rewritten.
func ConvertFile(path string, cfg Config) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, encName, err := detect.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Filename = path
	out, err := Convert(text, cfg)
	if err != nil {
		return false, err
	}
	if out == string(text) {
		return false, nil
	}

	encoded, err := detect.Encode([]byte(out), encName)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// CheckFile parses path and reports any syntax error as a conversion
// error, giving converted trees a post-hoc sanity pass.
func CheckFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, _, err := detect.Decode(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	tree, err := pyparse.Parse(text)
	if err != nil {
		if syn, ok := err.(*pyparse.SyntaxError); ok {
			return &engine.ConversionError{
				Kind:     engine.ParseFailure,
				Filename: path,
				Line:     syn.Line,
				Column:   syn.Column,
				Message:  syn.Error(),
			}
		}
		return err
	}
	tree.Close()
	return nil
}
