// Package detect implements the auto-detection the conversion pipeline
// relies on: line separators, indentation units, source encodings and
// Python file discovery.
package detect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Linesep returns the dominant line separator of src: CRLF, CR or LF.
// Ties and separator-free sources fall back to LF.
func Linesep(src []byte) string {
	crlf := bytes.Count(src, []byte("\r\n"))
	cr := bytes.Count(src, []byte("\r")) - crlf
	lf := bytes.Count(src, []byte("\n")) - crlf

	if crlf > lf && crlf > cr {
		return "\r\n"
	}
	if cr > lf && cr > crlf {
		return "\r"
	}
	return "\n"
}

// Indentation infers the indentation unit of src. Tab-indented files yield
// "\t"; otherwise the most common positive indentation step wins, with four
// spaces as the default.
func Indentation(src []byte) string {
	tabs := 0
	steps := map[int]int{}
	prev := 0
	for _, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lead := line[:len(line)-len(trimmed)]
		if strings.Contains(lead, "\t") {
			tabs++
			continue
		}
		if d := len(lead) - prev; d > 0 {
			steps[d]++
		}
		prev = len(lead)
	}
	if tabs > 0 && tabs >= len(steps) {
		return "\t"
	}

	best, bestCount := 4, 0
	keys := make([]int, 0, len(steps))
	for k := range steps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if steps[k] > bestCount {
			best, bestCount = k, steps[k]
		}
	}
	return strings.Repeat(" ", best)
}

// Files expands paths into the Python source files beneath them, sorted.
// Hidden directories are skipped; non-Python files given explicitly are
// ignored.
func Files(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if isPythonFile(path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(p)
			if fi.IsDir() {
				if strings.HasPrefix(base, ".") && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if isPythonFile(p) && !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isPythonFile(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".pyw":
		return true
	}
	return false
}

var codingCookie = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Encoding detects the declared encoding of raw Python source: a UTF-8 BOM
// wins, then a PEP 263 coding cookie in the first two lines, then plain
// UTF-8.
func Encoding(raw []byte) string {
	if bytes.HasPrefix(raw, utf8BOM) {
		return "utf-8-sig"
	}
	lines := bytes.SplitN(raw, []byte("\n"), 3)
	for i := 0; i < len(lines) && i < 2; i++ {
		if m := codingCookie.FindSubmatch(lines[i]); m != nil {
			return strings.ToLower(string(m[1]))
		}
	}
	return "utf-8"
}

// Decode converts raw source bytes to UTF-8 using its detected encoding,
// returning the text and the encoding name to use when writing back.
func Decode(raw []byte) ([]byte, string, error) {
	name := Encoding(raw)
	if name == "utf-8-sig" {
		return bytes.TrimPrefix(raw, utf8BOM), name, nil
	}
	enc, err := lookup(name)
	if err != nil {
		return nil, "", err
	}
	if enc == nil {
		return raw, name, nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode source as %s: %w", name, err)
	}
	return decoded, name, nil
}

// Encode converts UTF-8 text back to the named encoding for writing.
func Encode(text []byte, name string) ([]byte, error) {
	if name == "utf-8-sig" {
		return append(append([]byte(nil), utf8BOM...), text...), nil
	}
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return text, nil
	}
	encoded, err := enc.NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("cannot encode source as %s: %w", name, err)
	}
	return encoded, nil
}

// lookup resolves an encoding name. A nil encoding means the text is
// already UTF-8 and needs no transformation.
func lookup(name string) (encoding.Encoding, error) {
	switch name {
	case "utf-8", "utf8", "ascii", "us-ascii":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown source encoding %q", name)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
