package deslash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deslash/deslash/internal/engine"
)

func TestConvertSource(t *testing.T) {
	src := []byte("def f(a, b, /, c):\n    return a + b + c\n")

	out, err := Convert(src, Config{})
	require.NoError(t, err)
	assert.Contains(t, out, "def "+DefaultDecorator+"(*names):")
	assert.Contains(t, out, "@"+DefaultDecorator+"('a', 'b')\ndef f(a, b, c):")
	assert.NotContains(t, out, "/")
}

func TestConvertSourceUnchanged(t *testing.T) {
	src := []byte("def f(a, b):\n    return a\n")

	out, err := Convert(src, Config{})
	require.NoError(t, err)
	assert.Equal(t, string(src), out)
}

func TestConvertReportsPosition(t *testing.T) {
	_, err := Convert([]byte("def f(:\n"), Config{Filename: "broken.py"})
	require.Error(t, err)

	cerr, ok := err.(*engine.ConversionError)
	require.True(t, ok)
	assert.Equal(t, "broken.py", cerr.Filename)
	assert.Equal(t, engine.ParseFailure, cerr.Kind)
}

func TestEditsReportsSpansWithoutAssembling(t *testing.T) {
	src := []byte("def f(a, /):\n    pass\n")

	edits, block, err := Edits(src, Config{})
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.NotEmpty(t, edits)

	for _, e := range edits {
		assert.LessOrEqual(t, int(e.Span.End), len(src))
	}
}

func TestDefinitionBlockEndsWithOneSeparator(t *testing.T) {
	block, err := DefinitionBlock([]byte("x = 1\n"), Config{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(block, "\n"))
	assert.False(t, strings.HasSuffix(block, "\n\n"))
	assert.True(t, strings.HasPrefix(block, "def "+DefaultDecorator+"(*names):"))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("def f(a, /):\n    pass\n"), 0o755))

	changed, err := ConvertFile(path, Config{})
	require.NoError(t, err)
	assert.True(t, changed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "@"+DefaultDecorator+"('a')")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Converted output is stable; a second pass leaves the file alone.
	changed, err = ConvertFile(path, Config{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestConvertFilePreservesEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.py")
	raw := []byte("# -*- coding: iso-8859-1 -*-\ndef f(caf\xe9, /):\n    pass\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	changed, err := ConvertFile(path, Config{})
	require.NoError(t, err)
	assert.True(t, changed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "def f(caf\xe9):")
	assert.Contains(t, string(content), "'caf\xe9'")
}

func TestConvertFileMissing(t *testing.T) {
	_, err := ConvertFile(filepath.Join(t.TempDir(), "nope.py"), Config{})
	assert.Error(t, err)
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.py")
	bad := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(good, []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("def f(:\n"), 0o644))

	assert.NoError(t, CheckFile(good))

	err := CheckFile(bad)
	require.Error(t, err)
	cerr, ok := err.(*engine.ConversionError)
	require.True(t, ok)
	assert.Equal(t, bad, cerr.Filename)
}
