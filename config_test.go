package deslash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinesep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", "", false},
		{"lf", "\n", false},
		{"LF", "\n", false},
		{"crlf", "\r\n", false},
		{"cr", "\r", false},
		{"\n", "\n", false},
		{"\r\n", "\r\n", false},
		{"nl", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLinesep(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestParseIndentation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", "", false},
		{"4", "    ", false},
		{"2", "  ", false},
		{"t", "\t", false},
		{"tab", "\t", false},
		{"\t", "\t", false},
		{"  ", "  ", false},
		{"0", "", true},
		{"-2", "", true},
		{"four", "", true},
	}
	for _, tt := range tests {
		got, err := ParseIndentation(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestParseBooleanState(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"1", "true", "YES", "on", " y "} {
		v := parseBooleanState(s)
		require.NotNil(t, v, "input %q", s)
		assert.True(t, *v, "input %q", s)
	}
	for _, s := range []string{"0", "false", "No", "off", "n"} {
		v := parseBooleanState(s)
		require.NotNil(t, v, "input %q", s)
		assert.False(t, *v, "input %q", s)
	}
	for _, s := range []string{"", "maybe", "2"} {
		assert.Nil(t, parseBooleanState(s), "input %q", s)
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Config{}.resolve([]byte("def f():\n\tpass\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.Indentation)
	assert.Equal(t, "\r\n", cfg.Linesep)
	assert.Equal(t, DefaultDecorator, cfg.Decorator)
	assert.True(t, cfg.PEP8)
	assert.False(t, cfg.Dismiss)
	assert.True(t, cfg.MangleThroughLambda)
}

func TestResolveExplicitOverridesEnvironment(t *testing.T) {
	t.Setenv("DESLASH_DECORATOR", "env_check")
	t.Setenv("DESLASH_LINESEP", "crlf")

	cfg, err := Config{Decorator: "explicit_check"}.resolve([]byte("x = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "explicit_check", cfg.Decorator)
	assert.Equal(t, "\r\n", cfg.Linesep)
}

func TestResolveEnvironmentBooleans(t *testing.T) {
	t.Setenv("DESLASH_DISMISS", "1")
	t.Setenv("DESLASH_PEP8", "false")

	cfg, err := Config{}.resolve([]byte("x = 1\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Dismiss)
	assert.False(t, cfg.PEP8)

	// Explicit values win over the environment.
	yes := true
	no := false
	cfg, err = Config{PEP8: &yes, Dismiss: &no}.resolve([]byte("x = 1\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Dismiss)
	assert.True(t, cfg.PEP8)
}

func TestResolveDecoratorValidation(t *testing.T) {
	_, err := Config{Decorator: "not an identifier"}.resolve([]byte("x = 1\n"))
	assert.Error(t, err)

	_, err = Config{Decorator: "__private"}.resolve([]byte("x = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double underscore")
}

func TestResolveSourceVersionValidation(t *testing.T) {
	_, err := Config{SourceVersion: "3.8"}.resolve([]byte("x = 1\n"))
	assert.NoError(t, err)

	_, err = Config{SourceVersion: "2.7"}.resolve([]byte("x = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source version")
}

func TestConcurrencyOption(t *testing.T) {
	t.Setenv("DESLASH_CONCURRENCY", "3")
	assert.Equal(t, 3, ConcurrencyOption(0))
	assert.Equal(t, 8, ConcurrencyOption(8))

	t.Setenv("DESLASH_CONCURRENCY", "bogus")
	assert.Equal(t, 0, ConcurrencyOption(0))
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decorator: my_check\npep8: false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "my_check", cfg.Decorator)
	require.NotNil(t, cfg.PEP8)
	assert.False(t, *cfg.PEP8)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decorator: [\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
