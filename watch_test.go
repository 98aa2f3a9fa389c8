package deslash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherConvertsOnWrite(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewWatcher(Config{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, watcher.Add([]string{dir}))
	go watcher.Start()
	defer watcher.Stop()

	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("def f(a, /):\n    pass\n"), 0o644))

	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(content), "@"+DefaultDecorator+"('a')")
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewWatcher(Config{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, watcher.Add([]string{dir}))
	go watcher.Start()
	defer watcher.Stop()

	path := filepath.Join(dir, "notes.txt")
	original := "def f(a, /):\n    pass\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	time.Sleep(300 * time.Millisecond)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestWatcherAddMissingPath(t *testing.T) {
	watcher, err := NewWatcher(Config{}, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	err = watcher.Add([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
