package deslash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deslash/deslash/formatter"
	"github.com/deslash/deslash/internal/archive"
	"github.com/deslash/deslash/internal/detect"
)

// ErrNoSources is returned when the given paths contain no Python files.
var ErrNoSources = errors.New("no Python source files found")

// BatchOptions configure one run over many files.
type BatchOptions struct {
	// Concurrency caps the worker pool; zero means one worker per CPU.
	Concurrency int
	// DryRun reports affected spans without writing anything.
	DryRun bool
	// Quiet suppresses the progress bar and the dry-run span report.
	Quiet bool
	// DoArchive snapshots the originals before converting.
	DoArchive bool
	// ArchivePath is the directory archives are written to.
	ArchivePath string
	// Check re-parses each converted file.
	Check bool
}

// FileResult is the outcome for a single file. A batch never fails fast;
// every file gets a result and failures are reported per file.
type FileResult struct {
	Path    string
	Changed bool
	Err     error
}

// ProcessPaths expands paths into Python source files and converts them
// concurrently. The archive, when enabled, is taken up front so a partial
// failure can still be rolled back with `deslash recover`.
func ProcessPaths(ctx context.Context, logger *zap.Logger, cfg Config, paths []string, opts BatchOptions) ([]FileResult, error) {
	files, err := detect.Files(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSources
	}

	if opts.DoArchive && !opts.DryRun {
		archivePath, err := archive.Create(files, opts.ArchivePath)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Debug("archived original files",
				zap.String("archive", archivePath),
				zap.Int("files", len(files)))
		}
	}

	var bar *progressbar.ProgressBar
	if !opts.Quiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Converting files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = processOne(ctx, file, cfg, opts)
			if results[i].Err != nil && logger != nil {
				logger.Error("failed to convert file",
					zap.String("file", file),
					zap.Error(results[i].Err))
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			// Per-file failures never abort the batch.
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	return results, nil
}

func processOne(ctx context.Context, file string, cfg Config, opts BatchOptions) FileResult {
	// Cancellation is file granular; files already converted stay converted.
	if err := ctx.Err(); err != nil {
		return FileResult{Path: file, Err: err}
	}
	if opts.DryRun {
		changed, err := dryRunFile(file, cfg, opts.Quiet)
		return FileResult{Path: file, Changed: changed, Err: err}
	}
	changed, err := ConvertFile(file, cfg)
	if err == nil && opts.Check {
		err = CheckFile(file)
	}
	return FileResult{Path: file, Changed: changed, Err: err}
}

func dryRunFile(file string, cfg Config, quiet bool) (bool, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", file, err)
	}
	text, _, err := detect.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", file, err)
	}
	cfg.Filename = file
	edits, block, err := Edits(text, cfg)
	if err != nil {
		return false, err
	}
	if len(edits) == 0 && block == nil {
		return false, nil
	}
	if !quiet {
		fmt.Print(formatter.EditReport(file, text, edits, block))
	}
	return true, nil
}

// CheckPaths parses every Python file beneath paths without converting.
func CheckPaths(paths []string) ([]FileResult, error) {
	files, err := detect.Files(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSources
	}
	results := make([]FileResult, len(files))
	for i, file := range files {
		results[i] = FileResult{Path: file, Err: CheckFile(file)}
	}
	return results, nil
}
