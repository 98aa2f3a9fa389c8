package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deslash/deslash"
	"github.com/deslash/deslash/formatter"
)

var (
	simpleSource   string
	dryRun         bool
	quiet          bool
	concurrency    int
	noArchive      bool
	archivePath    string
	sourceVersion  string
	linesepSpec    string
	indentSpec     string
	noPEP8         bool
	dismissRuntime bool
	decoratorName  string
	checkAfter     bool
	watchMode      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert Python sources in place, archiving the originals first",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd)
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}

		if cmd.Flags().Changed("simple") {
			runSimple(cfg)
			return
		}

		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		if watchMode {
			runWatch(cfg, args)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		opts := deslash.BatchOptions{
			Concurrency: deslash.ConcurrencyOption(concurrency),
			DryRun:      dryRun,
			Quiet:       deslash.QuietOption(changedBool(cmd, "quiet", quiet)),
			DoArchive:   deslash.DoArchiveOption(changedBool(cmd, "no-archive", !noArchive)),
			ArchivePath: deslash.ArchivePathOption(archivePath),
			Check:       checkAfter,
		}
		results, err := deslash.ProcessPaths(ctx, logger, cfg, args, opts)
		if err != nil {
			if errors.Is(err, deslash.ErrNoSources) {
				fmt.Print(formatter.Warning(err.Error()))
			} else {
				fmt.Print(formatter.Error(err))
			}
			os.Exit(1)
		}

		reportResults(results, opts.Quiet)
	},
}

func init() {
	fl := convertCmd.Flags()
	fl.StringVar(&simpleSource, "simple", "", "Convert a single file (or stdin with '-') to stdout")
	fl.Lookup("simple").NoOptDefVal = "-"
	fl.BoolVarP(&dryRun, "dry-run", "n", false, "Report affected spans without writing anything")
	fl.BoolVarP(&quiet, "quiet", "q", false, "Run quietly (DESLASH_QUIET)")
	fl.IntVarP(&concurrency, "concurrency", "j", 0, "Number of concurrent workers, 0 = number of CPUs (DESLASH_CONCURRENCY)")
	fl.BoolVar(&noArchive, "no-archive", false, "Do not archive original files before conversion (DESLASH_DO_ARCHIVE)")
	fl.StringVar(&archivePath, "archive-path", "", "Directory archives are written to (DESLASH_ARCHIVE_PATH)")
	fl.StringVarP(&sourceVersion, "source-version", "s", "", "Grammar version sources are parsed as (DESLASH_SOURCE_VERSION)")
	fl.StringVar(&linesepSpec, "linesep", "", "Line separator for generated code: LF, CRLF or CR (DESLASH_LINESEP)")
	fl.StringVar(&indentSpec, "indentation", "", "Indentation unit for generated code, e.g. 4 or tab (DESLASH_INDENTATION)")
	fl.BoolVar(&noPEP8, "no-pep8", false, "Do not pad inserted code per PEP 8 (DESLASH_PEP8)")
	fl.BoolVar(&dismissRuntime, "dismiss-runtime", false, "Strip markers without inserting runtime checks (DESLASH_DISMISS)")
	fl.StringVar(&decoratorName, "decorator-name", "", "Identifier for the runtime-check decorator (DESLASH_DECORATOR)")
	fl.BoolVar(&checkAfter, "check", false, "Re-parse each converted file afterwards")
	fl.BoolVarP(&watchMode, "watch", "w", false, "Watch paths and re-convert files as they change")
}

// buildConfig layers command-line flags over the configuration file; the
// environment and defaults are resolved per file later.
func buildConfig(cmd *cobra.Command) (deslash.Config, error) {
	cfg, err := deslash.LoadConfig(cfgFile)
	if err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	if fl.Changed("source-version") {
		cfg.SourceVersion = sourceVersion
	}
	if fl.Changed("linesep") {
		cfg.Linesep = linesepSpec
	}
	if fl.Changed("indentation") {
		cfg.Indentation = indentSpec
	}
	if fl.Changed("no-pep8") {
		v := !noPEP8
		cfg.PEP8 = &v
	}
	if fl.Changed("dismiss-runtime") {
		cfg.Dismiss = &dismissRuntime
	}
	if fl.Changed("decorator-name") {
		cfg.Decorator = decoratorName
	}
	return cfg, nil
}

// changedBool returns the flag value only when it was set explicitly, so
// the environment can still take over otherwise.
func changedBool(cmd *cobra.Command, name string, value bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// runSimple converts one unit to stdout without touching any file.
func runSimple(cfg deslash.Config) {
	var (
		source []byte
		err    error
	)
	if simpleSource == "-" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		cfg.Filename = simpleSource
		source, err = os.ReadFile(simpleSource)
	}
	if err != nil {
		logger.Fatal("Failed to read source", zap.Error(err))
	}

	out, err := deslash.Convert(source, cfg)
	if err != nil {
		fmt.Fprint(os.Stderr, formatter.Error(err))
		os.Exit(1)
	}
	fmt.Print(out)
}

func runWatch(cfg deslash.Config, paths []string) {
	watcher, err := deslash.NewWatcher(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	if err := watcher.Add(paths); err != nil {
		logger.Fatal("Failed to watch paths", zap.Error(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		_ = watcher.Stop()
	}()

	watcher.Start()
}

func reportResults(results []deslash.FileResult, quiet bool) {
	converted, unchanged, failed := 0, 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Print(formatter.Error(res.Err))
		case res.Changed:
			converted++
		default:
			unchanged++
		}
	}
	if !quiet {
		fmt.Print(formatter.Summary(converted, unchanged, failed))
	}
	if failed > 0 {
		os.Exit(1)
	}
}
