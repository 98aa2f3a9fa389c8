package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deslash/deslash/internal/archive"
)

var (
	rmArchive bool
	pruneDir  bool
)

// recoverCmd: deslash recover
var recoverCmd = &cobra.Command{
	Use:   "recover [archive-file]",
	Short: "Restore original files from a conversion archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		archiveFile := args[0]
		restored, err := archive.Recover(archiveFile)
		if err != nil {
			logger.Fatal("Failed to recover archive", zap.Error(err))
		}
		for _, path := range restored {
			fmt.Printf("restored %s\n", path)
		}
		fmt.Printf("%d files restored\n", len(restored))

		if rmArchive || pruneDir {
			if err := os.Remove(archiveFile); err != nil {
				logger.Error("Failed to remove archive", zap.Error(err))
				return
			}
		}
		if pruneDir {
			// Only an emptied archive directory is removed.
			if err := os.Remove(filepath.Dir(archiveFile)); err != nil && !os.IsNotExist(err) {
				logger.Debug("Archive directory not pruned", zap.Error(err))
			}
		}
	},
}

func init() {
	recoverCmd.Flags().BoolVar(&rmArchive, "rm-archive", false, "Remove the archive file after recovery")
	recoverCmd.Flags().BoolVar(&pruneDir, "prune-dir", false, "Remove the archive file and its directory if emptied")
}
