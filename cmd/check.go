package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deslash/deslash"
	"github.com/deslash/deslash/formatter"
)

// checkCmd: deslash check
var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Parse Python sources and report syntax errors without converting",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		results, err := deslash.CheckPaths(args)
		if err != nil {
			if errors.Is(err, deslash.ErrNoSources) {
				fmt.Print(formatter.Warning(err.Error()))
			} else {
				fmt.Print(formatter.Error(err))
			}
			os.Exit(1)
		}

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Print(formatter.Error(res.Err))
			}
		}
		fmt.Printf("%d files checked, %d with errors\n", len(results), failed)
		if failed > 0 {
			os.Exit(1)
		}
	},
}
