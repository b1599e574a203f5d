// Command collegematch is the single CLI entry point (§6): match, cache,
// and reindex subcommands over one explicit appctx.Context per
// invocation. Cobra wiring and the verbosity-flag/logger-bootstrap
// pattern are carried over from cmd/qntx/main.go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbvh/collegematch/internal/logctx"
)

var (
	configPath string
	dbPath     string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "collegematch",
	Short: "Entity-resolution matcher for medical/dental/DNB seat rows",
	Long: `collegematch resolves raw seat-matrix rows against a canonical
college/course/state master catalogue.

Available commands:
  match    - run the matching pipeline over a row-store table
  cache    - inspect or invalidate derived caches
  reindex  - rebuild MasterIndex from the current master catalogue`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logctx.InitializeAtLevel(logctx.VerbosityToLevel(verbosity))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "collegematch.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "collegematch.db", "path to the SQLite database")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity (-v, -vv, -vvv)")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(serveMCPCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
