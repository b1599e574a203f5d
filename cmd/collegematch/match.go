package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sbvh/collegematch/internal/appctx"
	"github.com/sbvh/collegematch/internal/logctx"
)

var (
	matchTable   string
	matchWorkers int
	matchLLM     string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "run the matching pipeline over a row-store table",
	Long: `match groups unmatched seat rows, runs the five-pass pipeline and the
Verifier against each group, and writes the accepted (or reviewed) result
back to the row store.

Examples:
  collegematch match --table seat_rows --workers 8
  collegematch match --table seat_rows --llm off`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchTable, "table", "seat_rows", "row-store table to match (only seat_rows is supported)")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 4, "number of concurrent group workers")
	matchCmd.Flags().StringVar(&matchLLM, "llm", "config", "override llm.enabled: on, off, or config")
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchTable != "seat_rows" {
		return invalidArgs("--table %q is not a recognized row-store table (only \"seat_rows\" is supported)", matchTable)
	}
	if matchWorkers <= 0 {
		return invalidArgs("--workers must be > 0, got %d", matchWorkers)
	}

	var llmOverride *bool
	switch matchLLM {
	case "on":
		v := true
		llmOverride = &v
	case "off":
		v := false
		llmOverride = &v
	case "config":
		// leave nil: defer to config.yaml's llm.enabled
	default:
		return invalidArgs("--llm must be one of on, off, config; got %q", matchLLM)
	}

	app, err := appctx.New(appctx.Options{ConfigPath: configPath, DBPath: dbPath, LLMOverride: llmOverride}, logctx.Logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spinner, _ := pterm.DefaultSpinner.Start("Matching seat rows...")
	stats, err := app.Orchestrator.Run(ctx, matchWorkers)
	if err != nil {
		spinner.Fail("Pipeline run aborted")
		return err
	}
	spinner.Success("Pipeline run complete")

	snap := stats.Snapshot()
	pterm.Info.Printf("Committed:        %d\n", snap.Committed)
	pterm.Info.Printf("Queued for review: %d\n", snap.QueuedForReview)
	for pass, count := range snap.PassHits {
		pterm.Printf("  %s: %d\n", pass, count)
	}
	return nil
}
