package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sbvh/collegematch/internal/appctx"
	"github.com/sbvh/collegematch/internal/logctx"
)

var (
	cacheClear  bool
	cacheStatus bool
	cacheCheck  bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "inspect or invalidate derived caches",
	Long: `cache reports or clears the caches CacheLayer owns: the LLM verdict
cache and the review queue.

Examples:
  collegematch cache --status
  collegematch cache --check
  collegematch cache --clear`,
	RunE: runCache,
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "unconditionally clear every derived cache")
	cacheCmd.Flags().BoolVar(&cacheStatus, "status", false, "report the current master_version_hash")
	cacheCmd.Flags().BoolVar(&cacheCheck, "check", false, "check for a master_version_hash change and invalidate if found")
}

func runCache(cmd *cobra.Command, args []string) error {
	selected := 0
	for _, f := range []bool{cacheClear, cacheStatus, cacheCheck} {
		if f {
			selected++
		}
	}
	if selected != 1 {
		return invalidArgs("exactly one of --clear, --status, --check is required")
	}

	app, err := appctx.New(appctx.Options{ConfigPath: configPath, DBPath: dbPath}, logctx.Logger)
	if err != nil {
		return err
	}
	defer app.Close()

	switch {
	case cacheStatus:
		hash, err := app.Master.VersionHash()
		if err != nil {
			return err
		}
		pterm.Info.Printf("master_version_hash: %s\n", hash)
	case cacheCheck:
		result, err := app.Cache.CheckAndInvalidate()
		if err != nil {
			return err
		}
		if result.Changed {
			pterm.Warning.Printf("master_version_hash changed (%s -> %s); derived caches invalidated\n", result.OldHash, result.NewHash)
		} else {
			pterm.Success.Println("master_version_hash unchanged")
		}
	case cacheClear:
		if err := app.Cache.Clear(); err != nil {
			return err
		}
		pterm.Success.Println("derived caches cleared")
	}
	return nil
}
