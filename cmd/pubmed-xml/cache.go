package main

import (
	"time"

	"github.com/matsen/pubmedxml/internal/cache"
	"github.com/matsen/pubmedxml/internal/config"
	"github.com/spf13/cobra"
)

// DefaultPruneAge is the default --older-than for cache prune.
const DefaultPruneAge = 30 * 24 * time.Hour

var pruneOlderThan time.Duration

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", DefaultPruneAge, "Remove records fetched longer ago than this")
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the local fetch cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location, record count and size",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached record",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached records older than --older-than",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

// openCache opens the configured cache or exits with a config error.
func openCache() *cache.DB {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	path := cfg.ResolvedCachePath()
	if path == "" {
		exitWithError(ExitConfigError, "no cache path: set cache_path or %s", config.EnvCache)
	}
	db, err := cache.Open(path)
	if err != nil {
		exitWithError(ExitConfigError, "opening cache: %v", err)
	}
	return db
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	db := openCache()
	defer db.Close()

	stats, err := db.Stats(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("path:    %s\n", stats.Path)
		outputHuman("records: %d\n", stats.Records)
		outputHuman("size:    %s\n", formatBytes(stats.Bytes))
	} else {
		outputJSON(stats)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	db := openCache()
	defer db.Close()

	n, err := db.Clear(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	reportRemoved("cleared", db, n)
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	db := openCache()
	defer db.Close()

	n, err := db.PruneBefore(cmd.Context(), time.Now().Add(-pruneOlderThan))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	reportRemoved("pruned", db, n)
	return nil
}

func reportRemoved(status string, db *cache.DB, n int) {
	if humanOutput {
		outputHuman("Removed %d cached records\n", n)
		return
	}
	outputJSON(StatusResponse{Status: status, Path: db.Path(), Removed: n})
}
