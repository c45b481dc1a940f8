package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configSetup loads and validates configuration without opening any store.
// Used by commands that remove or migrate storage directly.
func configSetup(_ *cobra.Command, _ []string) error {
	return loadConfig()
}

// cacheCmd focused on trending cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the trending cache",
	Long: `Manage the cache that holds computed trending rankings.

Supported backends: JSON file (default), SQLite, MySQL, PostgreSQL, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached rankings

Examples:
  # Check cache status
  pulse cache status

  # Clear a MySQL cache (set connection string via env variable)
  PULSE_CACHE_BACKEND=mysql PULSE_CACHE_DB_CONNECT="..." pulse cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached trending rankings",
	Long: `Delete all cached rankings from the configured backend.

For JSON: Deletes the cache document in the state directory
For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect, cfg.StateDir); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache statistics and connection details",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetTrendingStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("trending cache is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// historyCmd focused on sample history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded samples and forecast runs",
	Long: `Manage the store that keeps metric samples and forecast runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  status  - Show sample and run counts
  export  - Write samples and runs to Parquet files
  clear   - Remove all history
  migrate - Apply or roll back schema migrations

Examples:
  # Export history for offline analysis
  pulse history export --output-file history

  # Migrate a PostgreSQL history store to the latest schema
  PULSE_HISTORY_BACKEND=postgresql PULSE_HISTORY_DB_CONNECT="..." pulse history migrate`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display sample and forecast run counts",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("history store is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export samples and forecast runs to Parquet files",
	Long: `Write the history to <output-file>.samples.parquet and
<output-file>.forecast_runs.parquet.

Examples:
  pulse history export --output-file pulse_history`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded samples and forecast runs",
	Long: `Delete all history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back history schema migrations",
	Long: `Run the embedded schema migrations against the history backend.

Examples:
  # Migrate to the latest version
  pulse history migrate

  # Roll back to version 1
  pulse history migrate --target-version 1`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		result, err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, target)
		if err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
		fmt.Println(result.String())
	},
}
