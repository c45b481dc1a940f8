// Package cmd defines the command-line interface for pulse.
package cmd

import (
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(breachCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the trending subcommands to the parent trending command
	trendingCmd.AddCommand(trendingRankCmd)
	trendingCmd.AddCommand(trendingRegisterCmd)
	trendingCmd.AddCommand(trendingImportCmd)
	trendingCmd.AddCommand(trendingDownloadCmd)
	trendingCmd.AddCommand(trendingRateCmd)
	trendingCmd.AddCommand(trendingCommentCmd)
	trendingCmd.AddCommand(trendingFeatureCmd)
	trendingCmd.AddCommand(trendingUnfeatureCmd)
	trendingCmd.AddCommand(trendingFeaturedCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet (forecast only)")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("state-dir", "", "Directory for persisted documents (default $HOME/.pulse)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.JSONBackend), "Trending cache backend: json or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the trending cache (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "Sample history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for the sample history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().Int("capacity", contract.DefaultCapacity, "Samples kept per metric")
	rootCmd.PersistentFlags().Int("season-length", contract.DefaultSeasonLength, "Cycle length in hours used by the seasonal method")
	rootCmd.PersistentFlags().String("trending-ttl", "60m", "How long a trending ranking stays cached")
	rootCmd.PersistentFlags().String("log-level", "", "Structured log level: debug or info or warn or error (empty disables)")
	rootCmd.PersistentFlags().String("log-file", "", "Write structured logs to this file with rotation")
	rootCmd.PersistentFlags().String("user", "", "User performing featured list changes")
	rootCmd.PersistentFlags().String("admins", "", "Comma-separated list of users allowed to change the featured list")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Flags of recordCmd
	recordCmd.Flags().String("timestamp", "", "Sample time in ISO8601 or time ago (default now)")

	// Flags of forecastCmd
	forecastCmd.Flags().StringSlice("metric", nil, "Metrics to forecast (default all)")
	forecastCmd.Flags().Int("periods", 24, "Number of hourly steps to forecast")
	forecastCmd.Flags().String("method", string(schema.EnsembleMethod), "Method: linear or exponential or moving_average or seasonal or ensemble")

	// Flags of breachCmd
	breachCmd.Flags().StringSlice("metric", nil, "Metrics to check (default all)")
	breachCmd.Flags().Float64("threshold", 0, "Threshold checked going up (default configured thresholds)")
	breachCmd.Flags().Int("horizon", 24, "Hours to look ahead")

	// Bind all flags of insightsCmd to Viper
	insightsCmd.Flags().String("thresholds-override", "", "Insight thresholds (format: 'error_count:50,cost:100')")
	if err := viper.BindPFlags(insightsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding insights flags", err)
	}

	// Flags of the trending subcommands
	trendingRankCmd.Flags().Int("window", 7, "Activity window in days: 1 or 7 or 30")
	trendingRankCmd.Flags().Bool("force", false, "Bypass the cached ranking")
	trendingRankCmd.Flags().Int("limit", 0, "Number of results to display (0 = all)")
	trendingRegisterCmd.Flags().String("name", "", "Display name of the artifact")

	// Bind all flags of mcpCmd to Viper
	mcpCmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (e.g., :9464)")
	if err := viper.BindPFlags(mcpCmd.Flags()); err != nil {
		contract.LogFatal("Error binding mcp flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
