package cmd

import (
	"strconv"

	"github.com/huangsam/pulse/core"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/schema"
	"github.com/spf13/cobra"
)

// trendingCmd groups the community artifact commands.
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Rank community artifacts and manage the featured list.",
	Long: `Track engagement on community artifacts and rank them by trending score.

The score blends downloads, ratings and comments, then decays with the time
since the last activity. Rankings are cached for --trending-ttl and any
engagement change invalidates the cache.

Subcommands:
  rank      - Rank artifacts over a 1, 7 or 30 day window
  register  - Add an artifact
  import    - Add artifacts from a JSON or YAML file
  download  - Count a download
  rate      - Record a 1-5 star rating
  comment   - Count a comment
  feature   - Add an artifact to the featured list (admins only)
  unfeature - Remove an artifact from the featured list (admins only)
  featured  - Show the featured list`,
}

// trendingRankCmd prints the ranking.
var trendingRankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank artifacts by trending score.",
	Long: `Rank artifacts active within the window by trending score.

Examples:
  # Weekly trending artifacts
  pulse trending rank

  # Top 5 for today, skipping the cache
  pulse trending rank --window 1 --limit 5 --force`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		window, _ := cmd.Flags().GetInt("window")
		force, _ := cmd.Flags().GetBool("force")
		limit, _ := cmd.Flags().GetInt("limit")
		if err := core.ExecuteTrendingRank(rootCtx, cfg, iocache.Manager, window, force, limit); err != nil {
			contract.LogFatal("Cannot rank artifacts", err)
		}
	},
}

// trendingRegisterCmd adds an artifact with empty counters.
var trendingRegisterCmd = &cobra.Command{
	Use:     "register <artifact-id>",
	Short:   "Add an artifact to the registry.",
	Args:    cobra.ExactArgs(1),
	Example: `  pulse trending register code-review-skill --name "Code Review"`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		counters := schema.EngagementCounters{ArtifactID: args[0], Name: name}
		if err := core.ExecuteTrendingRegister(rootCtx, cfg, iocache.Manager, counters); err != nil {
			contract.LogFatal("Cannot register artifact", err)
		}
	},
}

// trendingImportCmd adds artifacts from a file.
var trendingImportCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Add artifacts with their counters from a JSON or YAML file.",
	Args:    cobra.ExactArgs(1),
	Example: `  pulse trending import artifacts.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTrendingImport(rootCtx, cfg, iocache.Manager, args[0]); err != nil {
			contract.LogFatal("Cannot import artifacts", err)
		}
	},
}

// trendingDownloadCmd counts a download.
var trendingDownloadCmd = &cobra.Command{
	Use:     "download <artifact-id>",
	Short:   "Count a download of an artifact.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTrendingDownload(rootCtx, cfg, iocache.Manager, args[0]); err != nil {
			contract.LogFatal("Cannot record download", err)
		}
	},
}

// trendingRateCmd records a rating.
var trendingRateCmd = &cobra.Command{
	Use:     "rate <artifact-id> <stars>",
	Short:   "Record a 1-5 star rating of an artifact.",
	Args:    cobra.ExactArgs(2),
	Example: `  pulse trending rate code-review-skill 5`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		stars, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			contract.LogFatal("Invalid rating", err)
		}
		if err := core.ExecuteTrendingRate(rootCtx, cfg, iocache.Manager, args[0], stars); err != nil {
			contract.LogFatal("Cannot record rating", err)
		}
	},
}

// trendingCommentCmd counts a comment.
var trendingCommentCmd = &cobra.Command{
	Use:     "comment <artifact-id>",
	Short:   "Count a comment on an artifact.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTrendingComment(rootCtx, cfg, iocache.Manager, args[0]); err != nil {
			contract.LogFatal("Cannot record comment", err)
		}
	},
}

// trendingFeatureCmd adds to the featured list.
var trendingFeatureCmd = &cobra.Command{
	Use:   "feature <artifact-id>",
	Short: "Add an artifact to the featured list.",
	Long: `Add an artifact to the featured list. Only users listed in --admins
may change the list. The acting user comes from --user.

Examples:
  pulse trending feature code-review-skill --user alice --admins alice,bob`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTrendingFeature(rootCtx, cfg, iocache.Manager, args[0]); err != nil {
			contract.LogFatal("Cannot feature artifact", err)
		}
	},
}

// trendingUnfeatureCmd removes from the featured list.
var trendingUnfeatureCmd = &cobra.Command{
	Use:     "unfeature <artifact-id>",
	Short:   "Remove an artifact from the featured list.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTrendingUnfeature(rootCtx, cfg, iocache.Manager, args[0]); err != nil {
			contract.LogFatal("Cannot unfeature artifact", err)
		}
	},
}

// trendingFeaturedCmd shows the featured list.
var trendingFeaturedCmd = &cobra.Command{
	Use:     "featured",
	Short:   "Show the featured list, most recent first.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrendingFeatured(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot list featured artifacts", err)
		}
	},
}
