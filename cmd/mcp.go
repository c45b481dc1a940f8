package cmd

import (
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Pulse MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents record metrics, read
forecasts and breach predictions, analyze tool operations and rank artifacts.

Samples are loaded from the history store once at startup and every tool shares
the same engine. Set --metrics-addr to expose prometheus counters.

Examples:
  pulse mcp
  pulse mcp --metrics-addr :9464`,
	Args: cobra.NoArgs,
	// Nothing may be written to stdout before serving since stdio carries the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}
