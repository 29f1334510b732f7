package cmd

import (
	"github.com/huangsam/flowcast/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the flowcast MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents derive series and run
forecasts through the list_series and forecast_series tools.

Tool calls start from the flags and config of this command and override only
what they pass.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
