package main

import (
	"github.com/spf13/cobra"

	mcpserver "sales-assistant/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve run_turn and clear_context as MCP tools over stdio",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{configPath: cfgFile, logLevel: logLevel, logOutput: "stderr"})
	if err != nil {
		return err
	}
	defer a.Close()

	return mcpserver.Run(a.engine, version, a.log)
}
