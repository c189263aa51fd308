package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sales-assistant",
	Short: "Conversational sales assistant for prospecting, insights and outreach",
	Long: `sales-assistant routes each message to one of three handlers: prospect search over the
loaded dataset, a digital-presence report for one business, or an outreach brief. It runs as an
interactive chat, a one-shot command, an HTTP service with workflow-engine job workers, or an MCP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.Version = version
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
