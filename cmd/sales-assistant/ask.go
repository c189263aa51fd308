package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sales-assistant/internal/workflow"
)

var askPretty bool

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Run a single turn and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askPretty, "text", false, "print a human-readable view instead of JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{configPath: cfgFile, logLevel: logLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	return ask(ctx, a.engine, strings.Join(args, " "), askPretty, cmd.OutOrStdout())
}

func ask(ctx context.Context, engine *workflow.Engine, query string, text bool, out io.Writer) error {
	res := engine.RunTurn(ctx, query)
	if text {
		renderTurn(out, res)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
