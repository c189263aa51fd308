package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sales-assistant/internal/workflow"
)

var demoQueries = []string{
	"Find computer contractors in Texas",
	"Show me businesses with low local presence",
	"Draft a personalized email for a tech business",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the sample queries",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{configPath: cfgFile, logLevel: logLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	return demo(ctx, a.engine, cmd.OutOrStdout())
}

func demo(ctx context.Context, engine *workflow.Engine, out io.Writer) error {
	for i, q := range demoQueries {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n--- Sample query %d: %s ---\n", i+1, q)
		renderTurn(out, engine.RunTurn(ctx, q))
	}
	return nil
}
