package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sales-assistant/internal/workflow"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{configPath: cfgFile, logLevel: logLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	return chatLoop(ctx, a.engine, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one query per line until quit, EOF or cancellation.
func chatLoop(ctx context.Context, engine *workflow.Engine, in io.Reader, out io.Writer) error {
	printWelcome(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nEnter your query: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nSession closed. Goodbye!")
			return scanner.Err()
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nSession interrupted. Goodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			fmt.Fprintln(out, "Please enter a query. Type 'help' for examples.")
		case "quit", "exit", "q":
			fmt.Fprintln(out, "\nThank you for using the sales assistant. Goodbye!")
			return nil
		case "help", "h":
			printHelp(out)
		case "status", "health":
			printStatus(out, engine.Status())
		case "clear":
			engine.ClearContext()
			fmt.Fprintln(out, "Conversation context cleared.")
		default:
			fmt.Fprintf(out, "\nProcessing: '%s'\n", input)
			renderTurn(out, engine.RunTurn(ctx, input))
		}
	}
}

func printWelcome(out io.Writer) {
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out, " SALES ASSISTANT")
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out, "\nExample queries:")
	fmt.Fprintln(out, "  - Find computer contractors in Texas")
	fmt.Fprintln(out, "  - Show me businesses with low local presence")
	fmt.Fprintln(out, "  - Get details for [Business Name]")
	fmt.Fprintln(out, "  - Draft an email for [Business Name]")
	fmt.Fprintln(out, "\nCommands: help, status, clear, quit")
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nProspecting:")
	fmt.Fprintln(out, "  - Find computer contractors")
	fmt.Fprintln(out, "  - Show me businesses in California")
	fmt.Fprintln(out, "  - Find companies with high SEM spend")
	fmt.Fprintln(out, "  - Look for businesses with weak local presence")
	fmt.Fprintln(out, "\nInsights:")
	fmt.Fprintln(out, "  - Analyze [Business Name]")
	fmt.Fprintln(out, "  - Show SWOT analysis for [Business Name]")
	fmt.Fprintln(out, "\nCommunication:")
	fmt.Fprintln(out, "  - Draft an email for [Business Name]")
	fmt.Fprintln(out, "  - Create outreach content for [Business Name]")
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  help, h        show this text")
	fmt.Fprintln(out, "  status, health show component readiness")
	fmt.Fprintln(out, "  clear          forget the conversation so far")
	fmt.Fprintln(out, "  quit, exit, q  end the session")
}

func printStatus(out io.Writer, st workflow.Readiness) {
	ready := func(ok bool) string {
		if ok {
			return "Ready"
		}
		return "Not initialized"
	}
	fmt.Fprintln(out, "\nSystem status:")
	fmt.Fprintf(out, "  Classifier:   %s (%s)\n", ready(st.Ready), st.Classifier)
	fmt.Fprintf(out, "  Dataset:      %d records\n", st.DatasetRecords)
	fmt.Fprintf(out, "  Conversation: %d/%d entries, segment %s\n", st.ConversationEntries, st.MaxEntries, st.UserSegment)
}
