package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qguru",
	Short: "Interactive terminal browser for the Go source code guru",
	Long: `qguru serves Go source files and relays analysis queries to the guru
engine (qguru serve), and browses them in the terminal (qguru browse):
select code with the mouse, pick a query from the menu and follow the
addresses in its report.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "qguru:", err)
		stop()
		os.Exit(1)
	}
}
