package main

import (
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qguru/internal/app"
	"github.com/kobzarvs/qguru/internal/config"
)

var browseCmd = &cobra.Command{
	Use:   "browse [file]",
	Short: "Browse source files served by qguru serve",
	Long: `Open file in the terminal browser. Without a file the first file the
server offers is opened. The browser logs to QGURU_LOG_FILE, or qguru.log in
the configuration directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("server", "", "base URL of the qguru server (default from config)")
	browseCmd.Flags().Bool("debug", false, "log at debug level")
	browseCmd.Flags().Bool("local", false, "decide menu applicability locally instead of asking the engine")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Browser.Server = server
	}
	if local, _ := cmd.Flags().GetBool("local"); local {
		cfg.Browser.Applicability = "local"
	}
	debug, _ := cmd.Flags().GetBool("debug")

	var file string
	if len(args) > 0 {
		file = args[0]
	}
	return app.Browse(cmd.Context(), cfg, file, debug)
}
