package main

import (
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qguru/internal/app"
	"github.com/kobzarvs/qguru/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve [packages...]",
	Short: "Serve source files and guru queries over HTTP",
	Long: `Serve the files below the root directory that match the include globs,
and answer queries by running the guru engine. The packages form the
analysis scope of the engine's pointer queries.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("http", "", "HTTP service address (default from config, :8080)")
	f.BoolP("verbose", "v", false, "print incoming queries")
	f.Bool("open", true, "open the server URL with the system opener")
	f.String("tags", "", "build tags passed to the engine")
	f.String("root", "", "directory whose files are served")
	f.String("engine", "", "engine command (default guru)")
	f.StringSlice("include", nil, "doublestar globs of served files; a leading ! excludes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if v, _ := f.GetString("http"); v != "" {
		cfg.Server.HTTP = v
	}
	if f.Changed("verbose") {
		cfg.Server.Verbose, _ = f.GetBool("verbose")
	}
	if f.Changed("open") {
		cfg.Server.Open, _ = f.GetBool("open")
	}
	if f.Changed("tags") {
		cfg.Server.Tags, _ = f.GetString("tags")
	}
	if v, _ := f.GetString("root"); v != "" {
		cfg.Server.Root = v
	}
	if v, _ := f.GetString("engine"); v != "" {
		cfg.Server.Engine = v
	}
	if v, _ := f.GetStringSlice("include"); len(v) > 0 {
		cfg.Server.Include = v
	}
	return app.Serve(cmd.Context(), cfg, args)
}
