// Package app wires configuration, logging and the components of the two
// qguru programs: the terminal browser and the source server.
package app

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qguru/internal/client"
	"github.com/kobzarvs/qguru/internal/config"
	"github.com/kobzarvs/qguru/internal/engine"
	"github.com/kobzarvs/qguru/internal/highlight"
	"github.com/kobzarvs/qguru/internal/history"
	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/modes"
	"github.com/kobzarvs/qguru/internal/navigator"
	"github.com/kobzarvs/qguru/internal/scope"
	"github.com/kobzarvs/qguru/internal/server"
	"github.com/kobzarvs/qguru/internal/ui"
)

// Browse runs the terminal browser against the server named in cfg until
// the user quits or ctx ends. An empty file opens the first file the server
// offers.
func Browse(ctx context.Context, cfg config.Config, file string, debug bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(logger.Options{Debug: debug}); err != nil {
		return err
	}
	defer logger.Close()

	jump, err := cfg.Browser.JumpHighlightDuration()
	if err != nil {
		return err
	}
	c, err := client.New(cfg.Browser.Server, cfg.Browser.FileCacheSize)
	if err != nil {
		return err
	}
	file, err = startFile(ctx, c, file)
	if err != nil {
		return err
	}
	logger.Info("browser starting", "server", cfg.Browser.Server, "file", file,
		"applicability", cfg.Browser.Applicability)

	hl, err := highlight.New()
	if err != nil {
		logger.Warn("syntax highlighting disabled", "error", err)
		hl = nil
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	hist := history.New()
	b := ui.New(ui.Options{
		Styles:        ui.NewStyles(cfg.Theme),
		TabWidth:      cfg.Browser.TabWidth,
		OutputHeight:  cfg.Browser.OutputHeight,
		JumpHighlight: jump,
		Keymap:        cfg.Keymap,
		History:       hist,
		Highlighter:   hl,
	})
	loop := ui.NewEventLoop(ctx, s)
	nav := navigator.New(navigator.Options{
		Files:        c,
		Lister:       c,
		Queries:      c,
		Asker:        c,
		Registry:     modes.GuruModes(cfg.Browser.Applicability == "remote"),
		View:         b,
		History:      hist,
		Loop:         loop,
		Title:        cfg.Browser.Title,
		WaitMessage:  cfg.Browser.WaitMessage,
		ErrorMessage: cfg.Browser.ErrorMessage,
	})
	b.SetController(nav)
	nav.Init(file)

	err = ui.Run(ctx, s, b, loop)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func startFile(ctx context.Context, c *client.Client, file string) (string, error) {
	if file != "" {
		return filepath.Abs(file)
	}
	files, err := c.Files(ctx)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.New("the server has no files in scope")
	}
	return files[0], nil
}

// Serve runs the source server until ctx ends. packages is the analysis
// scope handed to the engine.
func Serve(ctx context.Context, cfg config.Config, packages []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(logger.Options{Stderr: true, Debug: cfg.Server.Verbose}); err != nil {
		return err
	}
	defer logger.Close()

	ttl, err := cfg.Server.TTL()
	if err != nil {
		return err
	}
	set, err := scope.Load(cfg.Server.Root, cfg.Server.Include)
	if err != nil {
		return err
	}
	eng := engine.New(engine.Options{
		Command:  cfg.Server.Engine,
		Scope:    packages,
		Tags:     cfg.Server.Tags,
		Dir:      set.Root(),
		CacheTTL: ttl,
	})
	logger.Debug("engine configured", "command", eng.CommandLine("describe", "<pos>", "plain"))
	return server.ListenAndServe(ctx, cfg.Server.HTTP, server.New(set, eng, cfg.Server.Verbose, server.WithScope(packages)), cfg.Server.Open)
}
