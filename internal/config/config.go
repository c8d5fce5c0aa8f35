package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type BrowserOptions struct {
	Server        string `toml:"server"`
	Applicability string `toml:"applicability"`
	WaitMessage   string `toml:"wait-message"`
	ErrorMessage  string `toml:"error-message"`
	Title         string `toml:"title"`
	TabWidth      int    `toml:"tab-width"`
	OutputHeight  int    `toml:"output-height"`
	FileCacheSize int    `toml:"file-cache-size"`
	JumpHighlight string `toml:"jump-highlight"`
}

type ServerOptions struct {
	HTTP     string   `toml:"http"`
	Engine   string   `toml:"engine"`
	Tags     string   `toml:"tags"`
	Root     string   `toml:"root"`
	Include  []string `toml:"include"`
	CacheTTL string   `toml:"cache-ttl"`
	Verbose  bool     `toml:"verbose"`
	Open     bool     `toml:"open"`
}

type Theme struct {
	Theme                  string `toml:"theme"`
	Foreground             string `toml:"foreground"`
	Background             string `toml:"background"`
	HeaderForeground       string `toml:"header-foreground"`
	HeaderBackground       string `toml:"header-background"`
	LineNumberForeground   string `toml:"line-number-foreground"`
	JumpBackground         string `toml:"jump-background"`
	SelectionForeground    string `toml:"selection-foreground"`
	SelectionBackground    string `toml:"selection-background"`
	OutputForeground       string `toml:"output-foreground"`
	OutputBackground       string `toml:"output-background"`
	LinkForeground         string `toml:"link-foreground"`
	MenuForeground         string `toml:"menu-foreground"`
	MenuBackground         string `toml:"menu-background"`
	MenuSelectedForeground string `toml:"menu-selected-foreground"`
	MenuSelectedBackground string `toml:"menu-selected-background"`
	MenuDisabledForeground string `toml:"menu-disabled-foreground"`
	SyntaxKeyword          string `toml:"syntax-keyword"`
	SyntaxString           string `toml:"syntax-string"`
	SyntaxComment          string `toml:"syntax-comment"`
	SyntaxType             string `toml:"syntax-type"`
	SyntaxFunction         string `toml:"syntax-function"`
	SyntaxNumber           string `toml:"syntax-number"`
	SyntaxConstant         string `toml:"syntax-constant"`
	SyntaxOperator         string `toml:"syntax-operator"`
	SyntaxPunctuation      string `toml:"syntax-punctuation"`
	SyntaxField            string `toml:"syntax-field"`
	SyntaxBuiltin          string `toml:"syntax-builtin"`
	SyntaxVariable         string `toml:"syntax-variable"`
	SyntaxParameter        string `toml:"syntax-parameter"`
}

type Config struct {
	Browser BrowserOptions    `toml:"browser"`
	Server  ServerOptions     `toml:"server"`
	Theme   Theme             `toml:"theme"`
	Keymap  map[string]string `toml:"keymap"`
}

func Default() Config {
	return Config{
		Browser: BrowserOptions{
			Server:        "http://localhost:8080",
			Applicability: "remote",
			WaitMessage:   "Consulting the guru ...",
			ErrorMessage:  "An error occurred.",
			Title:         "Go source code guru",
			TabWidth:      8,
			OutputHeight:  12,
			FileCacheSize: 64,
			JumpHighlight: "1500ms",
		},
		Server: ServerOptions{
			HTTP:     ":8080",
			Engine:   "guru",
			Root:     ".",
			Include:  []string{"**/*.go"},
			CacheTTL: "5m",
			Open:     true,
		},
		Theme: Theme{
			Foreground:             "#B3B1AD",
			Background:             "#0A0E14",
			HeaderForeground:       "#B3B1AD",
			HeaderBackground:       "#0F1419",
			LineNumberForeground:   "#3E4B59",
			JumpBackground:         "#3D3A1F",
			SelectionForeground:    "#B3B1AD",
			SelectionBackground:    "#27425A",
			OutputForeground:       "#B3B1AD",
			OutputBackground:       "#0F1419",
			LinkForeground:         "#59C2FF",
			MenuForeground:         "#B3B1AD",
			MenuBackground:         "#1A1F29",
			MenuSelectedForeground: "#0A0E14",
			MenuSelectedBackground: "#E6B450",
			MenuDisabledForeground: "#3E4B59",
			SyntaxKeyword:          "#FFA759",
			SyntaxString:           "#BAE67E",
			SyntaxComment:          "#5C6773",
			SyntaxType:             "#5CCFE6",
			SyntaxFunction:         "#FFD173",
			SyntaxNumber:           "#D4BFFF",
			SyntaxConstant:         "#FFDD8E",
			SyntaxOperator:         "#F29668",
			SyntaxPunctuation:      "#C0C0C0",
			SyntaxField:            "#E6B673",
			SyntaxBuiltin:          "#73D0FF",
			SyntaxVariable:         "#B3B1AD",
			SyntaxParameter:        "#B3B1AD",
		},
		Keymap: map[string]string{
			"up":        "up",
			"k":         "up",
			"down":      "down",
			"j":         "down",
			"pgup":      "page_up",
			"pgdn":      "page_down",
			"home":      "top",
			"end":       "bottom",
			"enter":     "choose",
			"[":         "back",
			"alt+left":  "back",
			"]":         "forward",
			"alt+right": "forward",
			"o":         "files",
			"esc":       "escape",
			"q":         "quit",
			"ctrl+c":    "quit",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if userCfg.Browser.Server != "" {
		cfg.Browser.Server = userCfg.Browser.Server
	}
	if userCfg.Browser.Applicability != "" {
		cfg.Browser.Applicability = userCfg.Browser.Applicability
	}
	if userCfg.Browser.WaitMessage != "" {
		cfg.Browser.WaitMessage = userCfg.Browser.WaitMessage
	}
	if userCfg.Browser.ErrorMessage != "" {
		cfg.Browser.ErrorMessage = userCfg.Browser.ErrorMessage
	}
	if userCfg.Browser.Title != "" {
		cfg.Browser.Title = userCfg.Browser.Title
	}
	if userCfg.Browser.TabWidth > 0 {
		cfg.Browser.TabWidth = userCfg.Browser.TabWidth
	}
	if userCfg.Browser.OutputHeight > 0 {
		cfg.Browser.OutputHeight = userCfg.Browser.OutputHeight
	}
	if userCfg.Browser.FileCacheSize > 0 {
		cfg.Browser.FileCacheSize = userCfg.Browser.FileCacheSize
	}
	if userCfg.Browser.JumpHighlight != "" {
		cfg.Browser.JumpHighlight = userCfg.Browser.JumpHighlight
	}
	if userCfg.Server.HTTP != "" {
		cfg.Server.HTTP = userCfg.Server.HTTP
	}
	if userCfg.Server.Engine != "" {
		cfg.Server.Engine = userCfg.Server.Engine
	}
	if userCfg.Server.Tags != "" {
		cfg.Server.Tags = userCfg.Server.Tags
	}
	if userCfg.Server.Root != "" {
		cfg.Server.Root = userCfg.Server.Root
	}
	if len(userCfg.Server.Include) > 0 {
		cfg.Server.Include = userCfg.Server.Include
	}
	if userCfg.Server.CacheTTL != "" {
		cfg.Server.CacheTTL = userCfg.Server.CacheTTL
	}
	if md.IsDefined("server", "verbose") {
		cfg.Server.Verbose = userCfg.Server.Verbose
	}
	if md.IsDefined("server", "open") {
		cfg.Server.Open = userCfg.Server.Open
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed up by defaults.
func (c Config) Validate() error {
	switch c.Browser.Applicability {
	case "remote", "local":
	default:
		return fmt.Errorf("browser.applicability = %q, want remote or local", c.Browser.Applicability)
	}
	if _, err := c.Browser.JumpHighlightDuration(); err != nil {
		return err
	}
	if _, err := c.Server.TTL(); err != nil {
		return err
	}
	return nil
}

// JumpHighlightDuration is how long a jumped-to line stays highlighted.
func (b BrowserOptions) JumpHighlightDuration() (time.Duration, error) {
	d, err := time.ParseDuration(b.JumpHighlight)
	if err != nil {
		return 0, fmt.Errorf("browser.jump-highlight: %w", err)
	}
	return d, nil
}

// TTL is how long engine answers are cached.
func (s ServerOptions) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(s.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("server.cache-ttl: %w", err)
	}
	return d, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.HeaderForeground != "" {
		dst.HeaderForeground = src.HeaderForeground
	}
	if src.HeaderBackground != "" {
		dst.HeaderBackground = src.HeaderBackground
	}
	if src.LineNumberForeground != "" {
		dst.LineNumberForeground = src.LineNumberForeground
	}
	if src.JumpBackground != "" {
		dst.JumpBackground = src.JumpBackground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.OutputForeground != "" {
		dst.OutputForeground = src.OutputForeground
	}
	if src.OutputBackground != "" {
		dst.OutputBackground = src.OutputBackground
	}
	if src.LinkForeground != "" {
		dst.LinkForeground = src.LinkForeground
	}
	if src.MenuForeground != "" {
		dst.MenuForeground = src.MenuForeground
	}
	if src.MenuBackground != "" {
		dst.MenuBackground = src.MenuBackground
	}
	if src.MenuSelectedForeground != "" {
		dst.MenuSelectedForeground = src.MenuSelectedForeground
	}
	if src.MenuSelectedBackground != "" {
		dst.MenuSelectedBackground = src.MenuSelectedBackground
	}
	if src.MenuDisabledForeground != "" {
		dst.MenuDisabledForeground = src.MenuDisabledForeground
	}
	if src.SyntaxKeyword != "" {
		dst.SyntaxKeyword = src.SyntaxKeyword
	}
	if src.SyntaxString != "" {
		dst.SyntaxString = src.SyntaxString
	}
	if src.SyntaxComment != "" {
		dst.SyntaxComment = src.SyntaxComment
	}
	if src.SyntaxType != "" {
		dst.SyntaxType = src.SyntaxType
	}
	if src.SyntaxFunction != "" {
		dst.SyntaxFunction = src.SyntaxFunction
	}
	if src.SyntaxNumber != "" {
		dst.SyntaxNumber = src.SyntaxNumber
	}
	if src.SyntaxConstant != "" {
		dst.SyntaxConstant = src.SyntaxConstant
	}
	if src.SyntaxOperator != "" {
		dst.SyntaxOperator = src.SyntaxOperator
	}
	if src.SyntaxPunctuation != "" {
		dst.SyntaxPunctuation = src.SyntaxPunctuation
	}
	if src.SyntaxField != "" {
		dst.SyntaxField = src.SyntaxField
	}
	if src.SyntaxBuiltin != "" {
		dst.SyntaxBuiltin = src.SyntaxBuiltin
	}
	if src.SyntaxVariable != "" {
		dst.SyntaxVariable = src.SyntaxVariable
	}
	if src.SyntaxParameter != "" {
		dst.SyntaxParameter = src.SyntaxParameter
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil && t != (Theme{}) {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QGURU_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qguru"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qguru"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
