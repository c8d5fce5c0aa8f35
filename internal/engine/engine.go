// Package engine runs the guru analysis command.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/kobzarvs/qguru/internal/logger"
)

const DefaultCommand = "guru"

// ErrUnknownMode is returned for a mode the engine does not implement.
var ErrUnknownMode = errors.New("engine: unknown mode")

// Modes lists the query modes of the engine, sorted.
var Modes = []string{
	"callees",
	"callers",
	"callstack",
	"definition",
	"describe",
	"freevars",
	"implements",
	"peers",
	"pointsto",
	"referrers",
	"what",
	"whicherrs",
}

// KnownMode reports whether mode is one of Modes.
func KnownMode(mode string) bool {
	_, ok := slices.BinarySearch(Modes, mode)
	return ok
}

type Options struct {
	// Command is the engine executable; DefaultCommand when empty.
	Command string
	// Args are placed before the engine flags.
	Args []string
	// Scope is the list of packages analysed by pointer queries.
	Scope []string
	Tags  string
	// Dir is the working directory of the engine.
	Dir string
	// CacheTTL is how long answers are reused. Zero disables the cache.
	CacheTTL time.Duration
}

// Runner executes queries. Identical queries in flight at the same time run
// the engine once. Runner is safe for concurrent use.
type Runner struct {
	opts  Options
	cache *cache.Cache
	group singleflight.Group
}

func New(opts Options) *Runner {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	r := &Runner{opts: opts}
	if opts.CacheTTL > 0 {
		r.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return r
}

// Args returns the engine arguments for a query.
func (r *Runner) Args(mode, pos, format string) []string {
	args := slices.Clone(r.opts.Args)
	if len(r.opts.Scope) > 0 {
		args = append(args, "-scope", strings.Join(r.opts.Scope, ","))
	}
	if r.opts.Tags != "" {
		args = append(args, "-tags", r.opts.Tags)
	}
	if format == "json" {
		args = append(args, "-json")
	}
	return append(args, mode, pos)
}

// CommandLine renders a query as the shell command it runs.
func (r *Runner) CommandLine(mode, pos, format string) string {
	return strings.Join(append([]string{r.opts.Command}, r.Args(mode, pos, format)...), " ")
}

// Query runs mode at pos and returns the engine's output, as JSON when
// format is "json" and as plain text otherwise. The engine's stderr is
// included in the error of a failed run.
func (r *Runner) Query(ctx context.Context, mode, pos, format string) ([]byte, error) {
	if !KnownMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if format != "json" {
		format = "plain"
	}
	key := format + "\x00" + mode + "\x00" + pos
	if r.cache != nil {
		if out, ok := r.cache.Get(key); ok {
			logger.Debug("engine cache hit", "mode", mode, "pos", pos)
			return out.([]byte), nil
		}
	}
	v, err, shared := r.group.Do(key, func() (any, error) {
		out, err := r.run(context.WithoutCancel(ctx), mode, pos, format)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.SetDefault(key, out)
		}
		return out, nil
	})
	if shared {
		logger.Debug("engine query shared", "mode", mode, "pos", pos)
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Flush drops all cached answers.
func (r *Runner) Flush() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

func (r *Runner) run(ctx context.Context, mode, pos, format string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.opts.Command, r.Args(mode, pos, format)...)
	cmd.Dir = r.opts.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	logger.Debug("engine run", "mode", mode, "pos", pos, "elapsed", time.Since(start), "error", err)
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", r.opts.Command, mode, err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", r.opts.Command, mode, err)
	}
	return stdout.Bytes(), nil
}
