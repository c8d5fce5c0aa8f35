// Package server serves source files in scope and relays analysis queries to
// the engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/qguru/internal/engine"
	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/position"
	"github.com/kobzarvs/qguru/internal/scope"
)

// Engine runs analysis queries.
type Engine interface {
	Query(ctx context.Context, mode, pos, format string) ([]byte, error)
	CommandLine(mode, pos, format string) string
}

type Server struct {
	files   *scope.Set
	engine  Engine
	verbose bool
	scope   []string
	mux     *http.ServeMux
}

type Option func(*Server)

// WithScope names the analysis scope on the index page.
func WithScope(packages []string) Option {
	return func(s *Server) {
		s.scope = packages
	}
}

// New returns a server for the files of set. With verbose set every query
// is logged as the engine command line it runs.
func New(set *scope.Set, eng Engine, verbose bool, opts ...Option) *Server {
	s := &Server{files: set, engine: eng, verbose: verbose, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /{$}", s.serveIndex)
	s.mux.HandleFunc("GET /files", s.serveFiles)
	s.mux.HandleFunc("GET /file", s.serveFile)
	s.mux.HandleFunc("GET /query", s.serveQuery)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.mux.ServeHTTP(w, req)
}

func (s *Server) serveFiles(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.files.Files()); err != nil {
		logger.Warn("encode file list", "error", err)
	}
}

func (s *Server) serveFile(w http.ResponseWriter, req *http.Request) {
	path := req.FormValue("path")
	code, err := s.files.Read(path)
	if errors.Is(err, scope.ErrOutOfScope) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		logger.Warn("read file", "remote", req.RemoteAddr, "error", err)
		http.NotFound(w, req)
		return
	}
	if sel := req.FormValue("s"); sel != "" {
		r, err := position.ParseRange(sel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start, end, ok := r.ByteOffsets(code)
		if !ok {
			http.Error(w, fmt.Sprintf("selection %s outside %s", sel, path), http.StatusBadRequest)
			return
		}
		w.Header().Set(position.SelectionHeader, strconv.Itoa(start)+":"+strconv.Itoa(end))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(code)
}

func (s *Server) serveQuery(w http.ResponseWriter, req *http.Request) {
	mode := req.FormValue("mode")
	pos := req.FormValue("pos")
	format := req.FormValue("format")
	if !engine.KnownMode(mode) {
		http.Error(w, fmt.Sprintf("unknown mode %q", mode), http.StatusBadRequest)
		return
	}
	file, ok := posFile(pos)
	if !ok {
		http.Error(w, fmt.Sprintf("malformed pos %q", pos), http.StatusBadRequest)
		return
	}
	if !s.files.Contains(file) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if s.verbose {
		logger.Info("query", "remote", req.RemoteAddr, "cmd", s.engine.CommandLine(mode, pos, format))
	}
	out, err := s.engine.Query(req.Context(), mode, pos, format)
	if err != nil {
		logger.Warn("query failed", "mode", mode, "pos", pos, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(out)
}

// posFile returns the file of an engine position "file:#start[,#end]".
func posFile(pos string) (string, bool) {
	i := strings.LastIndex(pos, ":#")
	if i <= 0 {
		return "", false
	}
	return pos[:i], true
}

// ListenAndServe serves h on addr until ctx is done. When open is set the
// server URL is handed to the system opener, or printed if that fails.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, open bool) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	url := "http://" + displayAddr(l.Addr().String()) + "/"
	logger.Info("serving", "url", url)
	if open && !StartBrowser(url) {
		fmt.Println(url)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// StartBrowser tries to open url with the system opener and reports whether
// it started.
func StartBrowser(url string) bool {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"open"}
	case "windows":
		args = []string{"cmd", "/c", "start"}
	default:
		args = []string{"xdg-open"}
	}
	cmd := exec.Command(args[0], append(args[1:], url)...)
	return cmd.Start() == nil
}
