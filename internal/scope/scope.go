// Package scope computes the set of source files the server may serve.
package scope

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kobzarvs/qguru/internal/logger"
)

// ErrOutOfScope is returned for a file that is not part of the set.
var ErrOutOfScope = errors.New("scope: file not in scope")

// DefaultInclude selects Go source files at any depth.
var DefaultInclude = []string{"**/*.go"}

// Set is a sorted list of absolute file paths. It is immutable.
type Set struct {
	root  string
	files []string
}

// New returns a set holding files, which are made absolute relative to
// root.
func New(root string, files []string) *Set {
	s := &Set{root: root, files: make([]string, 0, len(files))}
	for _, f := range files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(root, f)
		}
		s.files = append(s.files, filepath.Clean(f))
	}
	slices.Sort(s.files)
	s.files = slices.Compact(s.files)
	return s
}

// Load lists the files below root matching the include patterns. Patterns
// are doublestar globs matched against slash-separated paths relative to
// root; a pattern starting with "!" excludes what it matches. When root is
// inside a git repository the files tracked at HEAD are listed, otherwise
// the directory tree is walked.
func Load(root string, include []string) (*Set, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if len(include) == 0 {
		include = DefaultInclude
	}
	if err := ValidatePatterns(include); err != nil {
		return nil, err
	}
	files, err := gitFiles(abs)
	if err != nil {
		logger.Debug("scope: not using git", "root", abs, "error", err)
		files, err = walkFiles(abs)
		if err != nil {
			return nil, err
		}
	}
	var kept []string
	for _, f := range files {
		if matches(include, f) {
			kept = append(kept, f)
		}
	}
	logger.Info("scope loaded", "root", abs, "files", len(kept))
	return New(abs, kept), nil
}

// ValidatePatterns reports the first malformed pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(strings.TrimPrefix(p, "!")) {
			return fmt.Errorf("scope: bad pattern %q", p)
		}
	}
	return nil
}

func matches(patterns []string, rel string) bool {
	ok := false
	for _, p := range patterns {
		if neg, found := strings.CutPrefix(p, "!"); found {
			if doublestar.MatchUnvalidated(neg, rel) {
				return false
			}
			continue
		}
		if doublestar.MatchUnvalidated(p, rel) {
			ok = true
		}
	}
	return ok
}

// gitFiles returns the files tracked at HEAD below root, relative to root.
func gitFiles(root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), root)
	if err != nil {
		return nil, fmt.Errorf("relative root: %w", err)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if rel, ok := strings.CutPrefix(f.Name, prefix); ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	return files, nil
}

// walkFiles returns the regular files below root, relative to root,
// skipping hidden directories.
func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Root returns the directory the set was loaded from.
func (s *Set) Root() string {
	return s.root
}

// Files returns the paths in the set, sorted.
func (s *Set) Files() []string {
	return slices.Clone(s.files)
}

func (s *Set) Len() int {
	return len(s.files)
}

// Contains reports whether path is in the set.
func (s *Set) Contains(path string) bool {
	_, ok := slices.BinarySearch(s.files, filepath.Clean(path))
	return ok
}

// Check returns ErrOutOfScope unless path is in the set.
func (s *Set) Check(path string) error {
	if !s.Contains(path) {
		return fmt.Errorf("%w: %s", ErrOutOfScope, path)
	}
	return nil
}

// Read returns the content of a file in the set.
func (s *Set) Read(path string) ([]byte, error) {
	if err := s.Check(path); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Clean(path))
}
