package server

import (
	"html/template"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/kobzarvs/qguru/internal/logger"
)

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"base": filepath.Base,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Go source code guru</title>
</head>
<body>
<h1>Go source code guru</h1>
<p>Root: {{.Root}}</p>
{{with .Scope}}<p>Scope: {{range $i, $p := .}}{{if $i}}, {{end}}{{$p}}{{end}}</p>{{end}}
{{range .Dirs}}<h2>{{.Name}}</h2>
<ul>
{{range .Files}}<li><a href="file?path={{.}}">{{base .}}</a></li>
{{end}}</ul>
{{else}}<p>No files in scope.</p>
{{end}}</body>
</html>
`))

type indexDir struct {
	Name  string
	Files []string
}

type indexPage struct {
	Root  string
	Scope []string
	Dirs  []indexDir
}

// serveIndex lists the files in scope grouped by directory.
func (s *Server) serveIndex(w http.ResponseWriter, req *http.Request) {
	page := indexPage{Root: s.files.Root(), Scope: s.scope}
	byDir := make(map[string][]string)
	for _, f := range s.files.Files() {
		dir, err := filepath.Rel(page.Root, filepath.Dir(f))
		if err != nil {
			dir = filepath.Dir(f)
		}
		byDir[filepath.ToSlash(dir)] = append(byDir[filepath.ToSlash(dir)], f)
	}
	for name, files := range byDir {
		page.Dirs = append(page.Dirs, indexDir{Name: name, Files: files})
	}
	slices.SortFunc(page.Dirs, func(a, b indexDir) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		logger.Warn("render index", "error", err)
	}
}
