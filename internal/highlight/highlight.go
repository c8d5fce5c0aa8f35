// Package highlight computes syntax highlighting spans for Go source.
package highlight

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Span covers the runes [StartCol, EndCol) of a line. A span running past
// the end of its line has EndCol math.MaxInt32.
type Span struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Supported reports whether files like path can be highlighted.
func Supported(path string) bool {
	return filepath.Ext(path) == ".go"
}

// Highlighter holds the parse tree of one document. It is safe for
// concurrent use.
type Highlighter struct {
	parser *sitter.Parser
	query  *sitter.Query

	mu         sync.RWMutex
	tree       *sitter.Tree
	source     []byte
	lineStarts []int
}

func New() (*Highlighter, error) {
	lang := golang.GetLanguage()
	query, err := sitter.NewQuery([]byte(goHighlightQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("compile highlight query: %w", err)
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Highlighter{parser: p, query: query}, nil
}

// Parse replaces the document with src.
func (h *Highlighter) Parse(ctx context.Context, src string) error {
	source := []byte(src)
	h.mu.Lock()
	defer h.mu.Unlock()
	tree, err := h.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if h.tree != nil {
		h.tree.Close()
	}
	h.tree = tree
	h.source = source
	h.lineStarts = h.lineStarts[:0]
	h.lineStarts = append(h.lineStarts, 0)
	for i, b := range source {
		if b == '\n' {
			h.lineStarts = append(h.lineStarts, i+1)
		}
	}
	return nil
}

// Reset forgets the document.
func (h *Highlighter) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tree != nil {
		h.tree.Close()
	}
	h.tree = nil
	h.source = nil
	h.lineStarts = nil
}

// Lines returns the spans of the 0-based lines startLine..endLine, keyed by
// line.
func (h *Highlighter) Lines(startLine, endLine int) map[int][]Span {
	if startLine < 0 || endLine < startLine {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tree == nil {
		return nil
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(h.query, h.tree.RootNode())

	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, h.source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := h.query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			startRow, endRow := int(start.Row), int(end.Row)
			for row := max(startRow, startLine); row <= min(endRow, endLine); row++ {
				startCol := 0
				endCol := int(math.MaxInt32)
				if row == startRow {
					startCol = h.runeCol(row, int(start.Column))
				}
				if row == endRow {
					endCol = h.runeCol(row, int(end.Column))
				}
				out[row] = append(out[row], Span{StartCol: startCol, EndCol: endCol, Kind: kind})
			}
		}
	}
	return out
}

// runeCol converts a byte column of row into a rune column.
func (h *Highlighter) runeCol(row, byteCol int) int {
	if row >= len(h.lineStarts) {
		return byteCol
	}
	start := h.lineStarts[row]
	end := min(start+byteCol, len(h.source))
	return utf8.RuneCount(h.source[start:end])
}

// KindAt returns the highest priority kind covering col.
func KindAt(spans []Span, col int) (string, bool) {
	bestKind := ""
	bestPriority := 0
	for _, span := range spans {
		if col < span.StartCol || col >= span.EndCol {
			continue
		}
		if p := priority(span.Kind); p > bestPriority {
			bestPriority = p
			bestKind = span.Kind
		}
	}
	return bestKind, bestKind != ""
}

func priority(kind string) int {
	switch kind {
	case "comment":
		return 7
	case "string":
		return 6
	case "keyword":
		return 5
	case "constant", "builtin":
		return 4
	case "type", "function", "number", "parameter":
		return 3
	case "field", "variable":
		return 2
	case "operator", "punctuation":
		return 1
	default:
		return 0
	}
}

const goHighlightQuery = `
((comment) @comment)
((interpreted_string_literal) @string)
((raw_string_literal) @string)
((rune_literal) @string)
((escape_sequence) @string)
((int_literal) @number)
((float_literal) @number)
((imaginary_literal) @number)
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
((nil) @constant)
((true) @constant)
((false) @constant)
((iota) @constant)
((identifier) @type (#match? @type "^(bool|byte|rune|string|int|int8|int16|int32|int64|uint|uint8|uint16|uint32|uint64|uintptr|float32|float64|complex64|complex128|error|any|comparable)$"))
((identifier) @builtin (#match? @builtin "^(append|cap|clear|close|complex|copy|delete|imag|len|make|max|min|new|panic|print|println|real|recover)$"))
((const_spec name: (identifier) @constant))
((type_spec name: (type_identifier) @type))
((type_identifier) @type)
((package_identifier) @type)
((type_parameter_declaration (identifier) @type))
((function_declaration name: (identifier) @function))
((method_declaration name: (field_identifier) @function))
((method_elem (field_identifier) @function))
((call_expression function: (identifier) @function))
((call_expression function: (selector_expression field: (field_identifier) @function)))
((selector_expression field: (field_identifier) @field))
((field_identifier) @field)
((parameter_declaration (identifier) @parameter))
((variadic_parameter_declaration (identifier) @parameter))
((label_name) @keyword)
((blank_identifier) @variable)
((identifier) @variable)
[
  "+" "-" "*" "/" "%" "==" "!=" "<=" ">=" "<" ">" "=" ":=" "&&" "||"
  "!" "&" "|" "^" "<<" ">>" "&^" "+=" "-=" "*=" "/=" "%=" "&=" "|="
  "^=" "<<=" ">>=" "&^=" "<-" "++" "--" "..."
] @operator
[
  "." "," ";" ":" "(" ")" "[" "]" "{" "}"
] @punctuation
`
