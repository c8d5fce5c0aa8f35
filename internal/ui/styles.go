package ui

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qguru/internal/config"
)

// Styles holds the resolved colours of the browser.
type Styles struct {
	Main         tcell.Style
	Header       tcell.Style
	LineNumber   tcell.Style
	Jump         tcell.Style
	Selection    tcell.Style
	Output       tcell.Style
	Link         tcell.Style
	Menu         tcell.Style
	MenuSelected tcell.Style
	MenuDisabled tcell.Style
	syntax       map[string]tcell.Style
}

func NewStyles(theme config.Theme) Styles {
	fg := parseColor(theme.Foreground, tcell.ColorWhite)
	bg := parseColor(theme.Background, tcell.ColorBlack)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	outBg := parseColor(theme.OutputBackground, bg)
	menuBg := parseColor(theme.MenuBackground, bg)

	st := Styles{
		Main: main,
		Header: tcell.StyleDefault.
			Foreground(parseColor(theme.HeaderForeground, fg)).
			Background(parseColor(theme.HeaderBackground, bg)).
			Bold(true),
		LineNumber: main.Foreground(parseColor(theme.LineNumberForeground, fg)),
		Jump:       main.Background(parseColor(theme.JumpBackground, bg)),
		Selection: tcell.StyleDefault.
			Foreground(parseColor(theme.SelectionForeground, fg)).
			Background(parseColor(theme.SelectionBackground, tcell.ColorNavy)),
		Output: tcell.StyleDefault.Foreground(parseColor(theme.OutputForeground, fg)).Background(outBg),
		Link: tcell.StyleDefault.
			Foreground(parseColor(theme.LinkForeground, tcell.ColorBlue)).
			Background(outBg).
			Underline(true),
		Menu: tcell.StyleDefault.Foreground(parseColor(theme.MenuForeground, fg)).Background(menuBg),
		MenuSelected: tcell.StyleDefault.
			Foreground(parseColor(theme.MenuSelectedForeground, bg)).
			Background(parseColor(theme.MenuSelectedBackground, fg)),
		MenuDisabled: tcell.StyleDefault.Foreground(parseColor(theme.MenuDisabledForeground, tcell.ColorGray)).Background(menuBg),
		syntax:       make(map[string]tcell.Style),
	}
	for kind, color := range map[string]string{
		"keyword":     theme.SyntaxKeyword,
		"string":      theme.SyntaxString,
		"comment":     theme.SyntaxComment,
		"type":        theme.SyntaxType,
		"function":    theme.SyntaxFunction,
		"number":      theme.SyntaxNumber,
		"constant":    theme.SyntaxConstant,
		"operator":    theme.SyntaxOperator,
		"punctuation": theme.SyntaxPunctuation,
		"field":       theme.SyntaxField,
		"builtin":     theme.SyntaxBuiltin,
		"variable":    theme.SyntaxVariable,
		"parameter":   theme.SyntaxParameter,
	} {
		st.syntax[kind] = main.Foreground(parseColor(color, fg))
	}
	return st
}

func (st Styles) forHighlight(kind string) (tcell.Style, bool) {
	style, ok := st.syntax[kind]
	if !ok {
		return st.Main, false
	}
	return style, true
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
