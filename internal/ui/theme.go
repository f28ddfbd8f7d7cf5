package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvi/internal/config"
	"github.com/oakwood-commons/kvi/internal/render"
)

// Theme holds the styles of the interactive view.
type Theme struct {
	// Lines styles the rendered tree rows.
	Lines  render.Styles
	Cursor lipgloss.Style
	Input  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// ThemeFromConfig builds a Theme from a palette. Empty color tokens leave
// the terminal default in place.
func ThemeFromConfig(tc config.ThemeConfig, hyperlinks bool, indent int) Theme {
	fg := func(tok string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(colorOf(tok))
	}
	highlight := lipgloss.NewStyle().Bold(true).
		Foreground(colorOf(tc.HighlightFG)).
		Background(colorOf(tc.HighlightBG))

	return Theme{
		Lines: render.Styles{
			Key:        fg(tc.Key),
			String:     fg(tc.String),
			Number:     fg(tc.Number),
			Bool:       fg(tc.Bool),
			Null:       fg(tc.Null),
			Link:       fg(tc.Link).Underline(true),
			Comment:    fg(tc.Comment).Italic(true),
			Punct:      fg(tc.Punct),
			Hint:       fg(tc.Hint).Faint(true),
			Highlight:  highlight,
			Hyperlinks: hyperlinks,
			Indent:     indent,
		},
		Cursor: lipgloss.NewStyle().Foreground(colorOf(tc.CursorFG)).Background(colorOf(tc.CursorBG)),
		Input:  fg(tc.InputFG),
		Status: fg(tc.Status),
		Error:  fg(tc.Error).Bold(true),
	}
}

// PlainTheme draws without color. The cursor and highlights use reverse
// video so they stay visible.
func PlainTheme(indent int) Theme {
	return Theme{
		Lines: render.Styles{
			Highlight: lipgloss.NewStyle().Reverse(true),
			Indent:    indent,
		},
		Cursor: lipgloss.NewStyle().Reverse(true),
	}
}

func colorOf(tok string) color.Color {
	if tok == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(tok)
}
