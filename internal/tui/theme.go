package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mcncl/jsonedit/internal/config"
)

// Theme defines the colour palette of the editor. Colours are lipgloss
// ANSI 256-colour codes or hex strings.
type Theme struct {
	// Accent marks non-string values and the add control.
	Accent lipgloss.Color
	// Key is the colour of object keys and array indices.
	Key lipgloss.Color
	// Muted is used for help, help cards and the status bar.
	Muted lipgloss.Color
	// Error is used for rejected edits.
	Error lipgloss.Color
	// Selected is the background of the cursor row.
	Selected lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal colour scheme.
var DefaultTheme = Theme{
	Accent:   lipgloss.Color("205"),
	Key:      lipgloss.Color("39"),
	Muted:    lipgloss.Color("241"),
	Error:    lipgloss.Color("196"),
	Selected: lipgloss.Color("57"),
}

// ThemeFromConfig builds a Theme from the theme section of the config.
// Empty colours keep their default.
func ThemeFromConfig(c config.ThemeConfig) Theme {
	t := DefaultTheme
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&t.Accent, c.Accent)
	set(&t.Key, c.Key)
	set(&t.Muted, c.Muted)
	set(&t.Error, c.Error)
	set(&t.Selected, c.Selected)
	return t
}

type styles struct {
	key      lipgloss.Style
	value    lipgloss.Style
	literal  lipgloss.Style
	muted    lipgloss.Style
	card     lipgloss.Style
	selected lipgloss.Style
	err      lipgloss.Style
	header   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		key:      lipgloss.NewStyle().Foreground(t.Key),
		value:    lipgloss.NewStyle(),
		literal:  lipgloss.NewStyle().Foreground(t.Accent),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		card:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		selected: lipgloss.NewStyle().Background(t.Selected).Bold(true),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		header:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
	}
}
