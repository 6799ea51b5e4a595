package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used for terminal output.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Order status colors, keyed by normalized status.
	StatusColors map[string]string
}

// Styles returns lipgloss styles for this theme bound to the default renderer.
func (t Theme) Styles() Styles {
	return t.stylesFor(lipgloss.DefaultRenderer())
}

func (t Theme) stylesFor(r *lipgloss.Renderer) Styles {
	fg := func(color string) lipgloss.Style {
		style := r.NewStyle()
		if color != "" {
			style = style.Foreground(lipgloss.Color(color))
		}
		return style
	}

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Title: fg(t.Text).Bold(true),
		Rule:  fg(t.Faint),

		renderer:     r,
		statusColors: t.StatusColors,
		text:         t.Text,
	}
}

// Styles contains pre-built lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Title lipgloss.Style
	Rule  lipgloss.Style

	renderer     *lipgloss.Renderer
	statusColors map[string]string
	text         string
}

// StatusStyle returns a bold style colored for the given order status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[normalizeStatus(status)]
	if color == "" {
		color = s.text
	}
	style := s.renderer.NewStyle().Bold(true)
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(status)
}

var themes = map[string]Theme{
	"nightfox": nightfoxTheme(),
	"kanagawa": kanagawaTheme(),
	"slate":    slateTheme(),
	"plain":    plainTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate", "Plain"}

// GetTheme returns a theme by name, ignoring case. "auto" and unknown
// names give the default theme.
func GetTheme(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return nightfoxTheme()
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan

		StatusColors: map[string]string{
			"placed":           "#738091", // comment
			"confirmed":        "#63cdcf", // cyan
			"preparing":        "#9d79d6", // magenta
			"ready":            "#719cd6", // blue
			"picked_up":        "#f4a261", // orange
			"out_for_delivery": "#f4a261", // orange
			"arrived":          "#dbc074", // yellow
			"delivered":        "#81b29a", // green
			"cancelled":        "#c94f6d", // red
			"failed":           "#c94f6d", // red
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Info:    "#7FB4CA", // springBlue

		StatusColors: map[string]string{
			"placed":           "#727169", // fujiGray
			"confirmed":        "#7FB4CA", // springBlue
			"preparing":        "#957FB8", // oniViolet
			"ready":            "#7E9CD8", // crystalBlue
			"picked_up":        "#FFA066", // surimiOrange
			"out_for_delivery": "#FFA066", // surimiOrange
			"arrived":          "#E6C384", // carpYellow
			"delivered":        "#98BB6C", // springGreen
			"cancelled":        "#E46876", // waveRed
			"failed":           "#E46876", // waveRed
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StatusColors: map[string]string{
			"placed":           "#64748b", // slate-500
			"confirmed":        "#38bdf8", // sky-400
			"preparing":        "#06b6d4", // cyan-500
			"ready":            "#0ea5e9", // sky-500
			"picked_up":        "#f59e0b", // amber-500
			"out_for_delivery": "#f59e0b", // amber-500
			"arrived":          "#fbbf24", // amber-400
			"delivered":        "#16a34a", // green-600
			"cancelled":        "#dc2626", // red-600
			"failed":           "#dc2626", // red-600
		},
	}
}

// plainTheme renders without any color.
func plainTheme() Theme {
	return Theme{Name: "Plain"}
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if strings.EqualFold(name, current) {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}
