package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/dex/internal/config"
)

const AppName = "dex"

// ASCII art logo lines for dex - canonical definition
var LogoLines = []string{
	"██████▄  ▄██████ ▀██  ██▀",
	"██   ▀██ ██        ▀████▀ ",
	"██    ██ ██████▀    ▐██▌  ",
	"██   ▄██ ██        ▄████▄ ",
	"██████▀  ▀██████ ▄██  ██▄",
}

const CompactLogo = `dex ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#FFE66D"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#FF6B6B"),
}

// Brand colors. ApplyColors replaces them from the ui.colors config.
var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	WarnColor    = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

// Styled components
var (
	LogoStyle       lipgloss.Style
	TitleStyle      lipgloss.Style
	HeaderStyle     lipgloss.Style
	StatusBarStyle  lipgloss.Style
	NumberStyle     lipgloss.Style
	HelpStyle       lipgloss.Style
	SeparatorStyle  lipgloss.Style
	SelectedMark    lipgloss.Style
	StatusInfoStyle lipgloss.Style

	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyColors switches the palette to the configured colors. Empty values
// keep the built-in color.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&BackgroundColor, c.Background)
	set(&SurfaceColor, c.Surface)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)
	HeaderStyle = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	StatusBarStyle = lipgloss.NewStyle().Foreground(MutedColor).Padding(0, 1)
	NumberStyle = lipgloss.NewStyle().Foreground(MutedColor).Faint(true)
	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	SeparatorStyle = lipgloss.NewStyle().Foreground(MutedColor)
	SelectedMark = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)

	StatusInfoStyle = lipgloss.NewStyle().Foreground(MutedColor)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StatusWarnStyle = lipgloss.NewStyle().Foreground(WarnColor)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
}

// typeColors follows the usual game palette. The API names types in
// French; English names are accepted too.
var typeColors = map[string]lipgloss.Color{
	"normal":   "#A8A77A",
	"feu":      "#EE8130",
	"fire":     "#EE8130",
	"eau":      "#6390F0",
	"water":    "#6390F0",
	"électrik": "#F7D02C",
	"electric": "#F7D02C",
	"plante":   "#7AC74C",
	"grass":    "#7AC74C",
	"glace":    "#96D9D6",
	"ice":      "#96D9D6",
	"combat":   "#C22E28",
	"fighting": "#C22E28",
	"poison":   "#A33EA1",
	"sol":      "#E2BF65",
	"ground":   "#E2BF65",
	"vol":      "#A98FF3",
	"flying":   "#A98FF3",
	"psy":      "#F95587",
	"psychic":  "#F95587",
	"insecte":  "#A6B91A",
	"bug":      "#A6B91A",
	"roche":    "#B6A136",
	"rock":     "#B6A136",
	"spectre":  "#735797",
	"ghost":    "#735797",
	"dragon":   "#6F35FC",
	"ténèbres": "#705746",
	"dark":     "#705746",
	"acier":    "#B7B7CE",
	"steel":    "#B7B7CE",
	"fée":      "#D685AD",
	"fairy":    "#D685AD",
}

// TypeStyle returns the badge style for a type name.
func TypeStyle(name string) lipgloss.Style {
	color, ok := typeColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		color = MutedColor
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1A1A2E")).
		Background(color).
		Bold(true).
		Padding(0, 1)
}

func GetWelcomeMessage(message string) string {
	return GetCompactBanner(message)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the boxed logo printed by `dex version`.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("   Terminal Pokédex %s", versionTag))
	} else {
		lines = append(lines, "   Terminal Pokédex")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	output := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◓ ◒ ◓ ◒ ◓")

	center := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		center.Render(output),
		center.MarginBottom(1).Render(separator),
	)
}
