package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/dex/internal/pokeapi"
)

// renderHeader draws a view title with an optional muted subtitle under it,
// both cut to the window width.
func renderHeader(title, subtitle string, width int) string {
	header := HeaderStyle.Render(truncateEnd(title, width-2))
	if subtitle == "" {
		return header
	}
	return lipgloss.JoinVertical(lipgloss.Top, header, renderMuted(truncateEnd(subtitle, width-2)))
}

// renderPokemonLine is the "#025 Pikachu" heading shared by list and
// search rows.
func renderPokemonLine(p pokeapi.Pokemon) string {
	return NumberStyle.Render(p.Number()) + " " + p.Name
}

// renderTypeBadges renders each type as a colored chip, in API order.
func renderTypeBadges(names []string) string {
	badges := make([]string, len(names))
	for i, name := range names {
		badges[i] = TypeStyle(name).Render(name)
	}
	return strings.Join(badges, " ")
}

// renderInputFrame boxes a text input; focus turns the border Pokédex red.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	border := MutedColor
	if focused {
		border = PrimaryColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}
