// Package detail loads and renders the page for a single Pokémon.
package detail

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/pokeapi"
)

const (
	// RootRoute is the list view.
	RootRoute = "/"
	// FailureMessage is shown for every kind of load failure.
	FailureMessage = "Failed to load Pokémon data"
	// BackLabel labels the single recovery action of a failed page.
	BackLabel = "Back to Pokédex"

	routePrefix = "/pokemon/"
)

// Route returns the detail route for a Pokédex id.
func Route(id int) string {
	return routePrefix + strconv.Itoa(id)
}

// ParseRoute extracts the id from a detail route.
func ParseRoute(route string) (int, bool) {
	rest, ok := strings.CutPrefix(route, routePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Page is the outcome of one detail load. Either Pokemon is set or Failed
// is true; there is no partial state.
type Page struct {
	ID      int
	Pokemon *pokeapi.Pokemon
	Failed  bool
	Err     error
}

// Message is the text of the error fallback.
func (p Page) Message() string {
	if p.Failed {
		return FailureMessage
	}
	return ""
}

// BackRoute is where the recovery action leads.
func (p Page) BackRoute() string {
	return RootRoute
}

// Fetcher loads detail pages.
type Fetcher struct {
	source pokeapi.Getter
}

func NewFetcher(source pokeapi.Getter) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch issues one fresh request for id. Not-found, transport and decode
// errors all collapse into a failed page.
func (f *Fetcher) Fetch(ctx context.Context, id int) Page {
	p, err := f.source.GetPokemon(ctx, id)
	if err != nil {
		debuglog.WithFields(map[string]any{
			"id":    id,
			"error": err.Error(),
		}).Warnf("detail fetch failed")
		return Page{ID: id, Failed: true, Err: err}
	}
	if p == nil {
		return Page{ID: id, Failed: true, Err: fmt.Errorf("empty response for pokemon %d", id)}
	}
	return Page{ID: id, Pokemon: p}
}

// Markdown renders the page, or the error fallback for a failed load.
func (p Page) Markdown() string {
	if p.Failed || p.Pokemon == nil {
		return fmt.Sprintf("# %s\n\n[%s](%s)\n", FailureMessage, BackLabel, RootRoute)
	}
	return Markdown(*p.Pokemon)
}

const barWidth = 20

// Markdown renders a Pokémon record.
func Markdown(p pokeapi.Pokemon) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", p.Name, p.Number())

	if len(p.Types) > 0 {
		fmt.Fprintf(&b, "**Types:** %s\n\n", strings.Join(p.TypeNames(), ", "))
	}

	b.WriteString("| Height | Weight |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", p.HeightText(), p.WeightText())

	if len(p.Stats) > 0 {
		b.WriteString("## Stats\n\n| Stat | Value | |\n|---|---:|---|\n")
		for _, s := range p.Stats {
			fmt.Fprintf(&b, "| %s | %d | `%s` |\n", s.Name, s.Value, Bar(s.Percent(), barWidth))
		}
		b.WriteString("\n")
	}

	if len(p.Evolutions) > 0 {
		b.WriteString("## Evolutions\n\n")
		for i, evo := range p.Evolutions {
			fmt.Fprintf(&b, "%d. %s %s\n", i+1, evo.Name, pokeapi.FormatNumber(evo.PokedexID))
		}
		b.WriteString("\n")
	}

	if p.Image != "" {
		fmt.Fprintf(&b, "[Artwork](%s)\n", p.Image)
	}

	return b.String()
}

// Bar draws a percentage as a fixed-width block bar.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent/100*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
