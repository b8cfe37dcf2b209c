package search

import (
	"fmt"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/pokeapi"
)

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	// Index adds or replaces the given Pokémon.
	Index(pokemons []pokeapi.Pokemon) error
	// Reset drops everything indexed so far.
	Reset() error
	Search(query string, limit int) ([]*Result, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one ranked hit.
type Result struct {
	Pokemon pokeapi.Pokemon
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "name", "types", "number"
	Text   string
	Weight float64
}

// New returns the backend selected by cfg.Search.Backend.
func New(cfg *config.Config) (Searcher, error) {
	switch cfg.Search.Backend {
	case "bleve":
		return NewBleveEngine()
	case "simple", "":
		return NewEngine(), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}

// MinQueryLength is the shortest query that produces results.
const MinQueryLength = 2
