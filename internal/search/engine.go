package search

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pders01/dex/internal/pokeapi"
)

// Engine scores loaded Pokémon without building an index.
type Engine struct {
	pokemons map[int]pokeapi.Pokemon
	order    []int
}

// NewEngine creates a new search engine
func NewEngine() *Engine {
	return &Engine{pokemons: make(map[int]pokeapi.Pokemon)}
}

func (e *Engine) Index(pokemons []pokeapi.Pokemon) error {
	for _, p := range pokemons {
		if _, ok := e.pokemons[p.PokedexID]; !ok {
			e.order = append(e.order, p.PokedexID)
		}
		e.pokemons[p.PokedexID] = p
	}
	return nil
}

func (e *Engine) Reset() error {
	e.pokemons = make(map[int]pokeapi.Pokemon)
	e.order = nil
	return nil
}

func (e *Engine) DocCount() (int, error) {
	return len(e.pokemons), nil
}

// Search ranks loaded Pokémon by name, type and number.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	var results []*Result
	for _, id := range e.order {
		if result := e.searchPokemon(e.pokemons[id], terms); result != nil {
			results = append(results, result)
		}
	}

	// Stable keeps Pokédex load order among equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (e *Engine) searchPokemon(p pokeapi.Pokemon, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if nameScore := e.scoreField(p.Name, terms, 4.0); nameScore > 0 {
		matches = append(matches, Match{Field: "name", Text: p.Name, Weight: nameScore})
		totalScore += nameScore
	}

	types := strings.Join(p.TypeNames(), " ")
	if typeScore := e.scoreField(types, terms, 2.0); typeScore > 0 {
		matches = append(matches, Match{Field: "types", Text: types, Weight: typeScore})
		totalScore += typeScore
	}

	number := numberText(p.PokedexID)
	if numScore := e.scoreField(number, terms, 1.0); numScore > 0 {
		matches = append(matches, Match{Field: "number", Text: p.Number(), Weight: numScore})
		totalScore += numScore
	}

	if totalScore > 0 {
		return &Result{Pokemon: p, Score: totalScore, Matches: matches}
	}
	return nil
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// numberText lists the padded and bare forms so "025" and "25" both hit.
func numberText(id int) string {
	return strings.TrimPrefix(pokeapi.FormatNumber(id), "#") + " " + strconv.Itoa(id)
}

// tokenize breaks text into lower-cased searchable terms
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 { // Skip single chars
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if len([]rune(current.String())) > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
