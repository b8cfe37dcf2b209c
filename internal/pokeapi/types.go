// Package pokeapi is a client for the Pokédex REST API.
package pokeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is a Pokémon type. It is both a filter facet and a per-Pokémon tag.
type Type struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Evolution is a lightweight reference to another Pokémon.
type Evolution struct {
	PokedexID int    `json:"pokedexId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
}

// Pokemon mirrors the payload of /pokemons and /pokemons/{id}. Listing
// responses may omit Evolutions.
type Pokemon struct {
	PokedexID  int         `json:"pokedexId"`
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	Types      []Type      `json:"types"`
	Height     Measure     `json:"height"`
	Weight     Measure     `json:"weight"`
	Stats      Stats       `json:"stats"`
	Evolutions []Evolution `json:"evolutions,omitempty"`
}

// Number formats the Pokédex number the way the cards show it: #001.
func (p Pokemon) Number() string {
	return FormatNumber(p.PokedexID)
}

// FormatNumber pads id to at least three digits.
func FormatNumber(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// TypeNames returns the type names in API order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, len(p.Types))
	for i, t := range p.Types {
		names[i] = t.Name
	}
	return names
}

// HeightText renders height in metres; the API reports decimetres.
func (p Pokemon) HeightText() string {
	return p.Height.Scaled("m")
}

// WeightText renders weight in kilograms; the API reports hectograms.
func (p Pokemon) WeightText() string {
	return p.Weight.Scaled("kg")
}

// Measure is a raw physical measurement that may be missing or malformed.
type Measure struct {
	Value float64
	Known bool
}

// Scaled divides by ten and formats with one decimal and the given unit.
func (m Measure) Scaled(unit string) string {
	if !m.Known {
		return "Unknown"
	}
	return strconv.FormatFloat(m.Value/10, 'f', 1, 64) + " " + unit
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	*m = Measure{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		var s string
		if strErr := json.Unmarshal(trimmed, &s); strErr != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if v, err := n.Float64(); err == nil {
		m.Value = v
		m.Known = true
	}
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// MaxStatValue is the highest base stat a Pokémon can have.
const MaxStatValue = 255

// Stat is one named base stat.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Percent maps the stat onto a 0-100 bar.
func (s Stat) Percent() float64 {
	if s.Value <= 0 {
		return 0
	}
	pct := float64(s.Value) / MaxStatValue * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Stats accepts either an array of {name, value} objects or an object
// mapping stat name to value. Object entries keep the API's order; values
// that are not numbers become zero.
type Stats []Stat

func (s *Stats) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode stats array: %w", err)
		}
		out := make(Stats, 0, len(raw))
		for _, r := range raw {
			out = append(out, Stat{Name: r.Name, Value: numberOrZero(r.Value)})
		}
		*s = out
		return nil
	case '{':
		out, err := decodeStatObject(trimmed)
		if err != nil {
			return fmt.Errorf("decode stats object: %w", err)
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("decode stats: unexpected %q", string(trimmed[:1]))
	}
}

// decodeStatObject walks the object token by token so stats keep the
// order the API sent them in.
func decodeStatObject(data []byte) (Stats, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := Stats{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, Stat{Name: name, Value: numberOrZero(value)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func numberOrZero(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}
