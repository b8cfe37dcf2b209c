package search

import (
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/dex/internal/pokeapi"
)

// bleveEngine keeps an in-memory index of the Pokémon loaded this session.
type bleveEngine struct {
	idx      bleve.Index
	pokemons map[int]pokeapi.Pokemon
}

// NewBleveEngine creates an empty memory-only index.
func NewBleveEngine() (Searcher, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &bleveEngine{idx: idx, pokemons: make(map[int]pokeapi.Pokemon)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true

	types := bleve.NewTextFieldMapping()
	types.Analyzer = standard.Name
	types.Store = true

	number := bleve.NewTextFieldMapping()
	number.Analyzer = standard.Name
	number.Store = false

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("types", types)
	dm.AddFieldMappingsAt("number", number)

	im.DefaultMapping = dm
	return im
}

func (b *bleveEngine) Index(pokemons []pokeapi.Pokemon) error {
	batch := b.idx.NewBatch()
	for _, p := range pokemons {
		if err := batch.Index(docID(p.PokedexID), map[string]any{
			"name":   p.Name,
			"types":  strings.Join(p.TypeNames(), " "),
			"number": numberText(p.PokedexID),
		}); err != nil {
			return err
		}
		b.pokemons[p.PokedexID] = p
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) Reset() error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}
	old := b.idx
	b.idx = idx
	b.pokemons = make(map[int]pokeapi.Pokemon)
	return old.Close()
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = len(b.pokemons)
	}

	// OR of per-term matches with boosts: name^4, types^2, number^1
	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		qn := bleve.NewMatchQuery(tok)
		qn.SetField("name")
		qn.SetBoost(4.0)
		qs = append(qs, qn)
		qnp := bleve.NewPrefixQuery(tok)
		qnp.SetField("name")
		qnp.SetBoost(3.5)
		qs = append(qs, qnp)

		qt := bleve.NewMatchQuery(tok)
		qt.SetField("types")
		qt.SetBoost(2.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("types")
		qtp.SetBoost(1.8)
		qs = append(qs, qtp)

		qnum := bleve.NewMatchQuery(tok)
		qnum.SetField("number")
		qnum.SetBoost(1.0)
		qs = append(qs, qnum)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	q := bleve.NewDisjunctionQuery(qs...)
	srch := bleve.NewSearchRequestOptions(q, limit, 0, false)
	srch.Fields = []string{"name", "types"}
	res, err := b.idx.Search(srch)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.Atoi(strings.TrimPrefix(h.ID, "pokemon:"))
		if err != nil {
			continue
		}
		p, ok := b.pokemons[id]
		if !ok {
			continue
		}
		r := &Result{Pokemon: p, Score: h.Score}
		if name, ok := h.Fields["name"].(string); ok {
			r.Matches = append(r.Matches, Match{Field: "name", Text: name})
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func docID(pokedexID int) string { return "pokemon:" + strconv.Itoa(pokedexID) }
