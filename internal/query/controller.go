// Package query owns the list view's filter and pagination state and turns
// it into /pokemons requests.
package query

import (
	"slices"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/pokeapi"
)

// Filter is the user-controlled part of a list query.
type Filter struct {
	Name  string
	Types []int
	Limit int
}

// Equal compares filters, treating Types as a set.
func (f Filter) Equal(o Filter) bool {
	return f.Name == o.Name && f.Limit == o.Limit && slices.Equal(normalizeTypes(f.Types), normalizeTypes(o.Types))
}

// HasType reports whether id is one of the selected types.
func (f Filter) HasType(id int) bool {
	return slices.Contains(f.Types, id)
}

// Active reports whether a name or type filter narrows the list.
func (f Filter) Active() bool {
	return f.Name != "" || len(f.Types) > 0
}

// Request is one page fetch. Generation ties it to the filter state that
// produced it.
type Request struct {
	Generation uint64
	Page       int
	Filter     Filter
}

// Query converts the request into the API client's query.
func (r Request) Query() pokeapi.ListQuery {
	return pokeapi.ListQuery{
		Page:  r.Page,
		Limit: r.Filter.Limit,
		Name:  r.Filter.Name,
		Types: slices.Clone(r.Filter.Types),
	}
}

// Controller is the pagination state machine behind the list view. It is
// not safe for concurrent use; the TUI drives it from its update loop.
type Controller struct {
	filter     Filter
	page       int
	results    []pokeapi.Pokemon
	endOfData  bool
	loading    bool
	err        error
	generation uint64
}

// New returns a controller at page 1 with no results. Start issues the
// first request.
func New(limit int) *Controller {
	if limit <= 0 {
		limit = config.DefaultLimit
	}
	return &Controller{
		filter: Filter{Limit: limit},
		page:   1,
	}
}

// Start resets to page 1 and returns the first request.
func (c *Controller) Start() Request {
	return c.reset()
}

// SetName changes the name substring filter.
func (c *Controller) SetName(name string) (Request, bool) {
	if name == c.filter.Name {
		return Request{}, false
	}
	c.filter.Name = name
	return c.reset(), true
}

// ToggleType adds or removes one type from the selection.
func (c *Controller) ToggleType(id int) (Request, bool) {
	types := slices.Clone(c.filter.Types)
	if i := slices.Index(types, id); i >= 0 {
		types = slices.Delete(types, i, i+1)
	} else {
		types = append(types, id)
	}
	return c.SetTypes(types)
}

// SetTypes replaces the type selection.
func (c *Controller) SetTypes(ids []int) (Request, bool) {
	ids = normalizeTypes(ids)
	if slices.Equal(ids, c.filter.Types) {
		return Request{}, false
	}
	c.filter.Types = ids
	return c.reset(), true
}

// SetLimit changes the page size.
func (c *Controller) SetLimit(limit int) (Request, bool) {
	if limit <= 0 || limit == c.filter.Limit {
		return Request{}, false
	}
	c.filter.Limit = limit
	return c.reset(), true
}

// Advance moves to the next page. It is refused while a fetch is
// outstanding, after the last page, and while an error is pending.
func (c *Controller) Advance() (Request, bool) {
	if c.loading || c.endOfData || c.err != nil {
		return Request{}, false
	}
	c.page++
	return c.issue(), true
}

// Reload re-issues the current page after a failed fetch. Without a
// pending error it starts over from page 1.
func (c *Controller) Reload() (Request, bool) {
	if c.loading {
		return Request{}, false
	}
	if c.err == nil {
		return c.reset(), true
	}
	c.err = nil
	return c.issue(), true
}

// Apply merges a response. It returns false when the response belongs to
// a superseded request and was dropped.
func (c *Controller) Apply(req Request, items []pokeapi.Pokemon, err error) bool {
	if !c.loading || req.Generation != c.generation || req.Page != c.page {
		debuglog.WithFields(map[string]any{
			"generation": req.Generation,
			"page":       req.Page,
			"current":    c.generation,
		}).Debugf("dropping stale list response")
		return false
	}

	c.loading = false

	if err != nil {
		debuglog.WithFields(map[string]any{
			"page":  req.Page,
			"error": err.Error(),
		}).Warnf("list fetch failed")
		c.err = err
		return true
	}

	c.err = nil
	if req.Page == 1 {
		c.results = slices.Clone(items)
	} else {
		c.results = append(c.results, items...)
	}
	c.endOfData = len(items) < req.Filter.Limit
	return true
}

func (c *Controller) Filter() Filter {
	f := c.filter
	f.Types = slices.Clone(f.Types)
	return f
}

func (c *Controller) Page() int { return c.page }

// Results returns the accumulated Pokémon. Callers must not modify it.
func (c *Controller) Results() []pokeapi.Pokemon { return c.results }

func (c *Controller) EndOfData() bool { return c.endOfData }

func (c *Controller) Loading() bool { return c.loading }

func (c *Controller) Err() error { return c.err }

// Generation identifies the current filter state.
func (c *Controller) Generation() uint64 { return c.generation }

// Empty reports a finished first page with nothing in it.
func (c *Controller) Empty() bool {
	return !c.loading && c.err == nil && c.endOfData && len(c.results) == 0
}

func (c *Controller) reset() Request {
	c.generation++
	c.page = 1
	c.results = nil
	c.endOfData = false
	c.err = nil
	return c.issue()
}

func (c *Controller) issue() Request {
	c.loading = true
	return Request{
		Generation: c.generation,
		Page:       c.page,
		Filter:     c.Filter(),
	}
}

func normalizeTypes(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
