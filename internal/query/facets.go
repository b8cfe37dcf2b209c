package query

import (
	"context"
	"sync"

	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/pokeapi"
)

// FacetLoader fetches the type enumeration once. Later calls return the
// first outcome; a failure yields an empty list and is not retried.
type FacetLoader struct {
	source pokeapi.TypeLister

	once  sync.Once
	types []pokeapi.Type
	err   error
}

func NewFacetLoader(source pokeapi.TypeLister) *FacetLoader {
	return &FacetLoader{source: source}
}

func (l *FacetLoader) Load(ctx context.Context) []pokeapi.Type {
	l.once.Do(func() {
		types, err := l.source.ListTypes(ctx)
		if err != nil {
			debuglog.WithFields(map[string]any{"error": err.Error()}).Warnf("type facets unavailable")
			l.err = err
			l.types = []pokeapi.Type{}
			return
		}
		debuglog.Debugf("loaded %d type facets", len(types))
		l.types = types
	})
	return l.types
}

// Err returns the failure from the first load, if any.
func (l *FacetLoader) Err() error {
	return l.err
}
