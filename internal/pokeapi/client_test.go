package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/dex/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListTypes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/types", r.URL.Path)
		assert.Equal(t, "dex-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, []Type{{ID: 1, Name: "Plante"}, {ID: 2, Name: "Feu"}})
	})

	types, err := client.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Type{{ID: 1, Name: "Plante"}, {ID: 2, Name: "Feu"}}, types)
}

func TestListPokemonsQuery(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  map[string]string
		omit  []string
	}{
		{
			name:  "page and limit only",
			query: ListQuery{Page: 1, Limit: 50},
			want:  map[string]string{"page": "1", "limit": "50"},
			omit:  []string{"name", "types"},
		},
		{
			name:  "name filter",
			query: ListQuery{Page: 2, Limit: 20, Name: "char"},
			want:  map[string]string{"page": "2", "limit": "20", "name": "char"},
			omit:  []string{"types"},
		},
		{
			name:  "type filter joined with commas",
			query: ListQuery{Page: 1, Limit: 10, Types: []int{3, 7}},
			want:  map[string]string{"page": "1", "limit": "10", "types": "3,7"},
			omit:  []string{"name"},
		},
		{
			name:  "name needing escaping",
			query: ListQuery{Page: 1, Limit: 10, Name: "mr mime&x"},
			want:  map[string]string{"name": "mr mime&x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/pokemons", r.URL.Path)
				q := r.URL.Query()
				for key, value := range tt.want {
					assert.Equal(t, value, q.Get(key), key)
				}
				for _, key := range tt.omit {
					assert.False(t, q.Has(key), "unexpected %s parameter", key)
				}
				writeJSON(t, w, []Pokemon{})
			})

			_, err := client.ListPokemons(context.Background(), tt.query)
			require.NoError(t, err)
		})
	}
}

func TestListPokemonsRejectsInvalidQuery(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := client.ListPokemons(context.Background(), ListQuery{Page: 0, Limit: 10})
	assert.Error(t, err)
	_, err = client.ListPokemons(context.Background(), ListQuery{Page: 1, Limit: 0})
	assert.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestGetPokemonSendsNoCache(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pokemons/25", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"pokedexId": 25,
			"name": "Pikachu",
			"image": "https://raw.githubusercontent.com/x/25.png",
			"types": [{"id": 13, "name": "Électrik"}],
			"height": 4,
			"weight": 60,
			"stats": {"HP": 35, "attack": 55},
			"evolutions": [{"pokedexId": 26, "name": "Raichu", "image": ""}]
		}`))
	})

	p, err := client.GetPokemon(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", p.Name)
	assert.Equal(t, "#025", p.Number())
	assert.Equal(t, "0.4 m", p.HeightText())
	assert.Equal(t, "6.0 kg", p.WeightText())
	assert.Equal(t, Stats{{Name: "HP", Value: 35}, {Name: "attack", Value: 55}}, p.Stats)
	require.Len(t, p.Evolutions, 1)
	assert.Equal(t, 26, p.Evolutions[0].PokedexID)
}

func TestGetPokemonErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
				assert.Equal(t, "/pokemons/1", statusErr.Path)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"pokedexId": `,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decoding response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			p, err := client.GetPokemon(context.Background(), 1)
			require.Error(t, err)
			assert.Nil(t, p)
			tt.check(t, err)
		})
	}
}

func TestGetPokemonInvalidID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GetPokemon(context.Background(), 0)
	assert.Error(t, err)
}

func TestRequestHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []Type{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListTypes(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: config.DefaultBaseURL},
		{input: "pokedex.example.org", want: "https://pokedex.example.org"},
		{input: "http://127.0.0.1:8080/", want: "http://127.0.0.1:8080"},
		{input: "https://api.example.org/v1/?x=1#frag", want: "https://api.example.org/v1"},
		{input: "ftp://api.example.org", wantErr: true},
		{input: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := parseBaseURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/types", r.URL.Path)
		writeJSON(t, w, []Type{})
	}))
	defer srv.Close()

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL + "/v1/"
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.ListTypes(context.Background())
	require.NoError(t, err)
}
