package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/dex/internal/pokeapi"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

type fakeServer struct {
	*httptest.Server
	pokemons []pokeapi.Pokemon
	lists    atomic.Int32
	lastURL  atomic.Value
}

func newFakeServer(t *testing.T, n int) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	for i := 1; i <= n; i++ {
		fs.pokemons = append(fs.pokemons, pokeapi.Pokemon{
			PokedexID: i,
			Name:      fmt.Sprintf("Pokémon %d", i),
			Types:     []pokeapi.Type{{ID: 12, Name: "Plante"}},
		})
	}
	if n >= 25 {
		fs.pokemons[24].Name = "Pikachu"
		fs.pokemons[24].Types = []pokeapi.Type{{ID: 4, Name: "Électrik"}}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /types", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]pokeapi.Type{{ID: 3, Name: "Feu"}, {ID: 4, Name: "Électrik"}})
	})
	mux.HandleFunc("GET /pokemons", func(w http.ResponseWriter, r *http.Request) {
		fs.lists.Add(1)
		fs.lastURL.Store(r.URL.String())
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		name := strings.ToLower(r.URL.Query().Get("name"))

		var matched []pokeapi.Pokemon
		for _, p := range fs.pokemons {
			if strings.Contains(strings.ToLower(p.Name), name) {
				matched = append(matched, p)
			}
		}
		start := min((page-1)*limit, len(matched))
		end := min(start+limit, len(matched))
		_ = json.NewEncoder(w).Encode(matched[start:end])
	})
	mux.HandleFunc("GET /pokemons/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		if id < 1 || id > len(fs.pokemons) {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(fs.pokemons[id-1])
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "dex dev")
	assert.Contains(t, out, "Terminal Pokédex")
	assert.Contains(t, out, "github.com/pders01/dex")
}

func TestGenerateConfigCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configFile := filepath.Join(home, ".config", "dex", "config.toml")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "generate"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(configFile)
	require.NoError(t, err, "config file should exist")
	assert.Contains(t, out.String(), "Generated default configuration at:")

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nestjs-pokedex-api.vercel.app")
}

func TestGenerateConfigRejectsOutsidePaths(t *testing.T) {
	_, err := execute(t, "config", "generate", "--path", "/etc/dex.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config path")
}

func TestTypesCommand(t *testing.T) {
	srv := newFakeServer(t, 0)

	out, err := execute(t, "types", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Feu")
	assert.Contains(t, out, "Électrik")
}

func TestListCommandFilters(t *testing.T) {
	srv := newFakeServer(t, 30)

	out, err := execute(t, "list", "--api", srv.URL, "--name", "pika", "--type", "4", "--type", "3", "--limit", "10")
	require.NoError(t, err)

	assert.Contains(t, out, "#025")
	assert.Contains(t, out, "Pikachu")
	assert.Contains(t, out, "All 1 Pokémon loaded")
	assert.Equal(t, "/pokemons?limit=10&name=pika&page=1&types=3%2C4", srv.lastURL.Load())
}

func TestListCommandPage(t *testing.T) {
	srv := newFakeServer(t, 30)

	out, err := execute(t, "list", "--api", srv.URL, "--limit", "10", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Pokémon 11")
	assert.NotContains(t, out, "Pokémon 21")
	assert.Contains(t, out, "10 Pokémon • page 2")
}

func TestListCommandAll(t *testing.T) {
	srv := newFakeServer(t, 25)

	out, err := execute(t, "list", "--api", srv.URL, "--limit", "10", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "All 25 Pokémon loaded")
	assert.EqualValues(t, 3, srv.lists.Load())
}

func TestListCommandEmpty(t *testing.T) {
	srv := newFakeServer(t, 5)

	out, err := execute(t, "list", "--api", srv.URL, "--name", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No Pokémon found matching your filters.")
}

func TestListCommandRejectsBadFlags(t *testing.T) {
	srv := newFakeServer(t, 5)

	_, err := execute(t, "list", "--api", srv.URL, "--page", "0")
	assert.Error(t, err)

	_, err = execute(t, "list", "--api", srv.URL, "--all", "--page", "3")
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	srv := newFakeServer(t, 25)

	out, err := execute(t, "show", "25", "--raw", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "# Pikachu #025")

	out, err = execute(t, "show", "25", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Pikachu")
}

func TestShowCommandFailure(t *testing.T) {
	srv := newFakeServer(t, 3)

	_, err := execute(t, "show", "9999", "--api", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load Pokémon data")
	assert.ErrorIs(t, err, pokeapi.ErrNotFound)

	_, err = execute(t, "show", "abc", "--api", srv.URL)
	assert.Error(t, err)
}

func TestInvalidAPIFlag(t *testing.T) {
	_, err := execute(t, "types", "--api", "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --api")
}
