package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/debuglog"
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("pokemon not found")

// StatusError reports any other non-2xx response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Lister fetches one page of Pokémon.
type Lister interface {
	ListPokemons(ctx context.Context, q ListQuery) ([]Pokemon, error)
}

// TypeLister fetches the type enumeration.
type TypeLister interface {
	ListTypes(ctx context.Context) ([]Type, error)
}

// Getter fetches a single Pokémon. Implementations must bypass any cache.
type Getter interface {
	GetPokemon(ctx context.Context, id int) (*Pokemon, error)
}

// API is everything the views need from the backend.
type API interface {
	Lister
	TypeLister
	Getter
}

var _ API = (*Client)(nil)

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const defaultTimeout = 15 * time.Second

func NewClient(cfg *config.Config) (*Client, error) {
	base, err := parseBaseURL(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: cfg.API.UserAgent,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) ListTypes(ctx context.Context) ([]Type, error) {
	var types []Type
	if err := c.get(ctx, []string{"types"}, nil, false, &types); err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	return types, nil
}

// ListQuery is the full state behind one /pokemons request.
type ListQuery struct {
	Page  int
	Limit int
	Name  string
	Types []int
}

// Values encodes the query. Empty name and type filters are omitted.
func (q ListQuery) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.Name != "" {
		values.Set("name", q.Name)
	}
	if len(q.Types) > 0 {
		ids := make([]string, len(q.Types))
		for i, id := range q.Types {
			ids[i] = strconv.Itoa(id)
		}
		values.Set("types", strings.Join(ids, ","))
	}
	return values
}

func (c *Client) ListPokemons(ctx context.Context, q ListQuery) ([]Pokemon, error) {
	if q.Page < 1 {
		return nil, fmt.Errorf("page must be at least 1, got %d", q.Page)
	}
	if q.Limit < 1 {
		return nil, fmt.Errorf("limit must be positive, got %d", q.Limit)
	}

	var pokemons []Pokemon
	if err := c.get(ctx, []string{"pokemons"}, q.Values(), false, &pokemons); err != nil {
		return nil, fmt.Errorf("listing pokemons page %d: %w", q.Page, err)
	}
	return pokemons, nil
}

// GetPokemon always asks for a fresh copy of the record.
func (c *Client) GetPokemon(ctx context.Context, id int) (*Pokemon, error) {
	if id < 1 {
		return nil, fmt.Errorf("invalid pokedex id %d", id)
	}

	var p Pokemon
	if err := c.get(ctx, []string{"pokemons", strconv.Itoa(id)}, nil, true, &p); err != nil {
		return nil, fmt.Errorf("fetching pokemon %d: %w", id, err)
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, segments []string, values url.Values, fresh bool, dest any) error {
	reqURL := c.baseURL.JoinPath(segments...)
	if len(values) > 0 {
		reqURL.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if fresh {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	logger := debuglog.WithFields(map[string]any{
		"method": req.Method,
		"url":    reqURL.String(),
	})
	logger.Debugf("api request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.With("error", err.Error()).Warnf("api request failed")
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logger = logger.With("status", resp.StatusCode).With("duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Debugf("api response")
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		logger.Warnf("api response")
		return &StatusError{Code: resp.StatusCode, Path: reqURL.Path}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		logger.With("error", err.Error()).Warnf("api decode failed")
		return fmt.Errorf("decoding response: %w", err)
	}
	logger.Debugf("api response")
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = config.DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
