package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/dex/internal/validation"
)

const (
	DefaultBaseURL = "https://nestjs-pokedex-api.vercel.app"
	DefaultLimit   = 50
)

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	List   ListConfig   `mapstructure:"list"`
	Images ImageConfig  `mapstructure:"images"`
	Search SearchConfig `mapstructure:"search"`
	UI     UIConfig     `mapstructure:"ui"`
	Media  MediaConfig  `mapstructure:"media"`
	Keys   KeyConfig    `mapstructure:"keys"`
	Log    LogConfig    `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type ListConfig struct {
	DefaultLimit int   `mapstructure:"default_limit"`
	LimitOptions []int `mapstructure:"limit_options"`
}

// ImageConfig lists the hosts Pokémon artwork may be opened from.
type ImageConfig struct {
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

type SearchConfig struct {
	Backend    string `mapstructure:"backend"`
	MaxResults int    `mapstructure:"max_results"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Search     string `mapstructure:"search"`
	NameFilter string `mapstructure:"name_filter"`
	TypeFilter string `mapstructure:"type_filter"`
	PageSize   string `mapstructure:"page_size"`
	Reload     string `mapstructure:"reload"`
	OpenImage  string `mapstructure:"open_image"`
	Back       string `mapstructure:"back"`
	Help       string `mapstructure:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "dex/1.0 (https://github.com/pders01/dex)",
		},
		List: ListConfig{
			DefaultLimit: DefaultLimit,
			LimitOptions: []int{10, 20, 50, 100},
		},
		Images: ImageConfig{
			AllowedHosts: []string{"nestjs-pokedex-api.vercel.app", "raw.githubusercontent.com"},
		},
		Search: SearchConfig{
			Backend:    "bleve",
			MaxResults: 20,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 40,
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Image: []string{"open"},
			},
			Linux: MediaPlayers{
				Image: []string{"feh", "sxiv", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Image: []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "q",
				Search:     "s",
				NameFilter: "f",
				TypeFilter: "t",
				PageSize:   "p",
				Reload:     "r",
				OpenImage:  "o",
				Back:       "esc",
				Help:       "?",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".dex", "dex.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "dex")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.Log.File = expandPath(config.Log.File)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if err := validation.ValidateBaseURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if c.API.HTTPTimeout <= 0 {
		return fmt.Errorf("api.http_timeout must be positive")
	}
	if len(c.List.LimitOptions) == 0 {
		return fmt.Errorf("list.limit_options must not be empty")
	}
	for _, opt := range c.List.LimitOptions {
		if opt <= 0 {
			return fmt.Errorf("list.limit_options contains non-positive value %d", opt)
		}
	}
	if !slices.Contains(c.List.LimitOptions, c.List.DefaultLimit) {
		return fmt.Errorf("list.default_limit %d is not one of %v", c.List.DefaultLimit, c.List.LimitOptions)
	}
	switch c.Search.Backend {
	case "bleve", "simple":
	default:
		return fmt.Errorf("search.backend must be bleve or simple, got %q", c.Search.Backend)
	}
	return nil
}

// ImagePlayers returns the image viewers configured for the running OS.
func (c *Config) ImagePlayers() []string {
	switch runtime.GOOS {
	case "darwin":
		return c.Media.Darwin.Image
	case "windows":
		return c.Media.Windows.Image
	default:
		return c.Media.Linux.Image
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// flatten returns dotted leaf keys so partial config files keep the
// defaults of sibling keys.
func flatten(cfg *Config) map[string]any {
	out := make(map[string]any)
	for section, values := range sections(cfg) {
		walk(section, values, out)
	}
	return out
}

func walk(prefix string, values map[string]any, out map[string]any) {
	for key, value := range values {
		full := prefix + "." + key
		if nested, ok := value.(map[string]any); ok {
			walk(full, nested, out)
			continue
		}
		out[full] = value
	}
}

func sections(cfg *Config) map[string]map[string]any {
	players := func(p MediaPlayers) map[string]any {
		return map[string]any{"image": p.Image}
	}

	return map[string]map[string]any{
		"api": {
			"base_url":     cfg.API.BaseURL,
			"http_timeout": cfg.API.HTTPTimeout.String(),
			"user_agent":   cfg.API.UserAgent,
		},
		"list": {
			"default_limit": cfg.List.DefaultLimit,
			"limit_options": cfg.List.LimitOptions,
		},
		"images": {
			"allowed_hosts": cfg.Images.AllowedHosts,
		},
		"search": {
			"backend":     cfg.Search.Backend,
			"max_results": cfg.Search.MaxResults,
		},
		"ui": {
			"colors": map[string]any{
				"primary":    cfg.UI.Colors.Primary,
				"secondary":  cfg.UI.Colors.Secondary,
				"accent":     cfg.UI.Colors.Accent,
				"background": cfg.UI.Colors.Background,
				"surface":    cfg.UI.Colors.Surface,
				"text":       cfg.UI.Colors.Text,
				"muted":      cfg.UI.Colors.Muted,
				"error":      cfg.UI.Colors.Error,
				"success":    cfg.UI.Colors.Success,
			},
			"detail": map[string]any{
				"word_wrap_max_width": cfg.UI.Detail.WordWrapMaxWidth,
				"word_wrap_min_width": cfg.UI.Detail.WordWrapMinWidth,
			},
		},
		"media": {
			"darwin":         players(cfg.Media.Darwin),
			"linux":          players(cfg.Media.Linux),
			"windows":        players(cfg.Media.Windows),
			"default_opener": cfg.Media.DefaultOpener,
		},
		"keys": {
			"modifier": cfg.Keys.Modifier,
			"bindings": map[string]any{
				"quit":        cfg.Keys.Bindings.Quit,
				"search":      cfg.Keys.Bindings.Search,
				"name_filter": cfg.Keys.Bindings.NameFilter,
				"type_filter": cfg.Keys.Bindings.TypeFilter,
				"page_size":   cfg.Keys.Bindings.PageSize,
				"reload":      cfg.Keys.Bindings.Reload,
				"open_image":  cfg.Keys.Bindings.OpenImage,
				"back":        cfg.Keys.Bindings.Back,
				"help":        cfg.Keys.Bindings.Help,
			},
		},
		"log": {
			"level": cfg.Log.Level,
			"file":  cfg.Log.File,
		},
	}
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings for TOML readability
	for section, values := range sections(config) {
		v.Set(section, values)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
