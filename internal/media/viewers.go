package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition defines how an image viewer should be invoked.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable, for shell builtins like start.
	Command string   `toml:"command,omitempty"`
	Args    []string `toml:"args,omitempty"`
}

type ImageTypes struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

// ViewersConfig is the layout of viewers.toml.
type ViewersConfig struct {
	Image     ImageTypes                  `toml:"image"`
	Platforms map[string]PlatformConfig   `toml:"platforms"`
	Viewers   map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry manages viewer definitions
type ViewerRegistry struct {
	config ViewersConfig
}

// DefaultUserViewersPath is where user overrides are read from.
func DefaultUserViewersPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dex", "viewers.toml")
}

// NewViewerRegistry parses the embedded table, then merges any of the
// given user files that exist. Later files win.
func NewViewerRegistry(userPaths ...string) (*ViewerRegistry, error) {
	var cfg ViewersConfig
	if err := toml.Unmarshal(viewersTOML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	if cfg.Viewers == nil {
		cfg.Viewers = make(map[string]ViewerDefinition)
	}

	r := &ViewerRegistry{config: cfg}
	for _, path := range userPaths {
		if err := r.merge(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *ViewerRegistry) merge(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var user ViewersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, def := range user.Viewers {
		r.config.Viewers[name] = def
	}
	if len(user.Image.Extensions) > 0 {
		r.config.Image.Extensions = user.Image.Extensions
	}
	if len(user.Image.URLPatterns) > 0 {
		r.config.Image.URLPatterns = user.Image.URLPatterns
	}
	return nil
}

// Definition returns the viewer called name.
func (r *ViewerRegistry) Definition(name string) (ViewerDefinition, bool) {
	def, ok := r.config.Viewers[name]
	return def, ok
}

// Command builds the invocation of viewer name for url. Unknown viewers
// are run with the URL as their only argument.
func (r *ViewerRegistry) Command(name, url string) (*exec.Cmd, error) {
	def, ok := r.config.Viewers[name]
	if !ok {
		return exec.Command(name, url), nil
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, runtime.GOOS) {
		return nil, fmt.Errorf("%s not supported on %s", name, runtime.GOOS)
	}

	bin := name
	if def.Command != "" {
		bin = def.Command
	}
	args := append(slices.Clone(def.Args), url)
	return exec.Command(bin, args...), nil
}

// DefaultOpener returns the platform's generic opener.
func (r *ViewerRegistry) DefaultOpener() string {
	if p, ok := r.config.Platforms[runtime.GOOS]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	if p, ok := r.config.Platforms["fallback"]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	return "open"
}

// IsImage reports whether url looks like image artwork, by extension or
// by a known path pattern.
func (r *ViewerRegistry) IsImage(url string) bool {
	lower := strings.ToLower(url)
	if i := strings.IndexAny(lower, "?#"); i != -1 {
		lower = lower[:i]
	}

	if dot := strings.LastIndex(lower, "."); dot != -1 && dot > strings.LastIndex(lower, "/") {
		if slices.Contains(r.config.Image.Extensions, lower[dot+1:]) {
			return true
		}
	}
	for _, pattern := range r.config.Image.URLPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
