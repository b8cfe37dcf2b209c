package media

import (
	"fmt"
	"os/exec"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/validation"
)

// Launcher opens Pokémon artwork in an external viewer. Only URLs on the
// configured image hosts are ever launched.
type Launcher struct {
	validator     *validation.ImageURLValidator
	registry      *ViewerRegistry
	imageViewer   string
	defaultOpener string
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewViewerRegistry(DefaultUserViewersPath())
	if err != nil {
		debuglog.Warnf("viewer definitions unavailable: %v", err)
		registry = &ViewerRegistry{config: ViewersConfig{Viewers: map[string]ViewerDefinition{}}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = registry.DefaultOpener()
	}

	l := &Launcher{
		validator:     validation.NewImageURLValidator(cfg.Images.AllowedHosts),
		registry:      registry,
		imageViewer:   findCommand(cfg.ImagePlayers()...),
		defaultOpener: defaultOpener,
		start:         startDetached,
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}
	return l
}

// Viewer returns the program images are opened with.
func (l *Launcher) Viewer() string {
	return l.imageViewer
}

// Open validates url against the image allow-list and hands it to the
// viewer. Non-image URLs on an allowed host go to the default opener.
func (l *Launcher) Open(url string) error {
	normalized, err := l.validator.Validate(url)
	if err != nil {
		return fmt.Errorf("refusing to open image: %w", err)
	}

	playerName := l.imageViewer
	if !l.registry.IsImage(normalized) {
		playerName = l.defaultOpener
	}
	if playerName == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.Command(playerName, normalized)
	if err != nil {
		cmd = exec.Command(playerName, normalized)
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", playerName, err)
	}
	debuglog.WithFields(map[string]any{"viewer": playerName, "url": normalized}).Debugf("opened image")
	return nil
}

// startDetached starts GUI applications without waiting for them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
