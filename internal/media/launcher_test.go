package media

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/dex/internal/config"
)

func newTestLauncher(t *testing.T) (*Launcher, *[]*exec.Cmd) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := config.TestConfig()
	cfg.Media.Linux.Image = []string{"dex-no-such-viewer"}
	cfg.Media.Darwin.Image = []string{"dex-no-such-viewer"}
	cfg.Media.Windows.Image = []string{"dex-no-such-viewer"}
	cfg.Media.DefaultOpener = "dex-test-opener"

	l := NewLauncher(cfg)
	var started []*exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	return l, &started
}

func TestLauncherFallsBackToDefaultOpener(t *testing.T) {
	l, _ := newTestLauncher(t)
	assert.Equal(t, "dex-test-opener", l.Viewer())
}

func TestOpenAllowedImage(t *testing.T) {
	l, started := newTestLauncher(t)

	url := "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/25.png"
	require.NoError(t, l.Open(url))
	require.Len(t, *started, 1)
	args := (*started)[0].Args
	assert.Equal(t, "dex-test-opener", args[0])
	assert.Equal(t, url, args[len(args)-1])
}

func TestOpenRejectsForeignHost(t *testing.T) {
	l, started := newTestLauncher(t)

	for _, url := range []string{
		"https://evil.example.org/25.png",
		"file:///etc/passwd",
		"",
	} {
		err := l.Open(url)
		require.Error(t, err, url)
		assert.Contains(t, err.Error(), "refusing to open image")
	}
	assert.Empty(t, *started, "nothing launched")
}

func TestOpenReportsStartFailure(t *testing.T) {
	l, _ := newTestLauncher(t)
	l.start = func(*exec.Cmd) error { return errors.New("exec format error") }

	err := l.Open("https://nestjs-pokedex-api.vercel.app/images/1.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start dex-test-opener")
}
