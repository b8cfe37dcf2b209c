package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/dex/internal/config"
)

// keyMap mirrors the configured bindings for the help view. Dispatch
// itself happens in KeyHandler.
type keyMap struct {
	Open       key.Binding
	Back       key.Binding
	Search     key.Binding
	NameFilter key.Binding
	TypeFilter key.Binding
	PageSize   key.Binding
	Reload     key.Binding
	OpenImage  key.Binding
	Evolution  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings
	bind := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
	}
	return keyMap{
		Open:       bind("enter", "open"),
		Back:       bind(b.Back, "back"),
		Search:     bind(mod+b.Search, "search"),
		NameFilter: bind(mod+b.NameFilter, "name"),
		TypeFilter: bind(mod+b.TypeFilter, "types"),
		PageSize:   bind(mod+b.PageSize, "page size"),
		Reload:     bind(mod+b.Reload, "reload"),
		OpenImage:  bind(mod+b.OpenImage, "image"),
		Evolution:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "evolution")),
		Help:       bind(b.Help, "more"),
		Quit:       bind(b.Quit, "quit"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NameFilter, k.TypeFilter, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Back, k.Search},
		{k.NameFilter, k.TypeFilter, k.PageSize},
		{k.Reload, k.OpenImage, k.Evolution},
		{k.Help, k.Quit},
	}
}
