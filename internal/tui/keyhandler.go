package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/detail"
	"github.com/pders01/dex/internal/search"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) bound(name string) string {
	return kh.modifierKey + name
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewNameFilter:
		return kh.app.nameInput.Focused()
	case ViewSearch:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case kh.config.Keys.Bindings.Back:
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		if kh.app.view == ViewSearch {
			if len(kh.app.searchList.Items()) > 0 {
				kh.app.searchInput.Blur()
				kh.app.searchList.Select(0)
			}
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewNameFilter:
		name := kh.app.nameInput.Value()
		kh.app.nameInput.Blur()
		kh.app.view = ViewList
		if req, ok := kh.app.ctrl.SetName(name); ok {
			return kh.app, kh.app.issue(req)
		}
		return kh.app, kh.app.syncScroll()

	case ViewSearch:
		if items := kh.app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewNameFilter:
		var cmd tea.Cmd
		kh.app.nameInput, cmd = kh.app.nameInput.Update(msg)
		return kh.app, cmd

	case ViewSearch:
		prev := sanitizeSearchInput(kh.app.searchInput.Value())
		var cmd tea.Cmd
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)
		if sanitizeSearchInput(kh.app.searchInput.Value()) != prev {
			return kh.app, tea.Batch(cmd, kh.app.scheduleSearch())
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case "ctrl+c", b.Quit:
		return kh.app, tea.Quit, true
	case b.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case b.Help:
		kh.app.help.ShowAll = !kh.app.help.ShowAll
		kh.app.layout()
		return kh.app, nil, true
	case kh.bound(b.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewList:
		return kh.handleListCustomKeys(key)
	case ViewTypeFilter:
		return kh.handleTypeFilterKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleListCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case kh.bound(b.NameFilter):
		kh.app.view = ViewNameFilter
		kh.app.nameInput.SetValue(kh.app.ctrl.Filter().Name)
		kh.app.nameInput.CursorEnd()
		kh.app.nameInput.Focus()
		return kh.app, nil, true

	case kh.bound(b.TypeFilter):
		kh.app.view = ViewTypeFilter
		kh.app.refreshTypeItems()
		return kh.app, nil, true

	case kh.bound(b.PageSize):
		limit := nextLimit(kh.config.List.LimitOptions, kh.app.ctrl.Filter().Limit)
		if req, ok := kh.app.ctrl.SetLimit(limit); ok {
			cmd := kh.app.issue(req)
			kh.app.setStatus(MsgPageSize(limit), StatusInfo)
			return kh.app, cmd, true
		}
		return kh.app, nil, true

	case kh.bound(b.Reload):
		req, ok := kh.app.ctrl.Reload()
		if !ok {
			return kh.app, nil, true
		}
		kh.app.err = nil
		cmd := kh.app.issue(req)
		kh.app.setStatus(MsgReloading, StatusInfo)
		return kh.app, cmd, true

	case kh.bound(b.OpenImage):
		if i, ok := kh.app.pokemonList.SelectedItem().(pokemonItem); ok && i.pokemon.Image != "" {
			return kh.app, kh.app.openImage(i.pokemon.Image), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleTypeFilterKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter", " ":
		i, ok := kh.app.typeList.SelectedItem().(typeItem)
		if !ok {
			return kh.app, nil, true
		}
		req, changed := kh.app.ctrl.ToggleType(i.typ.ID)
		kh.app.refreshTypeItems()
		if !changed {
			return kh.app, nil, true
		}
		return kh.app, kh.app.issue(req), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	page := kh.app.page

	if key == kh.bound(kh.config.Keys.Bindings.OpenImage) {
		if page.Pokemon != nil && page.Pokemon.Image != "" {
			return kh.app, kh.app.openImage(page.Pokemon.Image), true
		}
		return kh.app, nil, true
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
		if page.Pokemon == nil || n > len(page.Pokemon.Evolutions) {
			return kh.app, nil, true
		}
		evo := page.Pokemon.Evolutions[n-1]
		return kh.app, kh.app.navigate(detail.Route(evo.PokedexID)), true
	}

	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewList:
		kh.app.pokemonList, cmd = kh.app.pokemonList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := kh.app.pokemonList.SelectedItem().(pokemonItem); ok {
				kh.app.cameFromSearch = false
				return kh.app, kh.app.navigate(detail.Route(i.pokemon.PokedexID))
			}
		}
		return kh.app, tea.Batch(cmd, kh.app.syncScroll())

	case ViewTypeFilter:
		kh.app.typeList, cmd = kh.app.typeList.Update(msg)
		return kh.app, cmd

	case ViewSearch:
		if !kh.app.searchInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab", "/", "i":
				kh.app.searchInput.Focus()
				return kh.app, nil
			case "up":
				if len(kh.app.searchList.Items()) > 0 && kh.app.searchList.Index() == 0 {
					kh.app.searchInput.Focus()
					return kh.app, nil
				}
			}
		}

		kh.app.searchList, cmd = kh.app.searchList.Update(msg)
		if msg.String() == "enter" && !kh.app.searchInput.Focused() {
			if i, ok := kh.app.searchList.SelectedItem().(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
		}
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) selectSearchResult(result searchResultItem) (tea.Model, tea.Cmd) {
	if result.result == nil {
		return kh.app, nil
	}
	kh.app.cameFromSearch = true
	return kh.app, kh.app.navigate(detail.Route(result.result.Pokemon.PokedexID))
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewNameFilter:
		kh.app.nameInput.Blur()
		kh.app.view = ViewList
		return kh.app, kh.app.syncScroll()

	case ViewTypeFilter:
		kh.app.view = ViewList
		return kh.app, kh.app.syncScroll()

	case ViewSearch:
		kh.app.searchInput.Reset()
		kh.app.searchList.SetItems([]list.Item{})
		if kh.app.previousView == ViewDetail && kh.app.page.ID > 0 {
			kh.app.view = ViewDetail
			kh.app.setDetailStatus()
			return kh.app, nil
		}
		return kh.app, kh.app.navigate(detail.RootRoute)

	case ViewDetail:
		if kh.app.cameFromSearch {
			kh.app.cameFromSearch = false
			kh.app.view = ViewSearch
			kh.app.previousView = ViewList
			kh.app.searchInput.Blur()
			kh.app.updateListStatus()
			return kh.app, nil
		}
		return kh.app, kh.app.navigate(kh.app.page.BackRoute())

	default:
		return kh.app, tea.Quit
	}
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	if kh.app.view != ViewSearch {
		kh.app.previousView = kh.app.view
	}
	kh.app.view = ViewSearch
	kh.app.searchInput.Reset()
	kh.app.searchInput.Focus()
	kh.app.searchList.SetItems([]list.Item{})

	engineName := fmt.Sprintf("%T", kh.app.searchEngine)
	if ds, ok := kh.app.searchEngine.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			kh.app.setStatus(fmt.Sprintf("Search: %s • idx: %d", engineName, n), StatusInfo)
			return kh.app, nil
		}
	}
	kh.app.setStatus("Search: "+engineName, StatusInfo)
	return kh.app, nil
}

// sanitizeSearchInput trims, flattens whitespace and caps query length.
func sanitizeSearchInput(input string) string {
	input = strings.Join(strings.Fields(input), " ")
	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}
	return input
}

// nextLimit cycles through the configured page sizes.
func nextLimit(options []int, current int) int {
	if len(options) == 0 {
		return current
	}
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings

	switch kh.app.view {
	case ViewList:
		return []string{
			"enter: details",
			kh.bound(b.NameFilter) + ": name",
			kh.bound(b.TypeFilter) + ": types",
			kh.bound(b.PageSize) + ": page size",
			kh.bound(b.Reload) + ": reload",
			kh.bound(b.Search) + ": search",
		}

	case ViewNameFilter:
		return []string{"enter: apply", b.Back + ": cancel"}

	case ViewTypeFilter:
		return []string{"enter/space: toggle", b.Back + ": back"}

	case ViewDetail:
		help := []string{b.Back + ": " + strings.ToLower(detail.BackLabel), kh.bound(b.OpenImage) + ": image"}
		if kh.app.page.Pokemon != nil && len(kh.app.page.Pokemon.Evolutions) > 0 {
			help = append(help, fmt.Sprintf("1-%d: evolution", min(len(kh.app.page.Pokemon.Evolutions), 9)))
		}
		return help

	case ViewSearch:
		return []string{"enter: open", b.Back + ": back"}

	default:
		return []string{}
	}
}
