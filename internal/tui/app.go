package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/detail"
	"github.com/pders01/dex/internal/media"
	"github.com/pders01/dex/internal/pokeapi"
	"github.com/pders01/dex/internal/query"
	"github.com/pders01/dex/internal/scroll"
	"github.com/pders01/dex/internal/search"
)

// imageOpener hands artwork URLs to an external viewer.
type imageOpener interface {
	Open(url string) error
}

type App struct {
	ctx          context.Context
	config       *config.Config
	facets       *query.FacetLoader
	ctrl         *query.Controller
	observer     *scroll.Observer
	details      *detail.Fetcher
	api          pokeapi.Lister
	launcher     imageOpener
	searchEngine search.Searcher
	keyHandler   *KeyHandler
	keys         keyMap

	pokemonList list.Model
	typeList    list.Model
	searchList  list.Model
	searchInput textinput.Model
	nameInput   textinput.Model
	viewport    viewport.Model
	help        help.Model
	spinner     spinner.Model

	view           View
	previousView   View
	cameFromSearch bool // detail was opened from search results

	types         []pokeapi.Type
	page          detail.Page
	loadingDetail bool
	detailSeq     uint64
	searchSeq     int

	status     string
	statusKind StatusKind
	spinning   bool

	width           int
	height          int
	err             error
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(ctx context.Context, api pokeapi.API, cfg *config.Config) *App {
	ApplyColors(cfg.UI.Colors)

	pokemonList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	pokemonList.Title = "› pokédex"
	pokemonList.SetShowStatusBar(false)
	pokemonList.SetFilteringEnabled(false) // filtering is server side
	pokemonList.SetShowHelp(false)

	typeDelegate := list.NewDefaultDelegate()
	typeDelegate.ShowDescription = false
	typeList := list.New([]list.Item{}, typeDelegate, 0, 0)
	typeList.Title = "› types"
	typeList.SetShowStatusBar(false)
	typeList.SetFilteringEnabled(false)
	typeList.SetShowHelp(false)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› search results"
	searchList.SetShowStatusBar(false)
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search loaded Pokémon by name, type or number..."
	si.CharLimit = 256

	ni := textinput.New()
	ni.Placeholder = "Name contains..."
	ni.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	engine, err := search.New(cfg)
	if err != nil {
		debuglog.Warnf("search backend %q unavailable, using simple: %v", cfg.Search.Backend, err)
		engine = search.NewEngine()
	}

	app := &App{
		ctx:          ctx,
		config:       cfg,
		facets:       query.NewFacetLoader(api),
		ctrl:         query.New(cfg.List.DefaultLimit),
		observer:     scroll.NewObserver(),
		details:      detail.NewFetcher(api),
		api:          api,
		launcher:     media.NewLauncher(cfg),
		searchEngine: engine,
		keys:         newKeyMap(cfg),
		pokemonList:  pokemonList,
		typeList:     typeList,
		searchList:   searchList,
		searchInput:  si,
		nameInput:    ni,
		viewport:     viewport.New(0, 0),
		help:         help.New(),
		spinner:      sp,
		view:         ViewList,
		previousView: ViewList,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	detailCfg := a.config.UI.Detail
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > detailCfg.WordWrapMaxWidth {
		wordWrapWidth = detailCfg.WordWrapMaxWidth
	}
	if wordWrapWidth < detailCfg.WordWrapMinWidth {
		wordWrapWidth = detailCfg.WordWrapMinWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadFacets(),
		a.issue(a.ctrl.Start()),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		if a.page.Pokemon != nil || a.page.Failed {
			a.renderDetail()
		}
		return a, a.syncScroll()

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		if a.view == ViewDetail {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
		return a, nil

	case spinner.TickMsg:
		if !a.spinning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case facetsLoadedMsg:
		a.types = msg.types
		a.refreshTypeItems()
		if msg.err != nil {
			a.setStatus(MsgTypesFailed, StatusWarn)
		}
		return a, nil

	case pageLoadedMsg:
		return a, a.applyPage(msg)

	case detailLoadedMsg:
		if msg.seq != a.detailSeq {
			return a, nil
		}
		// the page may land while search is on top; it is shown on return
		a.page = msg.page
		a.loadingDetail = false
		if !a.ctrl.Loading() {
			a.stopSpinner()
		}
		a.renderDetail()
		if a.view == ViewDetail {
			a.setDetailStatus()
		}
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			a.runSearch(a.searchInput.Value())
		}
		return a, nil

	case imageOpenedMsg:
		a.err = nil
		a.setStatus("Opened "+truncateMiddle(msg.url, 60), StatusSuccess)
		return a, nil

	case errorMsg:
		a.err = msg.err
		a.stopSpinner()
		return a, nil
	}

	return a, nil
}

// layout sizes the widgets for the current window and help mode.
func (a *App) layout() {
	contentHeight := a.contentHeight()
	a.pokemonList.SetSize(a.width, contentHeight)
	a.typeList.SetSize(a.width, max(contentHeight-2, 3))
	a.searchList.SetSize(a.width, max(contentHeight-7, 5))
	a.viewport.Width = a.width
	a.viewport.Height = contentHeight
	a.help.Width = a.width

	inputWidth := a.width - 8
	if inputWidth < 10 {
		inputWidth = a.width
	}
	a.searchInput.Width = inputWidth
	a.nameInput.Width = inputWidth
}

// contentHeight is the window height minus the status bar and help.
func (a *App) contentHeight() int {
	chrome := 2 + lipgloss.Height(a.helpView())
	return max(a.height-chrome, 1)
}

// helpView shows the current view's actions, or every binding when expanded.
func (a *App) helpView() string {
	if a.help.ShowAll {
		return a.help.View(a.keys)
	}
	hints := append(a.keyHandler.GetHelpForCurrentView(), a.keys.Help.Help().Key+": more")
	return renderHelp(truncateEnd(strings.Join(hints, " • "), max(a.width-2, 10)))
}

// applyPage merges a list response and re-checks the scroll trigger.
func (a *App) applyPage(msg pageLoadedMsg) tea.Cmd {
	if !a.ctrl.Apply(msg.req, msg.items, msg.err) {
		return nil
	}
	if !a.loadingDetail {
		a.stopSpinner()
	}

	if msg.err != nil {
		a.err = wrapErr(fmt.Sprintf("loading page %d", msg.req.Page), msg.err)
		a.setStatus("Press "+a.keys.Reload.Help().Key+" to retry", StatusError)
		return nil
	}
	a.err = nil

	if msg.req.Page == 1 {
		a.observer.Arm()
	}
	if err := a.searchEngine.Index(msg.items); err != nil {
		debuglog.Warnf("indexing page %d: %v", msg.req.Page, err)
	}

	cmd := a.refreshPokemonItems()
	if a.view != ViewDetail {
		a.updateListStatus()
	}
	return tea.Batch(cmd, a.syncScroll())
}

// issue starts a list request. Page 1 requests clear the list first.
func (a *App) issue(req query.Request) tea.Cmd {
	var cmds []tea.Cmd
	if req.Page == 1 {
		a.observer.Disarm()
		a.observer.Release()
		if err := a.searchEngine.Reset(); err != nil {
			debuglog.Warnf("resetting search index: %v", err)
		}
		cmds = append(cmds, a.refreshPokemonItems())
		a.pokemonList.ResetSelected()
	}
	a.setStatus(a.loadingStatus(), StatusInfo)
	cmds = append(cmds, a.startSpinner(), a.fetchPage(req))
	return tea.Batch(cmds...)
}

// syncScroll observes the last card and advances when it comes into view.
func (a *App) syncScroll() tea.Cmd {
	results := a.ctrl.Results()
	if len(results) == 0 {
		a.observer.Release()
		return nil
	}

	target := strconv.Itoa(results[len(results)-1].PokedexID)
	a.observer.Observe(target)
	if !a.observer.Notify(target, a.lastCardVisible()) {
		return nil
	}

	req, ok := a.ctrl.Advance()
	if !ok {
		return nil
	}
	return a.issue(req)
}

// lastCardVisible treats the list's last page as the end of the viewport.
func (a *App) lastCardVisible() bool {
	return a.view == ViewList && a.pokemonList.Paginator.OnLastPage()
}

func (a *App) refreshPokemonItems() tea.Cmd {
	results := a.ctrl.Results()
	items := make([]list.Item, len(results))
	for i, p := range results {
		items[i] = pokemonItem{pokemon: p}
	}
	return a.pokemonList.SetItems(items)
}

func (a *App) refreshTypeItems() {
	filter := a.ctrl.Filter()
	items := make([]list.Item, len(a.types))
	for i, t := range a.types {
		items[i] = typeItem{typ: t, selected: filter.HasType(t.ID)}
	}
	a.typeList.SetItems(items)
}

func (a *App) updateListStatus() {
	switch {
	case a.ctrl.Empty():
		a.setStatus(MsgEmpty, StatusWarn)
	case a.ctrl.EndOfData():
		a.setStatus(MsgAllLoaded(len(a.ctrl.Results())), StatusSuccess)
	default:
		a.setStatus(MsgLoadedCount(len(a.ctrl.Results()), a.ctrl.Page()), StatusInfo)
	}
}

// selectedTypeNames resolves the filter's type ids to names.
func (a *App) selectedTypeNames() []string {
	filter := a.ctrl.Filter()
	var names []string
	for _, t := range a.types {
		if filter.HasType(t.ID) {
			names = append(names, t.Name)
		}
	}
	return names
}

// navigate switches to a route: the list at "/" or a detail page.
func (a *App) navigate(route string) tea.Cmd {
	if route == detail.RootRoute {
		a.view = ViewList
		a.page = detail.Page{}
		a.loadingDetail = false
		a.cameFromSearch = false
		a.detailSeq++
		if a.ctrl.Loading() {
			a.setStatus(a.loadingStatus(), StatusInfo)
			return tea.Batch(a.startSpinner(), a.syncScroll())
		}
		a.stopSpinner()
		a.updateListStatus()
		return a.syncScroll()
	}
	if id, ok := detail.ParseRoute(route); ok {
		return a.openDetail(id)
	}
	debuglog.Warnf("unknown route %q", route)
	return nil
}

func (a *App) openDetail(id int) tea.Cmd {
	a.view = ViewDetail
	a.loadingDetail = true
	a.detailSeq++
	a.page = detail.Page{ID: id}
	a.viewport.SetContent("")
	a.setStatus(MsgLoadingEntry, StatusInfo)
	return tea.Batch(a.startSpinner(), a.fetchDetail(a.detailSeq, id))
}

func (a *App) setDetailStatus() {
	switch {
	case a.loadingDetail:
		a.setStatus(MsgLoadingEntry, StatusInfo)
	case a.page.Failed:
		a.setStatus(detail.FailureMessage, StatusError)
	case a.page.Pokemon != nil:
		a.setStatus(a.page.Pokemon.Number()+" "+a.page.Pokemon.Name, StatusInfo)
	}
}

// loadingStatus is the status text for an outstanding list fetch.
func (a *App) loadingStatus() string {
	if a.ctrl.Page() > 1 {
		return MsgLoadingMore
	}
	return MsgLoading
}

func (a *App) renderDetail() {
	md := a.page.Markdown()
	content := md
	if r, err := a.getRenderer(); err == nil {
		if rendered, err := r.Render(md); err == nil {
			content = rendered
		} else {
			debuglog.Warnf("rendering detail: %v", err)
		}
	}
	a.viewport.SetContent(content)
	a.viewport.GotoTop()
}

func (a *App) runSearch(q string) {
	results, err := a.searchEngine.Search(q, a.config.Search.MaxResults)
	if err != nil {
		a.err = wrapErr("search", err)
		return
	}
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = searchResultItem{result: r}
	}
	a.searchList.SetItems(items)
	if strings.TrimSpace(q) == "" {
		a.setStatus("", StatusInfo)
	} else if len(results) == 0 {
		a.setStatus(MsgNoResults, StatusInfo)
	} else {
		a.setStatus(MsgResultsCount(len(results)), StatusInfo)
	}
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) stopSpinner() {
	a.spinning = false
}

func (a *App) View() string {
	contentHeight := a.contentHeight()
	var content string

	switch a.view {
	case ViewList:
		content = a.listView(contentHeight)
	case ViewNameFilter:
		content = renderCentered(a.width, contentHeight,
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render("› filter by name"),
				"",
				renderInputFrame(a.nameInput.View(), a.nameInput.Focused(), a.nameInput.Width),
				"",
				renderHelp("Enter: apply • empty clears • Esc: cancel"),
			))
	case ViewTypeFilter:
		subtitle := "enter/space: toggle • esc: back"
		if len(a.types) == 0 {
			subtitle = MsgTypesFailed
		}
		content = lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› filter by type", subtitle, a.width),
			a.typeList.View(),
		)
	case ViewDetail:
		if a.loadingDetail {
			content = renderCentered(a.width, contentHeight, renderMuted(MsgLoadingEntry))
		} else {
			content = a.viewport.View()
		}
	case ViewSearch:
		helpText := ""
		if a.searchInput.Focused() {
			helpText = "Type to search • Tab/↓: results • Esc: back"
		} else if len(a.searchList.Items()) > 0 {
			helpText = "↑↓: navigate • Enter: select • Tab/↑: search box • Esc: back"
		} else {
			helpText = "No results found • Tab/↑: search box • Esc: back"
		}
		content = lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› search", fmt.Sprintf("%d Pokémon loaded", len(a.ctrl.Results())), a.width),
			"",
			renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
			renderMuted(helpText),
			"",
			a.searchList.View(),
		)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar(), a.helpView())
}

func (a *App) listView(height int) string {
	if a.ctrl.Empty() {
		return renderCentered(a.width, height, GetWelcomeMessage(MsgEmpty))
	}
	if len(a.ctrl.Results()) == 0 && a.ctrl.Loading() {
		return renderCentered(a.width, height, GetWelcomeMessage(MsgLoading))
	}

	title := "› pokédex"
	if summary := MsgFilterSummary(a.ctrl.Filter().Name, a.selectedTypeNames()); summary != "" {
		title += " (" + summary + ")"
	}
	a.pokemonList.Title = truncateEnd(title, max(a.width-4, 10))

	view := a.pokemonList.View()
	if a.ctrl.Loading() && a.ctrl.Page() > 1 {
		view = lipgloss.JoinVertical(lipgloss.Left, view, renderMuted("  "+a.spinner.View()+" "+MsgLoadingMore))
	}
	return view
}

func (a *App) statusBar() string {
	var left string
	switch {
	case a.err != nil:
		left = StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err))
		if a.status != "" {
			left += " " + renderMuted(a.status)
		}
	case a.spinning:
		left = a.spinner.View() + " " + a.statusKind.style().Render(a.status)
	default:
		left = a.statusKind.style().Render(a.status)
	}

	right := renderMuted(fmt.Sprintf("%s • limit %d", CompactLogo, a.ctrl.Filter().Limit))
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return StatusBarStyle.Width(a.width).Render(truncateEnd(left, max(a.width-2, 0)))
	}
	return StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

type pokemonItem struct {
	pokemon pokeapi.Pokemon
}

func (i pokemonItem) Title() string {
	return renderPokemonLine(i.pokemon)
}

func (i pokemonItem) Description() string {
	if len(i.pokemon.Types) == 0 {
		return renderMuted("—")
	}
	return renderTypeBadges(i.pokemon.TypeNames())
}

func (i pokemonItem) FilterValue() string { return i.pokemon.Name }

type typeItem struct {
	typ      pokeapi.Type
	selected bool
}

func (i typeItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = SelectedMark.Render("[x]")
	}
	return mark + " " + TypeStyle(i.typ.Name).Render(i.typ.Name)
}

func (i typeItem) Description() string { return "" }
func (i typeItem) FilterValue() string { return i.typ.Name }

type searchResultItem struct {
	result *search.Result
}

func (i searchResultItem) Title() string {
	return renderPokemonLine(i.result.Pokemon)
}

func (i searchResultItem) Description() string {
	fields := make([]string, 0, len(i.result.Matches))
	for _, m := range i.result.Matches {
		fields = append(fields, m.Field)
	}
	desc := renderTypeBadges(i.result.Pokemon.TypeNames())
	if len(fields) > 0 {
		desc += renderMuted(" • matched " + strings.Join(fields, ", "))
	}
	return desc
}

func (i searchResultItem) FilterValue() string { return i.result.Pokemon.Name }

type facetsLoadedMsg struct {
	types []pokeapi.Type
	err   error
}

type pageLoadedMsg struct {
	req   query.Request
	items []pokeapi.Pokemon
	err   error
}

type detailLoadedMsg struct {
	seq  uint64
	page detail.Page
}

type searchDebounceFireMsg struct {
	seq int
}

type imageOpenedMsg struct {
	url string
}

type errorMsg struct {
	err error
}
