package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/query"
)

const searchDebounce = 150 * time.Millisecond

func (a *App) loadFacets() tea.Cmd {
	return func() tea.Msg {
		types := a.facets.Load(a.ctx)
		return facetsLoadedMsg{types: types, err: a.facets.Err()}
	}
}

func (a *App) fetchPage(req query.Request) tea.Cmd {
	return func() tea.Msg {
		items, err := a.api.ListPokemons(a.ctx, req.Query())
		if err != nil {
			debuglog.WithFields(map[string]any{
				"page":       req.Page,
				"generation": req.Generation,
			}).Warnf("list fetch failed: %v", err)
		}
		return pageLoadedMsg{req: req, items: items, err: err}
	}
}

func (a *App) fetchDetail(seq uint64, id int) tea.Cmd {
	return func() tea.Msg {
		return detailLoadedMsg{seq: seq, page: a.details.Fetch(a.ctx, id)}
	}
}

// scheduleSearch runs the search once typing pauses.
func (a *App) scheduleSearch() tea.Cmd {
	a.searchSeq++
	seq := a.searchSeq
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceFireMsg{seq: seq}
	})
}

func (a *App) openImage(url string) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.Open(url); err != nil {
			return errorMsg{err: wrapErr("opening image", err)}
		}
		return imageOpenedMsg{url: url}
	}
}
