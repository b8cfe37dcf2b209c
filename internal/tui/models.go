package tui

type View int

const (
	ViewList View = iota
	ViewNameFilter
	ViewTypeFilter
	ViewDetail
	ViewSearch
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewNameFilter:
		return "name-filter"
	case ViewTypeFilter:
		return "type-filter"
	case ViewDetail:
		return "detail"
	case ViewSearch:
		return "search"
	default:
		return "unknown"
	}
}
