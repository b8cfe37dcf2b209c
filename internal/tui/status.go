package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoading      = "Loading Pokémon…"
	MsgLoadingMore  = "Loading more Pokémon..."
	MsgLoadingEntry = "Loading Pokémon data…"
	MsgEmpty        = "No Pokémon found matching your filters."
	MsgNoResults    = "No results"
	MsgReloading    = "Reloading…"
	MsgTypesFailed  = "Type filters unavailable"
)

func MsgAllLoaded(n int) string {
	if n == 1 {
		return "All 1 Pokémon loaded"
	}
	return fmt.Sprintf("All %d Pokémon loaded", n)
}

func MsgLoadedCount(n, page int) string {
	return fmt.Sprintf("%d Pokémon • page %d", n, page)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgPageSize(limit int) string {
	return fmt.Sprintf("Page size: %d", limit)
}

// MsgFilterSummary describes the active filters, or "" without any.
func MsgFilterSummary(name string, typeNames []string) string {
	var parts []string
	if name != "" {
		parts = append(parts, fmt.Sprintf("name: %q", name))
	}
	if len(typeNames) > 0 {
		parts = append(parts, "types: "+strings.Join(typeNames, ", "))
	}
	return strings.Join(parts, " • ")
}
