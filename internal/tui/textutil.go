package tui

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// truncateEnd fits s into limit terminal cells, ending with an ellipsis
// when cut. Styled strings keep their escape sequences intact.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	return ansi.Truncate(s, limit, ellipsis)
}

// truncateMiddle keeps both ends of s, which suits URLs.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	width := ansi.StringWidth(s)
	if width <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	return ansi.Truncate(s, left, "") + ellipsis + ansi.TruncateLeft(s, width-right, "")
}

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
