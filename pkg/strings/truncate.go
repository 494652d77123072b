package strings

import (
	"strings"
)

// DefaultCellMaxLen is the column width descriptions are clipped to in table
// output.
const DefaultCellMaxLen = 60

// minCellLen leaves room for at least one character plus the ellipsis.
const minCellLen = 4

// TruncateCell flattens a string to a single line and clips it to maxLen
// runes, appending "..." when content was dropped. Agent and MCP server
// descriptions arrive as free-form multi-line text; tables need one bounded
// line per row.
func TruncateCell(s string, maxLen int) string {
	if maxLen < minCellLen {
		maxLen = minCellLen
	}

	// Collapse newlines, tabs and runs of spaces into single spaces.
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
