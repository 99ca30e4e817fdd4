package report

import (
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/guidecrawl/internal/database"
)

// groupTable renders per-value restaurant counts.
func groupTable(label string, groups []database.GroupCount) markdown.TableSet {
	rows := make([][]string, len(groups))
	for i, gc := range groups {
		rows[i] = []string{gc.Value, strconv.Itoa(gc.Count)}
	}
	return markdown.TableSet{
		Header: []string{label, "Restaurants"},
		Rows:   rows,
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
