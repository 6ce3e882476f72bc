// pattern: Functional Core

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// matchedIndexes returns the byte offsets of name that fuzzily match query.
// Whitespace in the query is ignored, so "my pro" marks "myPro" in
// "myProject".
func matchedIndexes(name, query string) map[int]bool {
	pattern := strings.Join(strings.Fields(query), "")
	if pattern == "" {
		return nil
	}
	found := fuzzy.Find(pattern, []string{name})
	if len(found) == 0 {
		return nil
	}
	idx := make(map[int]bool, len(found[0].MatchedIndexes))
	for _, i := range found[0].MatchedIndexes {
		idx[i] = true
	}
	return idx
}

// highlight renders name with matched runes in match and the rest in base.
func highlight(name, query string, base, match lipgloss.Style) string {
	idx := matchedIndexes(name, query)
	if len(idx) == 0 {
		return base.Render(name)
	}

	var b strings.Builder
	var run strings.Builder
	inMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inMatch {
			b.WriteString(match.Render(run.String()))
		} else {
			b.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}

	for i, r := range name {
		if idx[i] != inMatch {
			flush()
			inMatch = idx[i]
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}
