// pattern: Functional Core

package matcher

import (
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"codeprojects/internal/project"
)

// IDPrefix is prepended to a record path to form a match ID.
const IDPrefix = "codeprojects:"

// minNameQueryLen is the query length the name pass needs outside
// single-runner mode.
const minNameQueryLen = 3

// positionScale divides a record position into an app-pass relevance.
const positionScale = 20.0

// Source names the pass that produced a match.
type Source string

const (
	SourceName Source = "name"
	SourceApp  Source = "app"
)

// Query is one incoming search.
type Query struct {
	Text string
	// SingleRunner is set when the host asked only this plugin; it lifts the
	// minimum query length of the name pass.
	SingleRunner bool
}

// Match is a candidate for the host's result list.
type Match struct {
	Record    project.Record `json:"record"`
	Relevance float64        `json:"relevance"`
	Text      string         `json:"text"`
	ID        string         `json:"id"`
	Source    Source         `json:"source"`
}

// Options configures a Matcher.
type Options struct {
	ProjectNameMatches bool
	AppNameMatches     bool
	TriggerKeywords    []string
	// Exists reports whether a path is still on disk. Defaults to os.Stat.
	Exists func(path string) bool
}

// Matcher runs the name-prefix and app-invocation passes. It holds no
// per-query state.
type Matcher struct {
	projectNameMatches bool
	appNameMatches     bool
	trigger            *regexp.Regexp
	exists             func(string) bool
}

func New(opts Options) *Matcher {
	exists := opts.Exists
	if exists == nil {
		exists = pathExists
	}
	return &Matcher{
		projectNameMatches: opts.ProjectNameMatches,
		appNameMatches:     opts.AppNameMatches,
		trigger:            TriggerPattern(opts.TriggerKeywords),
		exists:             exists,
	}
}

// ProjectNameMatches reports whether the name-prefix pass is enabled.
func (m *Matcher) ProjectNameMatches() bool { return m.projectNameMatches }

// AppNameMatches reports whether the app-invocation pass is enabled.
func (m *Matcher) AppNameMatches() bool { return m.appNameMatches }

// TriggerPattern builds `^(?i:kw1|kw2)(?:\s+(?P<query>.*))?$`. It returns nil
// when there are no keywords, which disables the app-invocation pass.
func TriggerPattern(keywords []string) *regexp.Regexp {
	var quoted []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`^(?i:` + strings.Join(quoted, "|") + `)(?:\s+(?P<query>.*))?$`)
}

// SubQuery returns the text captured after a trigger keyword and whether the
// trigger matched at all.
func (m *Matcher) SubQuery(text string) (string, bool) {
	if m.trigger == nil {
		return "", false
	}
	sm := m.trigger.FindStringSubmatch(text)
	if sm == nil {
		return "", false
	}
	return sm[m.trigger.SubexpIndex("query")], true
}

// Match runs both passes over records. Name-pass results come first, each
// pass keeps record order. Records whose path no longer exists are skipped.
func (m *Matcher) Match(records []project.Record, q Query) []Match {
	var matches []Match

	queryLen := utf8.RuneCountInString(q.Text)
	if m.projectNameMatches && (queryLen >= minNameQueryLen || q.SingleRunner) {
		for _, r := range records {
			if !WordMatch(r.Name, q.Text) || !m.exists(r.Path) {
				continue
			}
			relevance := float64(queryLen) / float64(utf8.RuneCountInString(r.Name))
			matches = append(matches, newMatch(r, relevance, SourceName))
		}
	}

	if m.appNameMatches {
		sub, ok := m.SubQuery(q.Text)
		if !ok {
			return matches
		}
		for _, r := range records {
			if !WordMatch(r.Name, sub) || !m.exists(r.Path) {
				continue
			}
			matches = append(matches, newMatch(r, float64(r.Position)/positionScale, SourceApp))
		}
	}

	return matches
}

func newMatch(r project.Record, relevance float64, source Source) Match {
	return Match{
		Record:    r,
		Relevance: relevance,
		Text:      "Open " + r.Name,
		ID:        IDPrefix + r.Path,
		Source:    source,
	}
}

// Rank returns a copy of matches ordered by descending relevance. Ties keep
// their original order.
func Rank(matches []Match) []Match {
	ranked := slices.Clone(matches)
	slices.SortStableFunc(ranked, func(a, b Match) int {
		switch {
		case a.Relevance > b.Relevance:
			return -1
		case a.Relevance < b.Relevance:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
