// pattern: Functional Core

package matcher

import "strings"

// WordMatch reports whether query matches name: the first whitespace-separated
// token must be a case-insensitive prefix of name and every further token
// must occur, case-insensitively, in the rest of name after that prefix.
// A query without tokens never matches.
//
//	WordMatch("myProject", "my pro") == true
//	WordMatch("myProject", "pro my") == false
func WordMatch(name, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return false
	}

	lowerName := strings.ToLower(name)
	first := strings.ToLower(tokens[0])
	if !strings.HasPrefix(lowerName, first) {
		return false
	}

	rest := lowerName[len(first):]
	for _, tok := range tokens[1:] {
		if !strings.Contains(rest, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}
