// pattern: Functional Core

package project

// Record is one openable project. Records are immutable once loaded; a reload
// replaces the whole slice.
type Record struct {
	Position int    `json:"position"` // Ranking value; the app-invocation pass scores position/20
	Name     string `json:"name"`     // Display name, "<name> (<branch>)" for worktrees
	Path     string `json:"path"`     // Absolute filesystem path
}

// Worktree is one block of `git worktree list --porcelain` output.
type Worktree struct {
	Path     string
	Branch   string // Empty when detached
	Detached bool
}

// Label is the suffix shown in parentheses after a worktree's project name.
func (w Worktree) Label() string {
	if w.Branch == "" {
		return "detached"
	}
	return w.Branch
}
