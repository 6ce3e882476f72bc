// pattern: Imperative Shell

package project

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// GitRunner runs `git worktree list --porcelain` in dir and returns stdout.
type GitRunner func(dir string) ([]byte, error)

// worktreeBlockRe matches one porcelain block. Blocks for bare repositories
// have no HEAD line and are ignored.
var worktreeBlockRe = regexp.MustCompile(`worktree\s+(.+)\nHEAD\s+[a-f0-9]+\n(?:branch\s+refs/heads/(.+)|detached)`)

// runGitWorktreeList blocks until git exits. There is no timeout.
func runGitWorktreeList(dir string) ([]byte, error) {
	cmd := exec.Command("git", "worktree", "list", "--porcelain")
	cmd.Dir = dir
	return cmd.Output()
}

// hasGitDir reports whether path holds a .git directory or a .git file
// (the latter for linked worktrees and submodules).
func hasGitDir(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// parseWorktreeList parses porcelain output:
//
//	worktree /path/to/main
//	HEAD 0a1b2c...
//	branch refs/heads/main
//
//	worktree /path/to/linked
//	HEAD 3d4e5f...
//	detached
//
// The main worktree is included. Blocks that do not fit the pattern are skipped.
func parseWorktreeList(output string) []Worktree {
	output = strings.ReplaceAll(output, "\r\n", "\n")

	var worktrees []Worktree
	for _, block := range strings.Split(output, "\n\n") {
		if block == "" {
			continue
		}
		m := worktreeBlockRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		worktrees = append(worktrees, Worktree{
			Path:     m[1],
			Branch:   m[2],
			Detached: m[2] == "",
		})
	}
	return worktrees
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
