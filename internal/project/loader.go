// pattern: Imperative Shell

package project

import (
	"fmt"
	"os"
	"path/filepath"

	"codeprojects/internal/logging"
)

// Options configures a Loader. Zero values fall back to the user's
// environment.
type Options struct {
	ConfigRoot  string    // Directory containing per-editor dirs such as "Code"
	ExtensionID string    // Project Manager extension id
	Home        string    // Substituted for $home in saved rootPaths
	Git         GitRunner // Defaults to running git
}

// Loader reads the saved, git-cache and recently-opened sources of an editor
// variant. It never fails: unreadable or malformed sources count as empty.
type Loader struct {
	configRoot  string
	extensionID string
	home        string
	git         GitRunner
	logger      *logging.ScopedLogger
}

func NewLoader(opts Options, logger *logging.ScopedLogger) *Loader {
	if opts.ConfigRoot == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			opts.ConfigRoot = dir
		}
	}
	if opts.Home == "" {
		opts.Home, _ = os.UserHomeDir()
	}
	if opts.Git == nil {
		opts.Git = runGitWorktreeList
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Loader{
		configRoot:  opts.ConfigRoot,
		extensionID: opts.ExtensionID,
		home:        opts.Home,
		git:         opts.Git,
		logger:      logger,
	}
}

// Sources lists the files read for configDir, in load order.
func (l *Loader) Sources(configDir string) []string {
	return []string{l.savedPath(configDir), l.cachePath(configDir), l.recentPath(configDir)}
}

func (l *Loader) globalStorage(configDir string) string {
	return filepath.Join(l.configRoot, configDir, "User", "globalStorage", l.extensionID)
}

func (l *Loader) savedPath(configDir string) string {
	return filepath.Join(l.globalStorage(configDir), "projects.json")
}

func (l *Loader) cachePath(configDir string) string {
	return filepath.Join(l.globalStorage(configDir), "projects_cache_git.json")
}

func (l *Loader) recentPath(configDir string) string {
	return filepath.Join(l.configRoot, configDir, "storage.json")
}

// LoadProjects returns saved projects (worktree-expanded), then git-cache
// entries, then recently opened entries for one editor config directory.
func (l *Loader) LoadProjects(configDir string) []Record {
	logger := l.logger.With("config_dir", configDir)

	records := l.loadSaved(l.savedPath(configDir), logger)
	saved := len(records)
	records = l.loadCache(l.cachePath(configDir), records, logger)
	cached := len(records) - saved
	records = append(records, l.loadRecent(l.recentPath(configDir), logger)...)

	logger.Debug("projects loaded",
		"saved", saved,
		"cached", cached,
		"recent", len(records)-saved-cached,
	)
	return records
}

// LoadAll concatenates LoadProjects over configDirs in order.
func (l *Loader) LoadAll(configDirs []string) []Record {
	var records []Record
	for _, dir := range configDirs {
		records = append(records, l.LoadProjects(dir)...)
	}
	return records
}

func (l *Loader) loadSaved(path string, logger *logging.ScopedLogger) []Record {
	entries, ok := readArray[savedProject](path, logger)
	if !ok {
		return nil
	}

	var records []Record
	position := len(entries)
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		position--
		records = append(records, l.expandSaved(e, position, logger)...)
	}
	return records
}

// expandSaved yields one record per worktree when the project is a git
// checkout, otherwise a single record for its path. Worktrees share the
// parent's position.
func (l *Loader) expandSaved(e savedProject, position int, logger *logging.ScopedLogger) []Record {
	path := e.resolvedPath(l.home)
	if !hasGitDir(path) {
		return []Record{{Position: position, Name: e.Name, Path: path}}
	}

	out, err := l.git(path)
	if err != nil {
		logger.Debug("git worktree list failed", "path", path, "error", err)
		return nil
	}

	var records []Record
	for _, wt := range parseWorktreeList(string(out)) {
		if !dirExists(wt.Path) {
			continue
		}
		records = append(records, Record{
			Position: position,
			Name:     fmt.Sprintf("%s (%s)", e.Name, wt.Label()),
			Path:     wt.Path,
		})
	}
	return records
}

// loadCache appends git-cache entries to prev. Positions continue the
// ranking space above the saved projects and descend through the array.
// Entries without a fullPath are kept; the matcher's existence check drops
// them from results.
func (l *Loader) loadCache(path string, prev []Record, logger *logging.ScopedLogger) []Record {
	entries, ok := readArray[cachedProject](path, logger)
	if !ok {
		return prev
	}

	start := len(entries) + len(prev)
	for i, e := range entries {
		prev = append(prev, Record{Position: start - i, Name: e.Name, Path: e.FullPath})
	}
	return prev
}

func (l *Loader) loadRecent(path string, logger *logging.ScopedLogger) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("source unavailable", "path", path, "error", err)
		return nil
	}

	var records []Record
	for _, uri := range parseRecentURIs(data) {
		local := localPath(uri)
		if local == "" {
			continue
		}
		records = append(records, Record{Position: 1, Name: filepath.Base(local), Path: local})
	}
	return records
}
