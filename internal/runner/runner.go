// pattern: Imperative Shell

package runner

import (
	"os/exec"
	"sync"

	"codeprojects/internal/config"
	"codeprojects/internal/editor"
	"codeprojects/internal/launch"
	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Runner is the lifecycle a launcher host drives: detect installed editors,
// load projects, answer queries and open a chosen project.
type Runner interface {
	Detect() []editor.Variant
	LoadAll() []project.Record
	Match(q matcher.Query) []matcher.Match
	Run(r project.Record) error
}

// Opener opens a path in an editor. *launch.Launcher implements it.
type Opener interface {
	Open(path string) error
	Executable() string
}

// Options replaces environment-dependent collaborators, mostly for tests.
type Options struct {
	LookPath editor.LookPathFunc
	Git      project.GitRunner
	Home     string
	Exists   func(path string) bool
	// Opener, when set, is used instead of a launcher for the detected editor.
	Opener Opener
}

// Plugin is the only Runner implementation. The project list is replaced
// wholesale on every LoadAll; readers never see a partial list.
type Plugin struct {
	opts     Options
	logs     logging.LoggerProvider
	logger   *logging.ScopedLogger
	lookPath editor.LookPathFunc

	mu        sync.RWMutex
	cfg       config.Config
	variants  []editor.Variant
	loader    *project.Loader
	matcher   *matcher.Matcher
	opener    Opener
	projects  []project.Record
	listeners []func([]project.Record)
}

var _ Runner = (*Plugin)(nil)

// New builds a plugin from cfg and detects installed editors. It does not
// load projects; call LoadAll.
func New(cfg config.Config, logs logging.LoggerProvider, opts Options) *Plugin {
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	p := &Plugin{
		opts:     opts,
		logs:     logs,
		logger:   logs.For("runner"),
		lookPath: lookPath,
	}
	p.configure(cfg)
	p.Detect()
	return p
}

// configure applies cfg to the loader and matcher. Callers hold no lock.
func (p *Plugin) configure(cfg config.Config) {
	loader := project.NewLoader(project.Options{
		ConfigRoot:  cfg.ResolveConfigRoot(),
		ExtensionID: cfg.ExtensionID,
		Home:        p.opts.Home,
		Git:         p.opts.Git,
	}, p.logs.For("loader"))
	m := matcher.New(matcher.Options{
		ProjectNameMatches: cfg.ProjectNameMatches,
		AppNameMatches:     cfg.AppNameMatches,
		TriggerKeywords:    cfg.TriggerKeywords,
		Exists:             p.opts.Exists,
	})

	p.mu.Lock()
	p.cfg = cfg
	p.loader = loader
	p.matcher = m
	p.mu.Unlock()
}

// Detect looks up every known editor executable and picks the launch
// executable from the result.
func (p *Plugin) Detect() []editor.Variant {
	variants := editor.DetectWith(p.lookPath)

	opener := p.opts.Opener
	if opener == nil {
		opener = launch.New(editor.LaunchExecutable(variants), p.logs.For("launch"))
	}

	p.mu.Lock()
	p.variants = variants
	p.opener = opener
	p.mu.Unlock()

	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Executable)
	}
	p.logger.Info("editors detected", "variants", names, "launch", opener.Executable())
	return variants
}

// LoadAll reloads projects for every detected variant and replaces the
// in-memory list.
func (p *Plugin) LoadAll() []project.Record {
	p.mu.RLock()
	loader := p.loader
	dirs := editor.ConfigDirs(p.variants)
	p.mu.RUnlock()

	records := loader.LoadAll(dirs)

	p.mu.Lock()
	p.projects = records
	listeners := append([]func([]project.Record){}, p.listeners...)
	p.mu.Unlock()

	p.logger.Info("projects loaded", "count", len(records), "config_dirs", dirs)
	for _, fn := range listeners {
		fn(records)
	}
	return records
}

// Match answers a query against the current project list.
func (p *Plugin) Match(q matcher.Query) []matcher.Match {
	p.mu.RLock()
	records, m := p.projects, p.matcher
	p.mu.RUnlock()

	matches := m.Match(records, q)
	p.logger.Debug("query matched", "query", q.Text, "matches", len(matches))
	return matches
}

// Run opens r in the launch editor without waiting for it.
func (p *Plugin) Run(r project.Record) error {
	p.mu.RLock()
	opener := p.opener
	p.mu.RUnlock()
	return opener.Open(r.Path)
}

// Reload applies a fresh configuration (toggles, keywords, paths), re-detects
// editors and reloads projects.
func (p *Plugin) Reload(cfg config.Config) []project.Record {
	p.configure(cfg)
	p.Detect()
	return p.LoadAll()
}

// Projects returns the current project list.
func (p *Plugin) Projects() []project.Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.projects
}

// Find returns the loaded record with the given path.
func (p *Plugin) Find(path string) (project.Record, bool) {
	for _, r := range p.Projects() {
		if r.Path == path {
			return r, true
		}
	}
	return project.Record{}, false
}

// Config returns the configuration last applied.
func (p *Plugin) Config() config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Sources lists every file LoadAll reads for the detected variants.
func (p *Plugin) Sources() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var paths []string
	for _, dir := range editor.ConfigDirs(p.variants) {
		paths = append(paths, p.loader.Sources(dir)...)
	}
	return paths
}

// OnReload registers fn to be called with the new list after every LoadAll.
func (p *Plugin) OnReload(fn func([]project.Record)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}
