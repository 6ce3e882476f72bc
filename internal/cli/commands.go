// pattern: Imperative Shell
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"codeprojects/internal/config"
	"codeprojects/internal/instance"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Hooks are the long-running entry points main provides.
type Hooks struct {
	// Local builds an in-process backend for list/query/open.
	Local LocalFunc
	// Serve runs the HTTP service until interrupted.
	Serve func() error
}

// ResolveDataDir returns the data directory for lock/port/log files.
// If configDir is specified, uses that; otherwise uses config.DefaultDir().
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return config.DefaultDir()
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string, hooks Hooks) *App {
	app := NewApp(version)

	newDelegate := func() *Delegate {
		return &Delegate{ConfigDir: configDir, Local: hooks.Local}
	}

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "List every project of the installed editors",
		Usage:   "Usage: codeprojects list [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("list", flag.ContinueOnError)
			asJSON := fs.Bool("json", false, "print JSON")
			if err := fs.Parse(args); err != nil {
				fmt.Fprintf(os.Stderr, "Usage: codeprojects list [--json]\n")
				os.Exit(1)
			}
			newDelegate().Run(func(b Backend) error {
				return runList(b, os.Stdout, *asJSON)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "query",
		Summary: "Print ranked matches for a query",
		Usage:   "Usage: codeprojects query <text...> [--single] [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("query", flag.ContinueOnError)
			single := fs.Bool("single", false, "allow queries shorter than three characters")
			asJSON := fs.Bool("json", false, "print JSON")
			if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
				fmt.Fprintf(os.Stderr, "Usage: codeprojects query <text...> [--single] [--json]\n")
				os.Exit(1)
			}
			q := matcher.Query{Text: strings.Join(fs.Args(), " "), SingleRunner: *single}
			newDelegate().Run(func(b Backend) error {
				return runQuery(b, os.Stdout, q, *asJSON)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "open",
		Summary: "Open a project by path, or the best match for a query",
		Usage:   "Usage: codeprojects open <path|query...>",
		Run: func(args []string) error {
			if len(args) == 0 {
				fmt.Fprintf(os.Stderr, "Usage: codeprojects open <path|query...>\n")
				os.Exit(1)
			}
			target := strings.Join(args, " ")
			newDelegate().Run(func(b Backend) error {
				return runOpen(b, os.Stdout, target)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "serve",
		Summary: "Serve the HTTP API and watch project sources",
		Usage:   "Usage: codeprojects serve",
		Run: func(args []string) error {
			if hooks.Serve == nil {
				return nil
			}
			if err := hooks.Serve(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed instance",
		Usage:   "Usage: codeprojects cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(configDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: codeprojects version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	instanceGroup := app.AddGroup("instance", "Talk to a running serve instance")
	RegisterInstanceCommands(instanceGroup, configDir)

	return app
}

// RegisterInstanceCommands registers the instance command group commands.
func RegisterInstanceCommands(group *Group, configDir string) {
	group.AddCommand(&Command{
		Name:             "status",
		Summary:          "Print the address of the running instance",
		Usage:            "Usage: codeprojects instance status",
		RequiresInstance: true,
		Run: func(args []string) error {
			d := &Delegate{ConfigDir: configDir}
			d.RunInstance(func(c *instance.Client) error {
				return runStatus(c, os.Stdout)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "reload",
		Summary:          "Re-read configuration and project sources",
		Usage:            "Usage: codeprojects instance reload",
		RequiresInstance: true,
		Run: func(args []string) error {
			d := &Delegate{ConfigDir: configDir}
			d.RunInstance(func(c *instance.Client) error {
				count, err := c.Reload()
				if err != nil {
					return err
				}
				fmt.Printf("loaded %d projects\n", count)
				return nil
			})
			return nil
		},
	})
}

// runStatus prints where the instance listens and how many projects it holds.
func runStatus(c *instance.Client, w io.Writer) error {
	projects, err := c.Projects()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "running at %s with %d projects\n", c.BaseURL(), len(projects))
	return nil
}

// runList prints every record, one per line, or as JSON.
func runList(b Backend, w io.Writer, asJSON bool) error {
	records, err := b.Projects()
	if err != nil {
		return err
	}
	if records == nil {
		records = []project.Record{}
	}
	if asJSON {
		return PrintJSON(w, records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Position, r.Name, r.Path)
	}
	return tw.Flush()
}

// runQuery prints ranked matches.
func runQuery(b Backend, w io.Writer, q matcher.Query, asJSON bool) error {
	matches, err := b.Match(q)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []matcher.Match{}
	}
	if asJSON {
		return PrintJSON(w, matches)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range matches {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\n", m.Relevance, m.Record.Name, m.Record.Path)
	}
	return tw.Flush()
}

// errNoMatch is returned by open when neither a path nor a query resolves.
var errNoMatch = errors.New("no project matches")

// runOpen opens target when it is the path of a loaded record, otherwise the
// best match for target as a single-runner query.
func runOpen(b Backend, w io.Writer, target string) error {
	records, err := b.Projects()
	if err != nil {
		return err
	}

	path := ""
	if abs, err := filepath.Abs(target); err == nil {
		for _, r := range records {
			if r.Path == target || r.Path == abs {
				path = r.Path
				break
			}
		}
	}

	if path == "" {
		matches, err := b.Match(matcher.Query{Text: target, SingleRunner: true})
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("%w %q", errNoMatch, target)
		}
		path = matches[0].Record.Path
	}

	if err := b.Run(path); err != nil {
		return err
	}
	fmt.Fprintf(w, "opened %s\n", path)
	return nil
}

// runCleanupCommand removes stale lock and port files from a crashed instance.
func runCleanupCommand(configDir string) error {
	removed, err := instance.RemoveStale(ResolveDataDir(configDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: a codeprojects instance appears to be running. Stop it first.\n")
		os.Exit(1)
	}
	if removed {
		fmt.Println("Cleaned up stale lock and port files.")
	} else {
		fmt.Println("Nothing to clean up.")
	}
	return nil
}
