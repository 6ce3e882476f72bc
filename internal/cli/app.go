// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Command is one runnable subcommand. Run reports its own errors and exit
// codes; the returned error is ignored by the dispatcher.
type Command struct {
	Name             string
	Summary          string
	Usage            string
	RequiresInstance bool
	Run              func(args []string) error
}

// Group is a named set of subcommands, e.g. `codeprojects instance ...`.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App dispatches argv to ungrouped commands and groups. With no arguments
// it asks the caller to start the TUI.
type App struct {
	version  string
	commands map[string]*Command
	order    []string
	groups   map[string]*Group

	// ExitFunc is called for unknown commands. Defaults to os.Exit.
	ExitFunc func(int)
	// Stderr receives help and usage text. Defaults to os.Stderr.
	Stderr io.Writer
}

func NewApp(version string) *App {
	return &App{
		version:  version,
		commands: make(map[string]*Command),
		groups:   make(map[string]*Group),
	}
}

// AddGroup registers an empty group and returns it for AddCommand.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{Name: name, Summary: summary, Commands: make(map[string]*Command)}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped command. Help lists commands in
// registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, dup := a.commands[cmd.Name]; !dup {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

func (a *App) stderr() io.Writer {
	if a.Stderr != nil {
		return a.Stderr
	}
	return os.Stderr
}

func (a *App) exit(code int) {
	if a.ExitFunc != nil {
		a.ExitFunc(code)
		return
	}
	os.Exit(code)
}

// Execute runs the command named by args. It returns true only when args is
// empty, meaning the TUI should start.
func (a *App) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	name, rest := args[0], args[1:]
	if cmd, ok := a.commands[name]; ok {
		a.dispatch(cmd, rest)
		return false
	}

	group, ok := a.groups[name]
	if !ok {
		a.PrintHelp(a.stderr())
		a.exit(1)
		return false
	}

	if len(rest) == 0 || rest[0] == "help" || isHelpFlag(rest[0]) {
		group.PrintHelp(a.stderr())
		return false
	}
	cmd, ok := group.Commands[rest[0]]
	if !ok {
		group.PrintHelp(a.stderr())
		a.exit(1)
		return false
	}
	a.dispatch(cmd, rest[1:])
	return false
}

// dispatch prints usage when any argument asks for help, else runs cmd.
func (a *App) dispatch(cmd *Command, args []string) {
	if slices.ContainsFunc(args, isHelpFlag) {
		fmt.Fprintln(a.stderr(), cmd.Usage)
		return
	}
	_ = cmd.Run(args)
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h"
}

// PrintHelp writes the top-level help: commands, groups, then the global
// options header that flag.PrintDefaults completes.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "codeprojects %s: open VS Code-family projects\n\n", a.version)
	fmt.Fprintf(w, "Usage: codeprojects [options] [command]\n\n")

	fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		printEntry(w, name, a.commands[name].Summary)
	}
	printEntry(w, "(none)", "Launch interactive TUI")

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups (requires running instance):\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			printEntry(w, name, a.groups[name].Summary)
		}
		fmt.Fprintf(w, "\nUse \"codeprojects <group> help\" for group details.\n")
	}

	fmt.Fprintf(w, "\nOptions:\n")
}

// PrintHelp lists the group's commands alphabetically.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: codeprojects %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		printEntry(w, name, g.Commands[name].Summary)
	}
	fmt.Fprintf(w, "\nUse \"codeprojects %s <command> --help\" for command details.\n", g.Name)
}

func printEntry(w io.Writer, name, summary string) {
	fmt.Fprintf(w, "  %-10s %s\n", name, summary)
}
