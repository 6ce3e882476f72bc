// pattern: Functional Core

package editor

import "os/exec"

// Variant is one VS Code-family editor. Executable gates the variant; each
// entry in ConfigDirs is a directory under the user config root that the
// editor writes its storage into.
type Variant struct {
	Executable string
	ConfigDirs []string
}

// Variants lists every supported editor in detection order. Launch uses the
// first detected entry, so forks that ship their own CLI are checked before
// the mainline "code".
var Variants = []Variant{
	{Executable: "windsurf-next", ConfigDirs: []string{"Windsurf - Next"}},
	{Executable: "windsurf", ConfigDirs: []string{"Windsurf"}},
	{Executable: "cursor", ConfigDirs: []string{"Cursor"}},
	{Executable: "code-insiders", ConfigDirs: []string{"Code - Insiders"}},
	{Executable: "code", ConfigDirs: []string{"Code", "Code - OSS"}},
	{Executable: "codium", ConfigDirs: []string{"VSCodium"}},
}

// FallbackExecutable is launched when no variant was detected.
const FallbackExecutable = "code"

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

// Detect returns the installed variants, in detection order.
func Detect() []Variant {
	return DetectWith(exec.LookPath)
}

// DetectWith is Detect with an injectable executable lookup.
func DetectWith(lookPath LookPathFunc) []Variant {
	var found []Variant
	for _, v := range Variants {
		if _, err := lookPath(v.Executable); err == nil {
			found = append(found, v)
		}
	}
	return found
}

// LaunchExecutable picks the editor to open projects with.
func LaunchExecutable(detected []Variant) string {
	if len(detected) == 0 {
		return FallbackExecutable
	}
	return detected[0].Executable
}

// ConfigDirs flattens the config directories of the given variants,
// preserving order.
func ConfigDirs(variants []Variant) []string {
	var dirs []string
	for _, v := range variants {
		dirs = append(dirs, v.ConfigDirs...)
	}
	return dirs
}
