package scenario

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Names lists the built-in scenarios in sorted order.
func Names() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Builtin returns a fresh copy of the named built-in scenario.
func Builtin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q (have %s): %w", name, strings.Join(Names(), ", "), ErrInvalid)
	}
	return Parse(data)
}

// Resolve treats ref as a built-in name first and a file path otherwise.
func Resolve(ref string) (*Scenario, error) {
	if slices.Contains(Names(), ref) {
		return Builtin(ref)
	}
	return Load(ref)
}
