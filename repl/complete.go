// Copyright © 2025 The Wisp authors

package repl

import (
	"sort"
	"strings"

	"github.com/wisplang/wisp/scheme"
)

// symbolCompleter implements readline.AutoCompleter by enumerating
// bindings reachable from the runtime's root scope.
type symbolCompleter struct {
	rt *scheme.Runtime
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to whitespace
	// or open paren).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\'' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		result = append(result, []rune(sym[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	scope := c.rt.RootScope()
	for scope != nil {
		sd := scope.Scope
		sd.Range(func(name string, _ *scheme.Object) bool {
			if strings.HasPrefix(name, prefix) && !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
			return true
		})
		scope = sd.Parent()
	}
	sort.Strings(result)
	return result
}
