// Package permissions implements the confirmation-mode enum, tool-name
// normalization, and whitelist narrowing described in spec.md §4.O.
package permissions

import "strings"

// Mode controls which tools require user confirmation before executing.
type Mode int

const (
	// ModeDefault requires confirmation for write_file, edit, and bash.
	ModeDefault Mode = iota
	// ModeAcceptEdits only requires confirmation for bash.
	ModeAcceptEdits
	// ModeUnrestricted never requires confirmation.
	ModeUnrestricted
)

var defaultConfirmSet = map[string]struct{}{
	"write_file": {},
	"edit":       {},
	"bash":       {},
}

var acceptEditsConfirmSet = map[string]struct{}{
	"bash": {},
}

// NeedsConfirmation reports whether toolName (already normalized, or not)
// requires user confirmation under this mode.
func (m Mode) NeedsConfirmation(toolName string) bool {
	name := Normalize(toolName)
	switch m {
	case ModeUnrestricted:
		return false
	case ModeAcceptEdits:
		_, ok := acceptEditsConfirmSet[name]
		return ok
	default:
		_, ok := defaultConfirmSet[name]
		return ok
	}
}

// aliasTable maps known alternate spellings to their canonical
// lower_snake tool name.
var aliasTable = map[string]string{
	"readfile":  "read_file",
	"writefile": "write_file",
	"todowrite": "todo_write",
	"listdir":   "list_dir",
	"filestat":  "file_stat",
	"filedelete": "file_delete",
	"filemove":  "file_move",
	"filecopy":  "file_copy",
	"bashoutput": "bash_output",
	"bashkill":  "bash_kill",
	"websearch": "web_search",
	"webfetch":  "web_fetch",
}

// Normalize lower-cases a tool name, replaces '-' with '_', then
// collapses known alias spellings (e.g. "ReadFile" -> "read_file",
// "todoWrite" -> "todo_write") to their canonical form.
func Normalize(name string) string {
	lower := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	// Aliases are matched against the name with underscores stripped too,
	// so "ReadFile", "read_file", and "readFile" all collapse identically.
	collapsed := strings.ReplaceAll(lower, "_", "")
	if canonical, ok := aliasTable[collapsed]; ok {
		return canonical
	}
	return lower
}

// NarrowAllowedTools computes parent ∩ child on normalized names,
// returned in parent order. When child is nil, the parent list passes
// through unchanged (deduplicated, normalized). When parent is nil, the
// (deduplicated, normalized) child list passes through.
func NarrowAllowedTools(parent, child []string) []string {
	if child == nil {
		return dedupeNormalized(parent)
	}
	if parent == nil {
		return dedupeNormalized(child)
	}

	childSet := make(map[string]struct{}, len(child))
	for _, c := range child {
		childSet[Normalize(c)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(parent))
	result := make([]string, 0, len(parent))
	for _, p := range parent {
		np := Normalize(p)
		if _, already := seen[np]; already {
			continue
		}
		if _, ok := childSet[np]; ok {
			seen[np] = struct{}{}
			result = append(result, np)
		}
	}
	return result
}

func dedupeNormalized(names []string) []string {
	if names == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		normalized := Normalize(n)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
