// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/runesim/types"
)

var verbAliases = map[string]string{
	// Movement
	"move":   "go",
	"walk":   "go",
	"goto":   "go",
	"travel": "go",

	// Run toggle
	"sprint": "run",

	// Courses
	"lap": "course",

	// Obstacles / shortcuts
	"attempt": "obstacle",
	"next":    "obstacle",
	"sc":      "shortcut",

	// Prayers
	"activate":   "pray",
	"deactivate": "unpray",
	"p":          "pray",

	// Consumables
	"consume": "eat",
	"bite":    "eat",
	"sip":     "drink",
	"quaff":   "drink",

	// Miscellaneous
	"st":   "status",
	"stat": "status",
	"m":    "map",
	"look": "map",
	"fx":   "effects",
	"h":    "help",
	"?":    "help",
	"q":    "quit",
	"exit": "quit",
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Two-word commands where the second word selects the action. The pair
// collapses to a single verb so callers switch on one string.
var subcommands = map[string]map[string]string{
	"course": {
		"start": "course.start",
		"begin": "course.start",
		"leave": "course.leave",
		"stop":  "course.leave",
		"quit":  "course.leave",
	},
	"quick": {
		"set": "quick.set",
	},
	"book": {
		"switch": "book",
	},
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Collapse two-word commands ("course start <id>" → course.start <id>).
	if subs, ok := subcommands[verb]; ok && len(rest) > 0 {
		if combined, ok := subs[rest[0]]; ok {
			verb = combined
			rest = rest[1:]
		}
	}

	intent := types.Intent{Verb: verb}
	if len(rest) > 0 {
		intent.Object = rest[0]
	}
	if len(rest) > 1 {
		intent.Target = strings.Join(rest[1:], " ")
	}
	return intent
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
