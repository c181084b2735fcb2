package service

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ResolvePrompt substitutes every {{name}} in tpl with params[name] in a
// single pass, so inserted values are never expanded again. It returns the
// names with no supplied value, in order of first appearance. Template text
// is admin-authored and substituted without escaping.
func ResolvePrompt(tpl string, params map[string]string) (string, []string) {
	var missing []string
	seen := map[string]bool{}
	out := placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		name := m[2 : len(m)-2]
		if v, ok := params[name]; ok {
			return v
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return m
	})
	return out, missing
}

// Placeholders lists the distinct placeholder names in tpl.
func Placeholders(tpl string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(tpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func missingList(names []string) string { return strings.Join(names, ", ") }
