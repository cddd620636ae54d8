package prompt

import (
	"regexp"
)

// placeholderPattern matches a [name] token; names are word characters only
var placeholderPattern = regexp.MustCompile(`\[(\w+)\]`)

// Token returns the placeholder token for a field name
func Token(name string) string {
	return "[" + name + "]"
}

// Extract returns the unique placeholder names in template, in first-seen order
func Extract(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))

	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// HasPlaceholders checks if a template contains at least one placeholder token
func HasPlaceholders(template string) bool {
	return placeholderPattern.MatchString(template)
}
