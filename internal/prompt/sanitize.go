package prompt

import (
	"regexp"
	"strings"
)

// patterns for markdown decoration that sneaks in when a link is pasted
var (
	markdownLinkPattern = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)$`)
	underscoreRun       = regexp.MustCompile(`^_+|_+$`)
	asteriskRun         = regexp.MustCompile(`^\*+|\*+$`)
	backtickRun         = regexp.MustCompile("^`+|`+$")
	angleBrackets       = regexp.MustCompile(`^<|>$`)
	quoteChars          = regexp.MustCompile(`^["']|["']$`)
)

// Sanitize normalizes a raw value for the given field type
//
// Non-URL values are only trimmed. URL values additionally lose markdown link
// syntax, emphasis markers, code ticks, angle brackets and wrapping quotes.
// No scheme is added, so a bare domain stays a bare domain.
func Sanitize(value string, fieldType FieldType) string {
	value = strings.TrimSpace(value)
	if fieldType != TypeURL {
		return value
	}

	// each pass only removes characters, so this terminates
	for {
		next := stripURLDecoration(value)
		if next == value {
			return value
		}
		value = next
	}
}

// stripURLDecoration applies one pass of the URL cleanup rules in order
func stripURLDecoration(value string) string {
	if m := markdownLinkPattern.FindStringSubmatch(value); m != nil {
		if m[2] != "" {
			value = m[2]
		} else {
			value = m[1]
		}
	}

	value = underscoreRun.ReplaceAllString(value, "")
	value = asteriskRun.ReplaceAllString(value, "")
	value = backtickRun.ReplaceAllString(value, "")
	value = angleBrackets.ReplaceAllString(value, "")
	value = quoteChars.ReplaceAllString(value, "")

	return strings.TrimSpace(value)
}
