package prompt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// a line left with only bullets, dashes, colons or whitespace
	decorationRun = regexp.MustCompile(`^[-*•:\s]*$`)
	// a short label such as "Focus:" or "- Additional notes:"
	labelOnly = regexp.MustCompile(`^.{0,40}:$`)
	// three or more newlines collapse to a single blank line
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Compile substitutes values into a template and drops unused optional lines
//
// Every token of the template is resolved in a single pass: a non-blank value
// is sanitized for its field type and replaces the token, so substituted
// text is never scanned for tokens again. An unfilled token whose field is
// declared optional is removed: the whole line goes when nothing but
// decoration remains, otherwise only the token is cut. Other unfilled tokens
// are left untouched. The result has blank-line runs collapsed and is
// trimmed.
func Compile(template string, values Values, fields []Field) string {
	lines := strings.Split(template, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		elided := false
		out := placeholderPattern.ReplaceAllStringFunc(line, func(token string) string {
			name := token[1 : len(token)-1]
			f, declared := FindField(fields, name)

			if value := values[name]; strings.TrimSpace(value) != "" {
				fieldType := TypeText
				if declared {
					fieldType = f.Type
				}
				return Sanitize(value, fieldType)
			}
			if declared && !f.Required {
				elided = true
				return ""
			}
			return token
		})

		if elided {
			if IsDecoration(out) {
				continue
			}
			out = strings.TrimRight(out, " \t")
		}
		kept = append(kept, out)
	}

	result := blankRun.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// IsDecoration reports whether the remainder of a line carries no content of
// its own once a placeholder has been taken out of it
func IsDecoration(rest string) bool {
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		return true
	}
	return decorationRun.MatchString(trimmed) || labelOnly.MatchString(trimmed)
}

// Unfilled returns the placeholders of template whose value is blank
//
// With requiredOnly set, optional fields are skipped; a placeholder without a
// field definition counts as required.
func Unfilled(template string, values Values, fields []Field, requiredOnly bool) []string {
	var unfilled []string

	for _, name := range Extract(template) {
		if strings.TrimSpace(values[name]) != "" {
			continue
		}
		if requiredOnly {
			if f, ok := FindField(fields, name); ok && !f.Required {
				continue
			}
		}
		unfilled = append(unfilled, name)
	}

	return unfilled
}

// Preview summarizes the compiled form of a template for display
type Preview struct {
	Compiled        string   `json:"compiled"`
	Unfilled        []string `json:"unfilled"`
	MissingRequired []string `json:"missingRequired"`
	HasUnfilled     bool     `json:"hasUnfilled"`
	CharacterCount  int      `json:"characterCount"`
	EstimatedTokens int      `json:"estimatedTokens"`
}

// BuildPreview compiles template and reports what is still missing
func BuildPreview(template string, values Values, fields []Field) Preview {
	compiled := Compile(template, values, fields)
	unfilled := Unfilled(template, values, fields, false)

	return Preview{
		Compiled:        compiled,
		Unfilled:        unfilled,
		MissingRequired: Unfilled(template, values, fields, true),
		HasUnfilled:     len(unfilled) > 0,
		CharacterCount:  utf8.RuneCountInString(compiled),
		EstimatedTokens: EstimateTokens(compiled),
	}
}

// EstimateTokens approximates a token count at four characters per token
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// JoinSelections renders multiselect choices as a value map entry
func JoinSelections(choices []string) string {
	return strings.Join(choices, ", ")
}

// SplitSelections parses a multiselect value map entry back into choices
func SplitSelections(value string) []string {
	var choices []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			choices = append(choices, part)
		}
	}
	return choices
}
