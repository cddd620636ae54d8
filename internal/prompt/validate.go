package prompt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	urlPattern  = regexp.MustCompile(`(?i)^(https?://)?[a-zA-Z0-9][-a-zA-Z0-9]*(\.[a-zA-Z0-9][-a-zA-Z0-9]*)+(/.*)?$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidationError describes why a single field value was rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is the outcome of validating every declared field of a template
type Result struct {
	Valid  bool              `json:"isValid"`
	Errors map[string]string `json:"errors"`
}

// Validate checks value against the field definition
//
// Rules run in order and stop at the first failure: required, the
// type-specific rule, pattern, minimum length, maximum length. A blank value
// of an optional field is always valid. An error message configured on the
// field replaces the rule's default message.
func Validate(f Field, value string) error {
	if strings.TrimSpace(value) == "" {
		if f.Required {
			return &ValidationError{Field: f.Name, Message: f.DisplayLabel() + " is required"}
		}
		return nil
	}

	rules := f.Validation
	if rules == nil {
		rules = &Validation{}
	}

	fail := func(defaultMessage string) error {
		msg := defaultMessage
		if rules.ErrorMessage != "" {
			msg = rules.ErrorMessage
		}
		return &ValidationError{Field: f.Name, Message: msg}
	}

	switch f.Type {
	case TypeURL:
		if !urlPattern.MatchString(Sanitize(value, TypeURL)) {
			return fail("Please enter a valid URL")
		}
	case TypeNumber:
		// NaN and the infinities parse but are not numbers a user can mean
		num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			return fail("Please enter a valid number")
		}
		if rules.Min != nil && num < *rules.Min {
			return fail("Value must be at least " + formatNumber(*rules.Min))
		}
		if rules.Max != nil && num > *rules.Max {
			return fail("Value must be at most " + formatNumber(*rules.Max))
		}
	case TypeDate:
		if !datePattern.MatchString(strings.TrimSpace(value)) {
			return fail("Please enter a valid date (YYYY-MM-DD)")
		}
	case "", TypeText, TypeTextarea, TypeSelect, TypeMultiselect:
		// no type-specific rule
	default:
		return fail(fmt.Sprintf("Unsupported field type %q", f.Type))
	}

	if rules.Pattern != "" {
		// a pattern that does not compile never rejects a value
		if re, err := regexp.Compile(rules.Pattern); err == nil && !re.MatchString(value) {
			return fail("Invalid format for " + f.DisplayLabel())
		}
	}

	length := utf8.RuneCountInString(value)
	if rules.MinLength != nil && length < *rules.MinLength {
		return fail(fmt.Sprintf("Must be at least %d characters", *rules.MinLength))
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return fail(fmt.Sprintf("Must be at most %d characters", *rules.MaxLength))
	}

	return nil
}

// ValidateValues validates every declared field against values
// Placeholders without a field definition are not validated.
func ValidateValues(fields []Field, values Values) Result {
	result := Result{Valid: true, Errors: map[string]string{}}

	for _, f := range fields {
		if err := Validate(f, values[f.Name]); err != nil {
			result.Valid = false
			result.Errors[f.Name] = err.Error()
		}
	}

	return result
}

// ValidateTemplate checks the fields a template needs before it can be saved
func ValidateTemplate(t Template) error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return &ValidationError{Field: "name", Message: "Template name is required"}
	case strings.TrimSpace(t.Description) == "":
		return &ValidationError{Field: "description", Message: "Template description is required"}
	case strings.TrimSpace(t.Body) == "":
		return &ValidationError{Field: "template", Message: "Template body is required"}
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if seen[f.Name] {
			return &ValidationError{Field: f.Name, Message: fmt.Sprintf("Duplicate field name %q", f.Name)}
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return &ValidationError{Field: f.Name, Message: fmt.Sprintf("Unsupported field type %q", f.Type)}
		}
	}

	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
