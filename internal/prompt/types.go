package prompt

import (
	"encoding/json"
	"time"
)

// FieldType is the input type of a placeholder field
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextarea    FieldType = "textarea"
	TypeURL         FieldType = "url"
	TypeNumber      FieldType = "number"
	TypeDate        FieldType = "date"
	TypeSelect      FieldType = "select"
	TypeMultiselect FieldType = "multiselect"
)

// FieldTypes lists every supported field type in display order
var FieldTypes = []FieldType{
	TypeText,
	TypeTextarea,
	TypeURL,
	TypeNumber,
	TypeDate,
	TypeSelect,
	TypeMultiselect,
}

// Valid reports whether t is one of the supported field types
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Validation holds optional constraints for a field
// Min/Max apply to number fields; the length and pattern rules apply to any type.
type Validation struct {
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength    *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern      string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// Field describes one named placeholder of a template
type Field struct {
	Name         string      `json:"name" yaml:"name"`
	Label        string      `json:"label" yaml:"label"`
	Type         FieldType   `json:"type" yaml:"type"`
	Required     bool        `json:"required" yaml:"required"`
	DefaultValue string      `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText     string      `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Options      []string    `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// fieldAlias avoids recursion in the custom decoders below
type fieldAlias Field

type fieldWire struct {
	fieldAlias
	Required *bool `json:"required" yaml:"required"`
}

// UnmarshalJSON decodes a field, defaulting required to true and type to text
func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Field(w.fieldAlias)
	f.Required = w.Required == nil || *w.Required
	if f.Type == "" {
		f.Type = TypeText
	}
	return nil
}

// UnmarshalYAML decodes a field with the same defaults as UnmarshalJSON
func (f *Field) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Name         string      `yaml:"name"`
		Label        string      `yaml:"label"`
		Type         FieldType   `yaml:"type"`
		Required     *bool       `yaml:"required"`
		DefaultValue string      `yaml:"defaultValue"`
		Placeholder  string      `yaml:"placeholder"`
		HelpText     string      `yaml:"helpText"`
		Options      []string    `yaml:"options"`
		Validation   *Validation `yaml:"validation"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*f = Field{
		Name:         raw.Name,
		Label:        raw.Label,
		Type:         raw.Type,
		Required:     raw.Required == nil || *raw.Required,
		DefaultValue: raw.DefaultValue,
		Placeholder:  raw.Placeholder,
		HelpText:     raw.HelpText,
		Options:      raw.Options,
		Validation:   raw.Validation,
	}
	if f.Type == "" {
		f.Type = TypeText
	}
	return nil
}

// DisplayLabel returns the label, or the name when no label is set
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Template is a prompt body with [name] placeholders and its field definitions
type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Body        string    `json:"template" yaml:"template"`
	Fields      []Field   `json:"variables" yaml:"variables"`
	Examples    []string  `json:"examples,omitempty" yaml:"examples,omitempty"`
	IsCustom    bool      `json:"isCustom" yaml:"isCustom"`
	CreatedAt   time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Field looks up a field definition by name
func (t Template) Field(name string) (Field, bool) {
	return FindField(t.Fields, name)
}

// Category groups templates in listings
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

// OtherCategory is the bucket for templates whose category id is unknown
var OtherCategory = Category{ID: "other", Name: "Other"}

// Values maps field names to their current string value
// multiselect values are stored comma-joined, see JoinSelections
type Values map[string]string

// FindField returns the definition named name from fields
func FindField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
