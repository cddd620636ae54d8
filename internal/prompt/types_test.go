package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		required bool
		kind     FieldType
	}{
		{"required defaults to true", `{"name":"topic","label":"Topic","type":"textarea"}`, true, TypeTextarea},
		{"explicit false", `{"name":"topic","required":false,"type":"url"}`, false, TypeURL},
		{"type defaults to text", `{"name":"topic","required":true}`, true, TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Field
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))
			assert.Equal(t, "topic", f.Name)
			assert.Equal(t, tt.required, f.Required)
			assert.Equal(t, tt.kind, f.Type)
		})
	}
}

func TestField_UnmarshalYAML(t *testing.T) {
	input := `
name: tone
options: [formal, casual]
type: select
validation:
  maxLength: 10
---
name: notes
required: false
`
	var first, second Field
	dec := yaml.NewDecoder(strings.NewReader(input))
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.True(t, first.Required)
	assert.Equal(t, TypeSelect, first.Type)
	assert.Equal(t, []string{"formal", "casual"}, first.Options)
	require.NotNil(t, first.Validation)
	require.NotNil(t, first.Validation.MaxLength)
	assert.Equal(t, 10, *first.Validation.MaxLength)

	assert.False(t, second.Required)
	assert.Equal(t, TypeText, second.Type)
}

func TestTemplate_JSONKeys(t *testing.T) {
	var tpl Template
	input := `{"id":"t1","name":"N","description":"D","category":"coding","template":"Fix [code]","variables":[{"name":"code"}]}`
	require.NoError(t, json.Unmarshal([]byte(input), &tpl))

	assert.Equal(t, "Fix [code]", tpl.Body)
	f, ok := tpl.Field("code")
	require.True(t, ok)
	assert.True(t, f.Required)
	assert.Equal(t, "code", f.DisplayLabel())

	_, ok = tpl.Field("missing")
	assert.False(t, ok)
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range FieldTypes {
		assert.True(t, ft.Valid(), ft)
	}
	assert.False(t, FieldType("").Valid())
	assert.False(t, FieldType("checkbox").Valid())
}
