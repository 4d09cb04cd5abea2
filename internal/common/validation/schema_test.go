package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "age": {"type": "integer", "minimum": 0},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := Compile("person-test", personSchema)
	require.NoError(t, err)

	tests := []struct {
		name       string
		doc        interface{}
		wantValid  bool
		wantFields []string
		wantText   string
	}{
		{
			name:      "valid document",
			doc:       map[string]interface{}{"name": "Asha", "age": 30, "tags": []interface{}{"a"}},
			wantValid: true,
		},
		{
			name:     "missing required field",
			doc:      map[string]interface{}{"age": 30},
			wantText: "name is required",
		},
		{
			name:       "wrong nested type",
			doc:        map[string]interface{}{"name": "Asha", "tags": []interface{}{1}},
			wantFields: []string{"tags.0"},
		},
		{
			name:       "below minimum",
			doc:        map[string]interface{}{"name": "Asha", "age": -1},
			wantFields: []string{"age"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			for _, field := range tt.wantFields {
				assert.True(t, result.HasErrors(field), "expected error on %s, got %v", field, result.GetErrorMessages())
			}
			if tt.wantText != "" {
				assert.Contains(t, strings.Join(result.GetErrorMessages(), "; "), tt.wantText)
			}
		})
	}
}

func TestCompile_CachesByName(t *testing.T) {
	a, err := Compile("cache-test", personSchema)
	require.NoError(t, err)
	b, err := Compile("cache-test", `{"type": "string"}`)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken-test", `{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile("broken-test-2", `{`) })
}
