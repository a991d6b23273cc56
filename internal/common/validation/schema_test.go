package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["name", "skills"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "skills": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile([]byte(testSchema))

	tests := []struct {
		name      string
		data      interface{}
		valid     bool
		wantField string
	}{
		{
			name:  "valid",
			data:  map[string]interface{}{"name": "Ada", "skills": []interface{}{"Go"}},
			valid: true,
		},
		{
			name:      "missing required",
			data:      map[string]interface{}{"name": "Ada"},
			wantField: "(root)",
		},
		{
			name:      "wrong item type",
			data:      map[string]interface{}{"name": "Ada", "skills": []interface{}{42}},
			wantField: "skills.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.NotEmpty(t, result.Messages()[0])
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile([]byte(`{"type": 12}`))
	assert.Error(t, err)
}
