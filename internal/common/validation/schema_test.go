package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{"valid", `{"name": "acme", "count": 2}`, true, ""},
		{"missing required", `{"count": 2}`, false, "(root)"},
		{"wrong type", `{"name": "acme", "count": "two"}`, false, "count"},
		{"below minimum", `{"name": "acme", "count": -1}`, false, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateDocument(testSchema, []byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.wantField, res.Errors[0].Field)
				assert.NotEmpty(t, res.GetErrorMessages())
			}
		})
	}
}

func TestValidateDocument_NotJSON(t *testing.T) {
	_, err := ValidateDocument(testSchema, []byte(`{broken`))
	assert.Error(t, err)
}

type recipient struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

func TestValidateStruct(t *testing.T) {
	res := ValidateStruct(recipient{Name: "Ana", Email: "ana@example.com"})
	assert.True(t, res.Valid)

	res = ValidateStruct(recipient{Name: "", Email: "not-an-address"})
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "Name", res.Errors[0].Field)
	assert.Equal(t, "REQUIRED", res.Errors[0].Code)
	assert.Equal(t, "Email", res.Errors[1].Field)
	assert.Equal(t, "EMAIL", res.Errors[1].Code)
	assert.Equal(t, []string{`Name: failed "required" rule`, `Email: failed "email" rule`}, res.GetErrorMessages())
}
