package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateDocument checks a JSON document against a JSON schema. The error
// return is reserved for an unusable schema or a document that is not JSON.
func ValidateDocument(schema string, document []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out, nil
}

// ValidateStruct applies `validate` struct tags.
func ValidateStruct(v interface{}) *ValidationResult {
	err := structValidator.Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Message: err.Error(), Code: "INVALID"}},
		}
	}

	out := &ValidationResult{Valid: false}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q rule", fe.Tag()),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return out
}

func (r *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Field != "" {
			messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
		} else {
			messages = append(messages, e.Message)
		}
	}
	return messages
}
