// Package validation checks Zeebe job variables against an activity's input schema.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "studybuddy/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateInput runs input against a JSON schema. An empty schema accepts anything.
func ValidateInput(input interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// ValidateVariables decodes a job's raw variables and validates them, returning
// a SCHEMA_VALIDATION_FAILED StandardError listing each violation.
func ValidateVariables(variables string, schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return apperrors.NewSchemaValidationFailedError(err.Error())
	}

	result, err := ValidateInput(doc, schema)
	if err != nil {
		return apperrors.NewSchemaValidationFailedError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewSchemaValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("fields", result.Fields())
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) Fields() []string {
	fields := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		fields = append(fields, err.Field)
	}
	return fields
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
