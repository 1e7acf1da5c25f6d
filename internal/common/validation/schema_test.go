package validation

import (
	"testing"

	apperrors "studybuddy/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assignmentSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"submissionId"},
	"properties": map[string]interface{}{
		"submissionId": map[string]interface{}{"type": "string", "minLength": 1},
		"status": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"New", "In Progress", "Closed"},
		},
	},
}

func TestValidateInput(t *testing.T) {
	res, err := ValidateInput(map[string]interface{}{"submissionId": "abc", "status": "Closed"}, assignmentSchema)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateInput(map[string]interface{}{"status": "Done"}, assignmentSchema)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("status"))
	assert.Len(t, res.Errors, 2)
}

func TestValidateInput_EmptySchema(t *testing.T) {
	res, err := ValidateInput(map[string]interface{}{"anything": 1}, nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateVariables(t *testing.T) {
	assert.NoError(t, ValidateVariables(`{"submissionId":"abc"}`, assignmentSchema))

	err := ValidateVariables(`{"status":"Done"}`, assignmentSchema)
	require.Error(t, err)
	stdErr := apperrors.AsStandard(err)
	assert.Equal(t, apperrors.ErrCodeSchemaValidationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Metadata["fields"], "status")

	err = ValidateVariables(`not json`, assignmentSchema)
	assert.Equal(t, apperrors.ErrCodeSchemaValidationFailed, apperrors.AsStandard(err).Code)
}
