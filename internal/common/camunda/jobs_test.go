// internal/common/camunda/jobs_test.go
package camunda

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipelineerrors "scheme-finder/internal/common/errors"
	"scheme-finder/internal/common/validation"
)

func TestDecodeVariables(t *testing.T) {
	var input struct {
		RawText string `json:"rawText"`
		UserID  string `json:"userId"`
	}

	err := DecodeVariables(`{"rawText":"farmer in Bihar","userId":"u-9","processVar":1}`, validation.ExtractProfileInput, &input)
	require.NoError(t, err)
	assert.Equal(t, "farmer in Bihar", input.RawText)
	assert.Equal(t, "u-9", input.UserID)
}

func TestDecodeVariables_Invalid(t *testing.T) {
	var input map[string]interface{}

	err := DecodeVariables(`{"userId":"u-9"}`, validation.ExtractProfileInput, &input)
	assert.True(t, errors.Is(err, pipelineerrors.ErrInvalidInput))

	err = DecodeVariables(`not json`, validation.ExtractProfileInput, &input)
	assert.True(t, errors.Is(err, pipelineerrors.ErrInvalidInput))
}
