// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	pipelineerrors "scheme-finder/internal/common/errors"
)

// Schema is a compiled JSON Schema for one request or job payload.
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// MustCompile panics on an invalid schema; schemas are package-level literals.
func MustCompile(name string, schema map[string]interface{}) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return &Schema{name: name, compiled: compiled}
}

func (s *Schema) Name() string { return s.name }

// ValidateJSON checks a raw JSON document. Failures wrap ErrInvalidInput.
func (s *Schema) ValidateJSON(raw []byte) error {
	return s.validate(gojsonschema.NewBytesLoader(raw))
}

// Validate checks an already-decoded Go value.
func (s *Schema) Validate(document interface{}) error {
	return s.validate(gojsonschema.NewGoLoader(document))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) error {
	result, err := s.compiled.Validate(loader)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", pipelineerrors.ErrInvalidInput, s.name, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("%w: %s", pipelineerrors.ErrInvalidInput, strings.Join(errs, "; "))
}
