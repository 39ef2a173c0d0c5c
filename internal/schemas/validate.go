// Package schemas validates input and output documents against the embedded JSON Schemas.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	files "github.com/jonathan/consultant-match/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Schema string
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	data, err := files.Read(name)
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Cause: err}
	}

	compiled[name] = s
	return s, nil
}

// Validate checks document against the embedded schema with the given file name
// (see the constants in the schemas package).
func Validate(schemaName string, document []byte) error {
	schema, err := load(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to read %s document: %w", strings.TrimSuffix(schemaName, ".schema.json"), err)
	}
	return toValidationError(schemaName, result)
}

func toValidationError(schemaName string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: schemaName,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
