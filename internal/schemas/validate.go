// Package schemas validates LLM optimization replies and parsed document
// output against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Embedded schema names
const (
	OptimizationReply = "optimization_reply"
	ParsedDocument    = "parsed_document"
)

// FieldError is one violation at a JSON path
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Schema != "" {
		fmt.Fprintf(&sb, "%s validation failed:", e.Schema)
	} else {
		sb.WriteString("validation failed:")
	}
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself could not be compiled
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("schema %q: unknown embedded schema", e.Name)
	}
	return fmt.Sprintf("schema %q: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled JSON Schema
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// Compile parses raw schema JSON. name only labels errors.
func Compile(name string, raw []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Cause: err}
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Validate checks data against the schema. Malformed JSON is reported as a
// plain error, schema violations as *ValidationError.
func (s *Schema) Validate(data []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate against %s: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: re.Description()})
	}
	return verr
}

var embedded sync.Map // name -> func() (*Schema, error)

// Lookup returns the compiled embedded schema with the given name
func Lookup(name string) (*Schema, error) {
	if load, ok := embedded.Load(name); ok {
		return load.(func() (*Schema, error))()
	}

	raw, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return nil, &SchemaLoadError{Name: name}
	}
	load, _ := embedded.LoadOrStore(name, sync.OnceValues(func() (*Schema, error) {
		return Compile(name, raw)
	}))
	return load.(func() (*Schema, error))()
}

// Validate checks data against the named embedded schema
func Validate(name string, data []byte) error {
	s, err := Lookup(name)
	if err != nil {
		return err
	}
	return s.Validate(data)
}
