package form

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://taskflow.local/schemas/"

// schema is a compiled form schema with its per-field messages.
type schema struct {
	compiled *jsonschema.Schema
	fields   []string          // display order of fields
	messages map[string]string // field -> message shown instead of the schema error
}

// mustCompile compiles an embedded schema. Schemas ship with the binary, so a
// compile failure is a programming error.
func mustCompile(name string, fields []string, messages map[string]string) *schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("form: read schema %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	url := schemaBaseURL + name
	if err := compiler.AddResource(url, strings.NewReader(string(data))); err != nil {
		panic(fmt.Sprintf("form: add schema %s: %v", name, err))
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("form: compile schema %s: %v", name, err))
	}
	return &schema{compiled: compiled, fields: fields, messages: messages}
}

// validate checks v against the schema and returns a *ValidationError with
// at most one message per field, in field order.
func (s *schema) validate(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal form: %w", err)
	}

	err = s.compiled.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	byField := make(map[string]string)
	collectLeaves(ve, byField)

	result := &ValidationError{}
	for _, field := range s.fields {
		msg, ok := byField[field]
		if !ok {
			continue
		}
		if custom, ok := s.messages[field]; ok {
			msg = custom
		}
		result.Errors = append(result.Errors, FieldError{Field: field, Message: msg})
		delete(byField, field)
	}

	// Errors not tied to a known field (e.g. a missing required property).
	rest := make([]string, 0, len(byField))
	for field := range byField {
		rest = append(rest, field)
	}
	sort.Strings(rest)
	for _, field := range rest {
		result.Errors = append(result.Errors, FieldError{Field: field, Message: byField[field]})
	}
	return result
}

// collectLeaves records the first leaf error for each instance location.
func collectLeaves(err *jsonschema.ValidationError, out map[string]string) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		if _, seen := out[field]; !seen {
			out[field] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectLeaves(cause, out)
	}
}

// validateOnly checks the fields present in doc and ignores errors about
// absent ones, such as missing required properties.
func (s *schema) validateOnly(doc map[string]string) error {
	err := s.validate(doc)
	ve, ok := err.(*ValidationError)
	if !ok {
		return err
	}
	kept := ve.Errors[:0]
	for _, fe := range ve.Errors {
		if _, present := doc[fe.Field]; present {
			kept = append(kept, fe)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	ve.Errors = kept
	return ve
}
