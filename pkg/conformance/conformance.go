package conformance

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wonderfulspam/qoe-guard/pkg/parser"
)

// Mismatch is one schema violation found in a candidate payload.
type Mismatch struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result reports whether a payload conforms to its schema.
type Result struct {
	Valid      bool       `json:"valid"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Validator checks candidate payloads against a compiled JSON Schema.
// Compile once, validate many; the compiled schema is read-only.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a JSON Schema document. The name is used in compile
// error messages only.
func NewValidator(name string, schemaJSON []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a payload against the schema and collects every leaf
// violation. Validation problems are data, not errors: an invalid payload
// yields a Result, never a failure.
func (v *Validator) Validate(doc parser.Value) Result {
	err := v.schema.Validate(doc.Interface())
	if err == nil {
		return Result{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{Valid: false, Mismatches: []Mismatch{{Path: "$", Message: err.Error()}}}
	}

	var mismatches []Mismatch
	collectLeaves(verr, &mismatches)
	return Result{Valid: false, Mismatches: mismatches}
}

func collectLeaves(verr *jsonschema.ValidationError, out *[]Mismatch) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Mismatch{
			Path:    displayPath(verr.InstanceLocation),
			Message: verr.Message,
		})
		return
	}
	for _, cause := range verr.Causes {
		collectLeaves(cause, out)
	}
}

// displayPath turns a JSON pointer like /playback/items/2 into the dotted
// display form used elsewhere in reports. Display only.
func displayPath(pointer string) string {
	if pointer == "" {
		return "$"
	}
	return "$" + strings.ReplaceAll(pointer, "/", ".")
}
