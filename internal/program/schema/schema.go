// Package schema validates authored program documents against an embedded
// JSON Schema before they are decoded into models. It catches structural
// mistakes (unknown fields, wrong types, missing condition payloads) with
// precise locations; semantic rules stay in models.Program.Validate.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dErrors "grantgate/pkg/domain-errors"
)

const schemaURL = "https://grantgate.local/schemas/program.schema.json"

//go:embed program.schema.json
var programSchema string

// Document names a validatable document root.
type Document string

const (
	DocumentProgram   Document = ""
	DocumentCriterion Document = "#/$defs/criterion"
	DocumentQuestion  Document = "#/$defs/question"
)

const maxReportedViolations = 5

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[Document]*jsonschema.Schema
}

// New compiles the embedded schema. It fails only if the embedded document
// itself is broken.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(programSchema)); err != nil {
		return nil, fmt.Errorf("program schema load failed: %w", err)
	}

	v := &Validator{schemas: map[Document]*jsonschema.Schema{}}
	for _, doc := range []Document{DocumentProgram, DocumentCriterion, DocumentQuestion} {
		compiled, err := c.Compile(schemaURL + string(doc))
		if err != nil {
			return nil, fmt.Errorf("program schema compile failed for %q: %w", doc, err)
		}
		v.schemas[doc] = compiled
	}
	return v, nil
}

// MustNew is New for package initialisation and tests.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateBytes checks a raw JSON document. Violations are reported as a
// CodeValidation error listing the offending locations.
func (v *Validator) ValidateBytes(doc Document, raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON document")
	}
	return v.Validate(doc, instance)
}

// Validate checks an already decoded document (maps, slices and
// json.Number or float64 numbers).
func (v *Validator) Validate(doc Document, instance any) error {
	compiled, ok := v.schemas[doc]
	if !ok {
		return fmt.Errorf("unknown schema document %q", doc)
	}
	err := compiled.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "schema validation failed")
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, summarize(ve))
}

// summarize flattens the validation tree to its leaves, which name the
// concrete failing keyword and instance location.
func summarize(ve *jsonschema.ValidationError) string {
	var leaves []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			leaves = append(leaves, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(leaves)
	leaves = dedupe(leaves)
	if len(leaves) > maxReportedViolations {
		leaves = append(leaves[:maxReportedViolations], fmt.Sprintf("and %d more", len(leaves)-maxReportedViolations))
	}
	return "document does not match schema: " + strings.Join(leaves, "; ")
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
