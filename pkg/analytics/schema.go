package analytics

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names, one per endpoint payload.
const (
	SchemaHealth          = "health"
	SchemaReport          = "report"
	SchemaSegments        = "segments"
	SchemaRecommendations = "recommendations"
)

// ErrInvalidPayload marks responses whose shape does not match the endpoint schema.
var ErrInvalidPayload = errors.New("analytics: invalid payload")

//go:embed schemas/*.json
var embeddedSchemas embed.FS

// PayloadValidator checks a raw response body against a named schema.
type PayloadValidator interface {
	Validate(name string, body []byte) error
}

// SchemaValidator compiles the embedded endpoint schemas on first use.
type SchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate decodes body and checks it against the named schema.
func (v *SchemaValidator) Validate(name string, body []byte) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}
	return nil
}

func (v *SchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := embeddedSchemas.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("analytics: unknown schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("analytics: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("analytics: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopValidator struct{}

func (noopValidator) Validate(string, []byte) error { return nil }
