// Package codec decodes the JSON parameter payload persisted on a workflow action into the
// typed parameter struct of its action kind.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaVersionField is the envelope key carrying the parameter schema version.
const SchemaVersionField = "SchemaVersion"

// Codec converts between a parameters payload and T for one action kind.
//
// Payloads without a SchemaVersion were written before versioning existed and are read as
// version 1. Payloads with a version newer than the codec's are rejected.
type Codec[T any] struct {
	kind     models.ActionKind
	version  int
	schema   *gojsonschema.Schema
	validate *validator.Validate
}

// New compiles schema and returns a codec for kind at the given schema version.
func New[T any](kind models.ActionKind, version int, schema map[string]any) (*Codec[T], error) {
	if version < 1 {
		return nil, fmt.Errorf("schema version must be at least 1, got %d", version)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(withVersionProperty(schema)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s parameters schema: %w", kind, err)
	}

	return &Codec[T]{
		kind:     kind,
		version:  version,
		schema:   compiled,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// MustNew is like New but panics on an invalid schema. Intended for package-level codecs.
func MustNew[T any](kind models.ActionKind, version int, schema map[string]any) *Codec[T] {
	c, err := New[T](kind, version, schema)
	if err != nil {
		panic(err)
	}

	return c
}

// Decode validates raw against the schema and the struct rules of T and returns the typed
// parameters. Every failure is a *DecodeError.
func (c *Codec[T]) Decode(raw string) (*T, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &DecodeError{Kind: c.kind, Err: ErrEmptyParameters}
	}

	var envelope struct {
		SchemaVersion *int `json:"SchemaVersion"`
	}

	err := json.Unmarshal([]byte(raw), &envelope)
	if err != nil {
		return nil, &DecodeError{Kind: c.kind, Err: fmt.Errorf("%w: %w", ErrInvalidParameters, err)}
	}

	if envelope.SchemaVersion != nil && *envelope.SchemaVersion > c.version {
		return nil, &DecodeError{
			Kind:    c.kind,
			Err:     ErrUnsupportedSchemaVersion,
			Details: []string{fmt.Sprintf("payload version %d, supported up to %d", *envelope.SchemaVersion, c.version)},
		}
	}

	result, err := c.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &DecodeError{Kind: c.kind, Err: fmt.Errorf("%w: %w", ErrInvalidParameters, err)}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, &DecodeError{Kind: c.kind, Err: ErrInvalidParameters, Details: details}
	}

	var params T

	err = json.Unmarshal([]byte(raw), &params)
	if err != nil {
		return nil, &DecodeError{Kind: c.kind, Err: fmt.Errorf("%w: %w", ErrInvalidParameters, err)}
	}

	err = c.validate.Struct(&params)
	if err != nil {
		return nil, &DecodeError{Kind: c.kind, Err: ErrInvalidParameters, Details: validationDetails(err)}
	}

	return &params, nil
}

// Validate reports whether raw decodes cleanly.
func (c *Codec[T]) Validate(raw string) error {
	_, err := c.Decode(raw)

	return err
}

// Encode serializes params stamped with the codec's schema version.
func (c *Codec[T]) Encode(params T) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s parameters: %w", c.kind, err)
	}

	var fields map[string]any

	err = json.Unmarshal(data, &fields)
	if err != nil {
		return "", fmt.Errorf("%s parameters must encode to a JSON object: %w", c.kind, err)
	}

	fields[SchemaVersionField] = c.version

	data, err = json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s parameters: %w", c.kind, err)
	}

	return string(data), nil
}

func withVersionProperty(schema map[string]any) map[string]any {
	merged := make(map[string]any, len(schema)+1)
	for key, value := range schema {
		merged[key] = value
	}

	properties := make(map[string]any)
	if existing, ok := schema["properties"].(map[string]any); ok {
		for key, value := range existing {
			properties[key] = value
		}
	}

	properties[SchemaVersionField] = map[string]any{"type": "integer", "minimum": 1}
	merged["properties"] = properties

	if _, ok := merged["type"]; !ok {
		merged["type"] = "object"
	}

	return merged
}

func validationDetails(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}

	return details
}
