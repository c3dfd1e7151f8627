package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// recordSchema describes the persisted record: every field present, strings or
// null, with list fields as string arrays.
func recordSchema() map[string]any {
	nullableString := map[string]any{"type": []any{"string", "null"}}
	nullableList := map[string]any{
		"type":  []any{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
	props := map[string]any{}
	required := []any{}
	for _, f := range constants.AllFields() {
		required = append(required, string(f))
		switch f {
		case constants.Materials, constants.SeismicResistanceSystem:
			props[string(f)] = nullableList
		case constants.ProjectName, constants.Location:
			props[string(f)] = map[string]any{"type": "string", "minLength": 1}
		default:
			props[string(f)] = nullableString
		}
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var compiledRecordSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(recordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("record.json")
})

// ValidateRecordJSON checks a marshalled Record before it is persisted.
func ValidateRecordJSON(data []byte) error {
	schema, err := compiledRecordSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
