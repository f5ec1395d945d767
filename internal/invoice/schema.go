package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// BuildRecordsJSONSchema returns a JSON-Schema for the output array as a generic map.
func BuildRecordsJSONSchema() map[string]any {
	props := map[string]any{
		constants.DocumentNumberKey: map[string]any{"type": "integer", "minimum": 1},
	}
	required := []string{constants.DocumentNumberKey}
	for _, name := range constants.FieldNames() {
		props[name] = fieldProp()
		required = append(required, name)
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		},
	}
}

func fieldProp() map[string]any {
	return map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"required":             []string{"content", "confidence"},
		"properties": map[string]any{
			"content":    map[string]any{"type": []string{"string", "null"}},
			"confidence": map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 1.0},
		},
	}
}

var recordsSchema = mustCompile(BuildRecordsJSONSchema())

// ValidateRecordsJSON checks serialized records against BuildRecordsJSONSchema.
func ValidateRecordsJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := recordsSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("records.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	return compiler.MustCompile("records.json")
}
