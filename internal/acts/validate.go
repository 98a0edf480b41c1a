package acts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wgamage/actextract/constants"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ValidatorForMode returns the payload validator applied before a chunk
// result is checkpointed. Text mode has no schema and gets nil.
func ValidatorForMode(mode constants.Mode) func([]byte) error {
	switch mode {
	case constants.ModeClauses:
		schemaMap := BuildClauseDocumentSchema()
		return func(data []byte) error {
			return ValidateJSONAgainstSchema(schemaMap, data)
		}
	case constants.ModeGrouped:
		schemaMap := BuildGroupedSectionsSchema()
		return func(data []byte) error {
			return ValidateJSONAgainstSchema(schemaMap, data)
		}
	default:
		return nil
	}
}
