package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchemaPath is a synthetic resource name; the schema is compiled
// from an embedded string rather than a file on disk, since a scenario
// transcript's shape doesn't change per build and ships with the binary.
const documentSchemaPath = "tkeyfido://scenario-document.schema.json"

const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "request", "expect"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "request": {
      "type": "object",
      "required": ["endpoint", "body_hex"],
      "properties": {
        "endpoint": {"enum": ["app", "firmware"]},
        "body_hex": {"type": "string", "pattern": "^([0-9a-fA-F]{2})*$"},
        "touch": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "expect": {
      "type": "object",
      "required": ["length"],
      "properties": {
        "length": {"type": "integer", "minimum": 1, "maximum": 128},
        "body_hex": {"type": "string", "pattern": "^([0-9a-fA-F]{2})*$"},
        "body_prefix_hex": {"type": "string", "pattern": "^([0-9a-fA-F]{2})*$"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

func compileDocumentSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(documentSchemaPath, bytes.NewReader([]byte(documentSchemaJSON))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(documentSchemaPath)
}

// Validate checks doc against the scenario document schema. It round-trips
// doc through JSON rather than validating the Go struct directly, since
// jsonschema operates on decoded JSON values (map[string]any), not struct
// types.
func Validate(doc *Document) error {
	schema, err := compileDocumentSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	return schema.Validate(instance)
}
