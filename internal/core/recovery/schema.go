package recovery

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema plus its source, which repair prompts
// quote verbatim.
type Schema struct {
	Name     string
	Document string
	compiled *jsonschema.Schema
}

func CompileSchema(name, document string) (*Schema, error) {
	compiled, err := jsonschema.CompileString(name, document)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{Name: name, Document: document, compiled: compiled}, nil
}

func MustCompileSchema(name, document string) *Schema {
	s, err := CompileSchema(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Validate(v any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	return s.compiled.Validate(v)
}

// BatchSchema is the intermediate shape of an extraction response. Item
// fields stay loosely typed; coercion handles them after parsing.
var BatchSchema = MustCompileSchema("inventory_batch.json", `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "purchaseDate": {"type": ["string", "null"]},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": ["string", "null"]},
          "genericName": {"type": ["string", "null"]},
          "quantity": {"type": ["number", "string", "null"]},
          "unit": {"type": ["string", "null"]},
          "storageLocation": {"type": ["string", "null"]},
          "shelfLifeDays": {"type": ["number", "string", "null"]},
          "bestBeforeDate": {"type": ["string", "null"]},
          "category": {"type": ["string", "null"]},
          "confidence": {"type": ["number", "string", "null"]}
        }
      }
    }
  }
}`)

// ExpirySchema is the intermediate shape of a single-item estimate.
var ExpirySchema = MustCompileSchema("expiry_estimate.json", `{
  "type": "object",
  "properties": {
    "shelfLifeDays": {"type": ["number", "string", "null"]},
    "reason": {"type": ["string", "null"]}
  }
}`)
