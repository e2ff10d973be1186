package oracle

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// replySchema constrains the shape of oracle replies. Enum membership
// for analysis types and actions is checked in code against the model
// constants, so the schema stays about structure: required fields,
// types, and the confidence range.
const replySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["analysis_type", "confidence", "explanation"],
  "properties": {
    "analysis_type": {"type": "string", "minLength": 1},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "explanation": {"type": "string"},
    "recommended_action": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "action": {"type": "string", "minLength": 1},
        "details": {"type": "string"}
      }
    },
    "possible_actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["action"],
        "properties": {
          "action": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

// compileReplySchema compiles the reply schema once per client.
func compileReplySchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(replySchema))
	if err != nil {
		return nil, fmt.Errorf("parse reply schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("oracle-reply.json", doc); err != nil {
		return nil, fmt.Errorf("register reply schema: %w", err)
	}

	schema, err := compiler.Compile("oracle-reply.json")
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}
	return schema, nil
}
