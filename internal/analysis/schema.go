package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const responseSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "verdict", "insights", "recommendations"],
  "properties": {
    "summary": {"type": "string"},
    "verdict": {"type": "string"},
    "insights": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "title", "message"],
        "properties": {
          "type": {"type": "string"},
          "title": {"type": "string"},
          "message": {"type": "string"}
        }
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "marketContext": {"type": "string"}
  }
}`

var responseSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", strings.NewReader(responseSchemaJSON)); err != nil {
		panic(fmt.Sprintf("analysis schema: %v", err))
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		panic(fmt.Sprintf("analysis schema: %v", err))
	}
	return schema
}

// decodeAnalysis validates raw JSON against the analysis contract and decodes it.
func decodeAnalysis(raw []byte) (*Analysis, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := responseSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var out Analysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	out.normalize()
	return &out, nil
}
