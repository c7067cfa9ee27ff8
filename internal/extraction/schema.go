package extraction

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// analysisSchema is the JSON Schema every tier-1 response must satisfy
// before decoding. Category stays a plain string here; enum coercion
// happens after decode so an off-enum category degrades to General rather
// than discarding an otherwise usable response.
const analysisSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["is_important", "category", "target_audience", "summary"],
  "properties": {
    "is_important": {"type": "boolean"},
    "category": {"type": "string", "minLength": 1},
    "target_audience": {
      "type": "array",
      "items": {"type": "string"}
    },
    "summary": {"type": "string"},
    "entities": {
      "type": "object",
      "additionalProperties": {"type": ["string", "null"]}
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

var analysisSchemaLoader = gojsonschema.NewStringLoader(analysisSchema)

// validateAnalysisJSON checks a raw response against the analysis schema.
func validateAnalysisJSON(raw string) error {
	result, err := gojsonschema.Validate(analysisSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation could not run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	return fmt.Errorf("invalid analysis JSON: %s: %s (and %d more)", first.Field(), first.Description(), len(result.Errors())-1)
}
