// Package extract derives a puzzle description from a screenshot
// of a Pips board, using a vision-capable language model.  The
// model's output is held to a JSON Schema and to the loading
// layer's semantic rules, with a bounded retry loop that feeds
// validation failures back to the model.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/DavidBellamy/pips/puzzle"
)

// puzzleSchema is the structural contract for an extracted
// puzzle payload.  It is both enforced locally and sent to the
// model as the required response format.
const puzzleSchema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "title": "NYT Pips Extraction",
    "type": "object",
    "additionalProperties": false,
    "required": ["valid_positions", "dominoes", "regions"],
    "properties": {
        "valid_positions": {
            "type": "array",
            "items": {"$ref": "#/$defs/Position"}
        },
        "dominoes": {
            "type": "array",
            "items": {
                "type": "array",
                "minItems": 2,
                "maxItems": 2,
                "items": {"type": "integer", "minimum": 0, "maximum": 6}
            }
        },
        "regions": {
            "type": "array",
            "items": {"$ref": "#/$defs/Region"}
        }
    },
    "$defs": {
        "Position": {
            "type": "object",
            "additionalProperties": false,
            "required": ["row", "col"],
            "properties": {
                "row": {"type": "integer", "minimum": 0},
                "col": {"type": "integer", "minimum": 0}
            }
        },
        "Constraint": {
            "type": "object",
            "additionalProperties": false,
            "required": ["type"],
            "properties": {
                "type": {
                    "type": "string",
                    "enum": ["none", "equal", "notequal", "greater_than", "less_than", "number"]
                },
                "value": {"type": "integer", "minimum": 0}
            }
        },
        "Region": {
            "type": "object",
            "additionalProperties": false,
            "required": ["positions", "constraint"],
            "properties": {
                "positions": {
                    "type": "array",
                    "minItems": 1,
                    "items": {"$ref": "#/$defs/Position"}
                },
                "constraint": {"$ref": "#/$defs/Constraint"}
            }
        }
    }
}`

var compiledSchema = jsonschema.MustCompileString("pips-extraction.json", puzzleSchema)

// ValidatePayload checks a raw model payload, first structurally
// against the JSON Schema and then semantically through the
// puzzle loading layer.  On success it returns the validated
// description; the returned error text is suitable for feeding
// back to the model on retry.
func ValidatePayload(payload []byte) (*puzzle.Summary, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %v", err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("payload failed schema validation: %v", err)
	}
	var summary puzzle.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("payload did not decode as a puzzle description: %v", err)
	}
	// the loading layer holds the semantic rules (value presence
	// per constraint kind, cage cardinality, on-board positions);
	// building a board applies them all
	if _, err := puzzle.New(&summary); err != nil {
		return nil, fmt.Errorf("payload failed puzzle validation: %v", err)
	}
	return &summary, nil
}
