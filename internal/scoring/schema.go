package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Item schemas for the two batch response shapes. Validation happens per
// array element so one malformed entry drops only itself, not the batch.
const rankItemSchema = `{
	"type": "object",
	"required": ["lead_id", "rank"],
	"properties": {
		"lead_id": {"type": "string", "minLength": 1},
		"rank": {"type": "number"},
		"justification": {"type": "string"}
	}
}`

const qualifyItemSchema = `{
	"type": "object",
	"required": ["lead_id", "qualified"],
	"properties": {
		"lead_id": {"type": "string", "minLength": 1},
		"qualified": {"type": "boolean"},
		"justification": {"type": "string"}
	}
}`

// validItems unmarshals a JSON array response and returns the elements that
// pass the item schema. A response that is not a JSON array at all is an
// error; individually malformed elements are silently dropped.
func validItems(response, itemSchema string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(response), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w (content: %s)", err, truncate(response, 200))
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(itemSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	valid := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(item))
		if err != nil || !result.Valid() {
			continue
		}
		valid = append(valid, item)
	}
	return valid, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
