package feed

import (
	"encoding/json"
)

// Wrapper keys checked, in order, when the top-level JSON value is an object.
var jsonWrapperKeys = []string{"products", "items", "data", "entries"}

func parseJSON(content string) ([]Record, error) {
	var top any
	if err := json.Unmarshal([]byte(content), &top); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}

	var items []any
	switch t := top.(type) {
	case []any:
		items = t
	case map[string]any:
		items = []any{t}
		for _, key := range jsonWrapperKeys {
			if arr, ok := t[key].([]any); ok {
				items = arr
				break
			}
		}
	default:
		// Valid JSON but a bare scalar: nothing to extract.
		return nil, nil
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, Record(obj))
	}
	return records, nil
}
