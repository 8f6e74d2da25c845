package tool

import "encoding/json"

// SchemaJSON marshals a schema description into its JSON Schema document.
// On marshal failure it degrades to the empty object schema rather than
// blocking tool registration.
func SchemaJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}
