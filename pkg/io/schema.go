package io

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of [Document], indented for display.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&Document{})
	s.Title = "dotgraph document"
	return json.MarshalIndent(s, "", "  ")
}
