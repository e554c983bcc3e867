package config

import "encoding/json"

type schemaProperty struct {
	Description string          `json:"description,omitempty"`
	Type        any             `json:"type"`
	Items       *schemaProperty `json:"items,omitempty"`
}

type schemaDocument struct {
	Schema     string                    `json:"$schema"`
	Title      string                    `json:"title"`
	Type       string                    `json:"type"`
	Required   []string                  `json:"required"`
	Properties map[string]schemaProperty `json:"properties"`
}

var stringItems = &schemaProperty{Type: "string"}

// Schema returns the JSON schema of Model, pretty printed.
func Schema() string {
	doc := schemaDocument{
		Schema:   "http://json-schema.org/draft-07/schema#",
		Title:    "Model",
		Type:     "object",
		Required: []string{"paths"},
		Properties: map[string]schemaProperty{
			"paths": {
				Description: "List of paths as globs",
				Type:        "array",
				Items:       stringItems,
			},
			"blacklist": {
				Description: "List of globs to use for filtering (global blacklist)",
				Type:        []string{"array", "null"},
				Items:       stringItems,
			},
			"styleFile": {
				Description: "Optional path to a `.clang-format` style file (can be specified via --style)",
				Type:        []string{"string", "null"},
			},
			"styleRoot": {
				Description: "Optional path where the `.clang-format` file should be copied to while executing",
				Type:        []string{"string", "null"},
			},
			"command": {
				Description: "Optional path to the `clang-format` executable or command name",
				Type:        []string{"string", "null"},
			},
		},
	}

	// The document only holds strings, slices and maps.
	data, _ := json.MarshalIndent(doc, "", "  ")
	return string(data)
}
