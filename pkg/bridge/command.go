package bridge

import (
	"context"
	"encoding/json"
)

// Command is one named operation the UI can invoke.
type Command interface {
	// Name returns the wire name, e.g. "read_notebook_file"
	Name() string

	// Description returns a human-readable summary
	Description() string

	// Schema returns the JSON schema of the arguments object
	Schema() map[string]interface{}

	// Execute decodes args and performs the operation. The result is
	// serialized as the response's result field; nil means no result.
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// argsSchema creates the common JSON schema of a command's arguments.
func argsSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// decodeArgs unmarshals a JSON object into v. Absent or null args decode as
// an empty object.
func decodeArgs(op string, args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidArgs(op, "invalid arguments: %v", err)
	}
	return nil
}
