package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ToolCallArgs holds decoded JSON arguments for a tool call.
type ToolCallArgs map[string]json.RawMessage

// RequiredString returns a required string argument.
func (args ToolCallArgs) RequiredString(key string) (string, error) {
	value, ok, err := args.OptionalString(key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalString returns an optional string argument with a presence flag.
func (args ToolCallArgs) OptionalString(key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), true, nil
}

// ArgsFromMap converts already-decoded argument values into ToolCallArgs.
func ArgsFromMap(values map[string]any) (ToolCallArgs, error) {
	if values == nil {
		return nil, nil
	}
	args := make(ToolCallArgs, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode argument %s: %w", key, err)
		}
		args[key] = raw
	}
	return args, nil
}

// Decode returns the arguments as plain decoded values.
func (args ToolCallArgs) Decode() (map[string]any, error) {
	if args == nil {
		return nil, nil
	}
	values := make(map[string]any, len(args))
	for key, raw := range args {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode argument %s: %w", key, err)
		}
		values[key] = value
	}
	return values, nil
}
