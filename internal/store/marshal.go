package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalArgs converts command arguments to a JSON array for storage.
// HTML escaping is off so arguments are stored as typed.
func marshalArgs(args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalArgs parses a stored JSON array.
func unmarshalArgs(data string) ([]string, error) {
	args := []string{}
	if data == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return args, nil
}
