package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// State is the record persisted in the host's per-message state blob.
type State struct {
	Choices []string `json:"choices"`
}

// Encode serializes the menu into a state blob.
func Encode(m Menu) (json.RawMessage, error) {
	choices := m.choices
	if choices == nil {
		choices = []string{}
	}
	data, err := json.Marshal(State{Choices: choices})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal menu state: %w", err)
	}
	return data, nil
}

// Decode restores a menu from a state blob. An empty or null blob, or a
// record without a choices field, yields an empty menu. Stored entries are
// normalized again rather than trusted.
func Decode(blob []byte) (Menu, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Menu{}, nil
	}

	var st State
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return Menu{}, fmt.Errorf("failed to unmarshal menu state: %w", err)
	}
	return New(st.Choices...), nil
}
