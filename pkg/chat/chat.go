package chat

import "strings"

const (
	ChatRoleUser   = "user"      // Human participant
	ChatRoleAgent  = "assistant" // Character
	ChatRoleSystem = "system"    // Stage directions or system
)

// ChatMessage represents a single chat message in the conversation.
type ChatMessage struct {
	Role    string `json:"role"`           // "user", "assistant", "system"
	Name    string `json:"name,omitempty"` // Display name of the speaker, if known
	Content string `json:"content"`
}

// TextGenRequest is a single completion request to the external generator.
type TextGenRequest struct {
	Prompt         string        `json:"prompt"`
	MinTokens      int           `json:"min_tokens,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	IncludeHistory bool          `json:"include_history"`
	History        []ChatMessage `json:"history,omitempty"` // Used only when IncludeHistory is set
	Stop           []string      `json:"stop,omitempty"`
}

// TextGenResult is what the generator produced. Result carries no
// guaranteed structure.
type TextGenResult struct {
	Result string `json:"result"`
}

// FormatHistory renders messages one per line as "speaker: content".
func FormatHistory(history []ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		speaker := msg.Name
		if speaker == "" {
			speaker = msg.Role
		}
		lines = append(lines, speaker+": "+strings.TrimSpace(msg.Content))
	}
	return strings.Join(lines, "\n")
}
