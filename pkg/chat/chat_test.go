package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistory(t *testing.T) {
	history := []ChatMessage{
		{Role: ChatRoleUser, Name: "Ada", Content: "I open the door.\n"},
		{Role: ChatRoleAgent, Content: "  The hinges shriek."},
	}

	assert.Equal(t, "Ada: I open the door.\nassistant: The hinges shriek.", FormatHistory(history))
	assert.Equal(t, "", FormatHistory(nil))
}
