package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceTags(t *testing.T) {
	replacements := map[string]string{
		"user":     "Ada",
		"char":     "Bram",
		"original": "",
	}

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "known tags",
			source:   "Hello {{user}}, I am {{char}}.",
			expected: "Hello Ada, I am Bram.",
		},
		{
			name:     "unknown tags are left intact",
			source:   "History:\n{{messages}}\n{{post_history_instructions}}",
			expected: "History:\n{{messages}}\n{{post_history_instructions}}",
		},
		{
			name:     "empty replacement",
			source:   "[{{original}}]",
			expected: "[]",
		},
		{
			name:     "adjacent tags",
			source:   "{{user}}{{char}}{{user}}",
			expected: "AdaBramAda",
		},
		{
			name:     "tags with spaces are not tags",
			source:   "{{ user }}",
			expected: "{{ user }}",
		},
		{
			name:     "no tags",
			source:   "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReplaceTags(tt.source, replacements))
		})
	}
}

func TestReplaceTags_NilMap(t *testing.T) {
	assert.Equal(t, "{{user}} waits", ReplaceTags("{{user}} waits", nil))
}

func TestStageDirections(t *testing.T) {
	got := StageDirections("Knock loudly")
	assert.True(t, strings.HasPrefix(got, "Critical Instruction: {{user}} has selected the following action: Knock loudly."))
	assert.Contains(t, got, "Depict {{user}}'s actions and outcome")
	assert.Contains(t, got, "Do not present a list of options")
}

func TestActionPrompt_HasStopDelimiters(t *testing.T) {
	assert.True(t, strings.HasSuffix(ActionPrompt, "###\n"))
	assert.GreaterOrEqual(t, strings.Count(ActionPrompt, "###"), 3)
}
