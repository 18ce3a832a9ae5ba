package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/action-stage/pkg/actor"
)

// Builder constructs the elicitation prompt that asks the generator for
// the next menu of actions.
type Builder struct {
	character    *actor.Character
	user         *actor.User
	chatHistory  string
	instructions string
}

// New creates a builder whose history and instruction sections are left as
// host placeholders.
func New() *Builder {
	return &Builder{
		chatHistory:  HistoryTag,
		instructions: InstructionsTag,
	}
}

// WithCharacter sets the responding character.
func (b *Builder) WithCharacter(c *actor.Character) *Builder {
	b.character = c
	return b
}

// WithUser sets the participant the actions are offered to.
func (b *Builder) WithUser(u *actor.User) *Builder {
	b.user = u
	return b
}

// WithChatHistory replaces the chat history placeholder.
func (b *Builder) WithChatHistory(history string) *Builder {
	b.chatHistory = history
	return b
}

// WithInstructions replaces the prior-instructions placeholder.
func (b *Builder) WithInstructions(instructions string) *Builder {
	b.instructions = instructions
	return b
}

// Build returns the finished prompt with {{char}}, {{user}} and
// {{original}} expanded.
func (b *Builder) Build() (string, error) {
	if b.character == nil {
		return "", fmt.Errorf("character is required")
	}
	if b.user == nil {
		return "", fmt.Errorf("user is required")
	}

	var sb strings.Builder
	sb.WriteString("Details about {{char}}:\n")
	sb.WriteString(b.character.Details())
	sb.WriteString("\n\nDetails about {{user}}:\n")
	sb.WriteString(b.user.ChatProfile)
	sb.WriteString("\n\nChat History:\n")
	sb.WriteString(b.chatHistory)
	sb.WriteString("\n\nDefault Instruction:\n")
	sb.WriteString(b.instructions)
	sb.WriteString("\n\n")
	sb.WriteString(ActionPrompt)

	return ReplaceTags(sb.String(), map[string]string{
		"char":     b.character.Name,
		"user":     b.user.Name,
		"original": "",
	}), nil
}

// BuildElicitation is shorthand for the builder with every section set.
func BuildElicitation(c *actor.Character, u *actor.User, chatHistory, instructions string) (string, error) {
	return New().
		WithCharacter(c).
		WithUser(u).
		WithChatHistory(chatHistory).
		WithInstructions(instructions).
		Build()
}

// StageDirections returns the directive naming the action the user chose.
func StageDirections(action string) string {
	return fmt.Sprintf(StageDirectionsTemplate, action)
}
