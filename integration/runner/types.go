package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/action-stage/pkg/actor"
	"github.com/jwebster45206/action-stage/pkg/chat"
)

// Step phases
const (
	PhaseAfter  = "after"  // narrative reply produced; a new menu is generated
	PhaseBefore = "before" // human reply resolved against the current menu
)

// TestSuite defines a conversation as a sequence of turns
type TestSuite struct {
	Name       string                     `yaml:"name"`
	Characters map[string]actor.Character `yaml:"characters,omitempty"` // override the server's roster
	Users      map[string]actor.User      `yaml:"users,omitempty"`
	Steps      []TestStep                 `yaml:"steps"`
}

// TestStep defines a single turn and its expected outcome
type TestStep struct {
	Name        string             `yaml:"name,omitempty"`
	Phase       string             `yaml:"phase"`
	Message     string             `yaml:"message,omitempty"`
	CharacterID string             `yaml:"character_id,omitempty"`
	PromptForID string             `yaml:"prompt_for_id,omitempty"`
	History     []chat.ChatMessage `yaml:"history,omitempty"`
	Expect      Expectations       `yaml:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	Status                string   `yaml:"status,omitempty"` // ok | advisory | rejected
	MinChoices            *int     `yaml:"min_choices,omitempty"`
	MaxChoices            *int     `yaml:"max_choices,omitempty"`
	Choices               []string `yaml:"choices,omitempty"` // exact, in order
	ChoiceIndex           *int     `yaml:"choice_index,omitempty"`
	AdLib                 *bool    `yaml:"ad_lib,omitempty"`
	ModifiedMessage       string   `yaml:"modified_message,omitempty"`
	ModifiedPrefix        string   `yaml:"modified_prefix,omitempty"`
	DirectionsContain     []string `yaml:"directions_contain,omitempty"`
	SystemMessageContains []string `yaml:"system_message_contains,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Suite          TestSuite
	ConversationID uuid.UUID
	Results        []TestResult
	Duration       time.Duration
	Error          error
}
