// Package stage implements the per-turn host callbacks: it resolves the
// human's reply against the current menu before the narrative engine runs,
// and derives the next menu after it answers.
//
// The menu is never held by the Stage. Callers pass the prior menu in and
// receive the new one, together with its serialized form, in every Response.
package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jwebster45206/action-stage/pkg/actor"
	"github.com/jwebster45206/action-stage/pkg/chat"
	"github.com/jwebster45206/action-stage/pkg/choice"
	"github.com/jwebster45206/action-stage/pkg/menu"
	"github.com/jwebster45206/action-stage/pkg/prompts"
)

const (
	menuMinTokens = 20
	menuMaxTokens = 150
	menuStop      = "###"
)

var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrUnknownUser      = errors.New("unknown user")
)

// Generator is the text-completion service used to elicit menus.
type Generator interface {
	TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error)
}

// InitialData is what the host hands over when a stage is created.
type InitialData struct {
	Characters   map[string]actor.Character `json:"characters"`
	Users        map[string]actor.User      `json:"users"`
	MessageState json.RawMessage            `json:"message_state,omitempty"`
}

// Message is the turn context supplied with each callback.
type Message struct {
	Content     string `json:"content"`
	CharacterID string `json:"character_id,omitempty"`  // responding character
	PromptForID string `json:"prompt_for_id,omitempty"` // addressed user; empty selects the default user
}

type Status string

const (
	StatusOK       Status = "ok"
	StatusAdvisory Status = "advisory"
	StatusRejected Status = "rejected"
)

// Response is the result of every callback. Errors are reported through
// Status and Error; MessageState always carries the menu to persist.
type Response struct {
	Status          Status             `json:"status"`
	StageDirections string             `json:"stage_directions,omitempty"`
	ModifiedMessage string             `json:"modified_message,omitempty"`
	SystemMessage   string             `json:"system_message,omitempty"`
	Error           string             `json:"error,omitempty"`
	MessageState    json.RawMessage    `json:"message_state"`
	Menu            menu.Menu          `json:"menu"`
	Resolution      *choice.Resolution `json:"resolution,omitempty"`
}

// Stage holds the immutable lookup tables and collaborators for one
// conversation.
type Stage struct {
	characters    map[string]actor.Character
	users         map[string]actor.User
	defaultUserID string
	generator     Generator
	logger        *slog.Logger
}

// New creates a stage and restores the initial menu from data.MessageState.
// An unreadable blob is logged and yields an empty menu.
func New(data InitialData, gen Generator, logger *slog.Logger) (*Stage, menu.Menu) {
	s := &Stage{
		characters: make(map[string]actor.Character, len(data.Characters)),
		users:      make(map[string]actor.User, len(data.Users)),
		generator:  gen,
		logger:     logger,
	}
	for id, c := range data.Characters {
		if c.ID == "" {
			c.ID = id
		}
		s.characters[id] = c
	}
	for id, u := range data.Users {
		if u.ID == "" {
			u.ID = id
		}
		s.users[id] = u
	}
	if ids := slices.Sorted(maps.Keys(s.users)); len(ids) > 0 {
		s.defaultUserID = ids[0]
	}

	m, err := s.SetState(data.MessageState)
	if err != nil {
		logger.Warn("Discarding unreadable message state", "error", err)
	}
	return s, m
}

// SetState restores the menu from a serialized blob. It is safe to call
// repeatedly with the same blob, e.g. on a branch switch.
func (s *Stage) SetState(blob json.RawMessage) (menu.Menu, error) {
	m, err := menu.Decode(blob)
	if err != nil {
		return menu.Menu{}, fmt.Errorf("failed to restore menu: %w", err)
	}
	return m, nil
}

// BeforePrompt rewrites the human's message against the prior menu. The menu
// itself is unchanged by this turn.
func (s *Stage) BeforePrompt(ctx context.Context, prior menu.Menu, msg Message) *Response {
	// Without any users the {{user}} tag is left for the host to expand.
	user, err := s.lookupUser(msg.PromptForID)
	if err != nil && msg.PromptForID != "" {
		return s.reject(prior, err)
	}

	res := choice.Resolve(msg.Content, prior)
	directive := choice.BuildDirective(res)
	directions := directive.StageDirections
	if user != nil {
		directions = prompts.ReplaceTags(directions, map[string]string{"user": user.Name})
	}

	s.logger.Debug("Resolved user message",
		"ad_lib", res.AdLib(),
		"menu_size", prior.Len())

	return s.respond(&Response{
		Status:          StatusOK,
		StageDirections: directions,
		ModifiedMessage: directive.ModifiedMessage,
		Resolution:      &res,
	}, prior)
}

// AfterResponse elicits and parses the next menu once the narrative engine
// has answered. The reply itself passes through unchanged. history is the
// conversation so far, used as generator context.
func (s *Stage) AfterResponse(ctx context.Context, prior menu.Menu, msg Message, history []chat.ChatMessage) *Response {
	character, ok := s.characters[msg.CharacterID]
	if !ok {
		return s.reject(prior, fmt.Errorf("%w: %q", ErrUnknownCharacter, msg.CharacterID))
	}
	user, err := s.lookupUser(msg.PromptForID)
	if err != nil {
		return s.reject(prior, err)
	}

	prompt, err := prompts.BuildElicitation(&character, user, prompts.HistoryTag, prompts.InstructionsTag)
	if err != nil {
		return s.reject(prior, err)
	}

	next := s.GenerateMenu(ctx, prompt, history)
	text, ok := menu.Present(next)
	if !ok {
		return s.respond(&Response{
			Status: StatusAdvisory,
			Error:  menu.NoActionsAdvisory,
		}, next)
	}
	return s.respond(&Response{
		Status:        StatusOK,
		SystemMessage: text,
	}, next)
}

// GenerateMenu asks the generator for options and parses its answer. Any
// failure yields an empty menu.
func (s *Stage) GenerateMenu(ctx context.Context, prompt string, history []chat.ChatMessage) menu.Menu {
	result, err := s.generator.TextGen(ctx, chat.TextGenRequest{
		Prompt:         prompt,
		MinTokens:      menuMinTokens,
		MaxTokens:      menuMaxTokens,
		IncludeHistory: true,
		History:        history,
		Stop:           []string{menuStop},
	})
	if err != nil {
		s.logger.Warn("Menu generation failed", "error", err)
		return menu.Menu{}
	}
	if result == nil {
		s.logger.Warn("Menu generation returned no result")
		return menu.Menu{}
	}

	m := menu.Parse(result.Result)
	if m.Empty() {
		s.logger.Warn("No actions found in generator output", "output_length", len(result.Result))
	}
	return m
}

// Character returns the character registered under id.
func (s *Stage) Character(id string) (actor.Character, bool) {
	c, ok := s.characters[id]
	return c, ok
}

// User returns the user registered under id, or the default user when id
// is empty.
func (s *Stage) User(id string) (actor.User, error) {
	u, err := s.lookupUser(id)
	if err != nil {
		return actor.User{}, err
	}
	return *u, nil
}

// lookupUser returns the addressed user, or the default user when id is
// empty.
func (s *Stage) lookupUser(id string) (*actor.User, error) {
	if id == "" {
		id = s.defaultUserID
	}
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUser, id)
	}
	return &u, nil
}

func (s *Stage) reject(prior menu.Menu, err error) *Response {
	s.logger.Warn("Rejecting turn", "error", err)
	return s.respond(&Response{
		Status: StatusRejected,
		Error:  err.Error(),
	}, prior)
}

// respond attaches the menu and its serialized form to resp.
func (s *Stage) respond(resp *Response, m menu.Menu) *Response {
	blob, err := menu.Encode(m)
	if err != nil {
		s.logger.Error("Failed to serialize menu", "error", err)
		blob = json.RawMessage(`{"choices":[]}`)
	}
	resp.Menu = m
	resp.MessageState = blob
	return resp
}
