package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/action-stage/internal/logger"
	"github.com/jwebster45206/action-stage/internal/middleware"
	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/actor"
	"github.com/jwebster45206/action-stage/pkg/chat"
	"github.com/jwebster45206/action-stage/pkg/menu"
	"github.com/jwebster45206/action-stage/pkg/stage"
)

// Phase selects which host callback a TurnHandler serves.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// TurnRequest is the body of POST /v1/turns/{before,after}.
//
// The prior menu comes from MessageState when given, otherwise from the
// store under ConversationID. Characters and Users replace the configured
// lookup tables for this request when present.
type TurnRequest struct {
	ConversationID string                     `json:"conversation_id,omitempty"`
	MessageState   json.RawMessage            `json:"message_state,omitempty"`
	Message        stage.Message              `json:"message"`
	History        []chat.ChatMessage         `json:"history,omitempty"`
	Characters     map[string]actor.Character `json:"characters,omitempty"`
	Users          map[string]actor.User      `json:"users,omitempty"`
}

// Stages builds the stage that serves a request.
type Stages struct {
	roster    *storage.Roster
	generator stage.Generator
	logger    *slog.Logger
	shared    *stage.Stage
}

// NewStages creates the default stage from roster. The Stage keeps no
// per-conversation state, so one instance serves every request that uses
// the configured lookups.
func NewStages(roster *storage.Roster, generator stage.Generator, logger *slog.Logger) *Stages {
	if roster == nil {
		roster = &storage.Roster{}
	}
	shared, _ := stage.New(stage.InitialData{
		Characters: roster.Characters,
		Users:      roster.Users,
	}, generator, logger)

	return &Stages{
		roster:    roster,
		generator: generator,
		logger:    logger,
		shared:    shared,
	}
}

func (s *Stages) For(characters map[string]actor.Character, users map[string]actor.User) *stage.Stage {
	if len(characters) == 0 && len(users) == 0 {
		return s.shared
	}
	if len(characters) == 0 {
		characters = s.roster.Characters
	}
	if len(users) == 0 {
		users = s.roster.Users
	}
	stg, _ := stage.New(stage.InitialData{Characters: characters, Users: users}, s.generator, s.logger)
	return stg
}

// TurnHandler serves one of the two per-turn callbacks.
type TurnHandler struct {
	phase  Phase
	stages *Stages
	store  storage.StateStore
	logger *slog.Logger
}

// NewTurnHandler creates a turn handler. store may be nil, in which case
// conversation IDs are ignored and callers must carry message_state.
func NewTurnHandler(phase Phase, stages *Stages, store storage.StateStore, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		phase:  phase,
		stages: stages,
		store:  store,
		logger: logger,
	}
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.logger, http.MethodPost)
		return
	}

	log := logger.WithRequestID(h.logger, middleware.RequestID(r.Context()))
	started := time.Now()

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with a 'message' field.")
		return
	}

	convID, ok := parseConversationID(w, log, req.ConversationID)
	if !ok {
		return
	}
	if convID != uuid.Nil {
		log = logger.WithConversation(log, convID.String())
	}

	stg := h.stages.For(req.Characters, req.Users)
	prior, ok := h.loadPrior(r.Context(), w, log, stg, convID, req.MessageState)
	if !ok {
		return
	}

	var resp *stage.Response
	switch h.phase {
	case PhaseBefore:
		resp = stg.BeforePrompt(r.Context(), prior, req.Message)
		if resp.Resolution != nil {
			kind := "choice"
			if resp.Resolution.AdLib() {
				kind = "ad_lib"
			}
			resolutionsTotal.WithLabelValues(kind).Inc()
		}
	default:
		resp = stg.AfterResponse(r.Context(), prior, req.Message, req.History)
		if resp.Status != stage.StatusRejected {
			menuSize.Observe(float64(resp.Menu.Len()))
		}
	}

	turnsTotal.WithLabelValues(string(h.phase), string(resp.Status)).Inc()
	turnDuration.WithLabelValues(string(h.phase)).Observe(time.Since(started).Seconds())

	if resp.Status == stage.StatusRejected {
		writeJSON(w, log, http.StatusUnprocessableEntity, resp)
		return
	}

	if convID != uuid.Nil && h.store != nil {
		if err := h.store.SaveMessageState(r.Context(), convID, resp.MessageState); err != nil {
			// The caller still receives the state in the response.
			log.Error("Failed to persist message state", "error", err)
		}
	}

	log.Debug("Turn processed",
		"phase", h.phase,
		"status", resp.Status,
		"menu_size", resp.Menu.Len())
	writeJSON(w, log, http.StatusOK, resp)
}

// loadPrior restores the prior menu from the inline blob or the store.
func (h *TurnHandler) loadPrior(ctx context.Context, w http.ResponseWriter, log *slog.Logger, stg *stage.Stage, convID uuid.UUID, blob json.RawMessage) (menu.Menu, bool) {
	if len(blob) == 0 && convID != uuid.Nil && h.store != nil {
		stored, err := h.store.LoadMessageState(ctx, convID)
		if err != nil {
			log.Error("Failed to load message state", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to load message state.")
			return menu.Menu{}, false
		}
		blob = stored
	}

	prior, err := stg.SetState(blob)
	if err != nil {
		log.Warn("Invalid message state", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid message_state.")
		return menu.Menu{}, false
	}
	return prior, true
}

func parseConversationID(w http.ResponseWriter, log *slog.Logger, raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Invalid conversation ID", "conversation_id", raw, "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid conversation_id. Expected a UUID.")
		return uuid.Nil, false
	}
	return id, true
}
