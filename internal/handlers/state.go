package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/action-stage/internal/logger"
	"github.com/jwebster45206/action-stage/internal/middleware"
	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/menu"
)

// StateRequest is the body of POST /v1/state.
type StateRequest struct {
	ConversationID string          `json:"conversation_id,omitempty"`
	MessageState   json.RawMessage `json:"message_state"`
}

// StateResponse reports the restored menu.
type StateResponse struct {
	ConversationID string          `json:"conversation_id,omitempty"`
	Menu           menu.Menu       `json:"choices"`
	MessageState   json.RawMessage `json:"message_state"`
}

// StateHandler restores, reads and clears a conversation's menu state.
//
//	POST   /v1/state                     restore from a blob (e.g. on a branch switch)
//	GET    /v1/state?conversation_id=... read the stored menu
//	DELETE /v1/state?conversation_id=... forget the stored menu
type StateHandler struct {
	stages *Stages
	store  storage.StateStore
	logger *slog.Logger
}

func NewStateHandler(stages *Stages, store storage.StateStore, logger *slog.Logger) *StateHandler {
	return &StateHandler{
		stages: stages,
		store:  store,
		logger: logger,
	}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(h.logger, middleware.RequestID(r.Context()))

	switch r.Method {
	case http.MethodPost:
		h.restore(w, r, log)
	case http.MethodGet:
		h.get(w, r, log)
	case http.MethodDelete:
		h.delete(w, r, log)
	default:
		methodNotAllowed(w, r, log, http.MethodPost, http.MethodGet, http.MethodDelete)
	}
}

func (h *StateHandler) restore(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with a 'message_state' field.")
		return
	}
	convID, ok := parseConversationID(w, log, req.ConversationID)
	if !ok {
		return
	}

	m, err := h.stages.For(nil, nil).SetState(req.MessageState)
	if err != nil {
		log.Warn("Invalid message state", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid message_state.")
		return
	}
	blob, err := menu.Encode(m)
	if err != nil {
		log.Error("Failed to encode message state", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to encode message state.")
		return
	}

	if convID != uuid.Nil && h.store != nil {
		if err := h.store.SaveMessageState(r.Context(), convID, blob); err != nil {
			log.Error("Failed to persist message state", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to save message state.")
			return
		}
	}

	writeJSON(w, log, http.StatusOK, StateResponse{
		ConversationID: req.ConversationID,
		Menu:           m,
		MessageState:   blob,
	})
}

func (h *StateHandler) get(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	convID, ok := h.storedConversation(w, r, log)
	if !ok {
		return
	}

	blob, err := h.store.LoadMessageState(r.Context(), convID)
	if err != nil {
		log.Error("Failed to load message state", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to load message state.")
		return
	}
	if blob == nil {
		writeError(w, log, http.StatusNotFound, "No state stored for this conversation.")
		return
	}

	m, err := menu.Decode(blob)
	if err != nil {
		log.Error("Stored message state is unreadable", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Stored message state is unreadable.")
		return
	}

	writeJSON(w, log, http.StatusOK, StateResponse{
		ConversationID: convID.String(),
		Menu:           m,
		MessageState:   blob,
	})
}

func (h *StateHandler) delete(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	convID, ok := h.storedConversation(w, r, log)
	if !ok {
		return
	}
	if err := h.store.DeleteMessageState(r.Context(), convID); err != nil {
		log.Error("Failed to delete message state", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to delete message state.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storedConversation validates the conversation_id query parameter for
// store-backed operations.
func (h *StateHandler) storedConversation(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	if h.store == nil {
		writeError(w, log, http.StatusNotImplemented, "State storage is not configured.")
		return uuid.Nil, false
	}
	raw := r.URL.Query().Get("conversation_id")
	if raw == "" {
		writeError(w, log, http.StatusBadRequest, "conversation_id is required.")
		return uuid.Nil, false
	}
	return parseConversationID(w, log, raw)
}
