package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/action-stage/internal/services"
	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/actor"
	"github.com/jwebster45206/action-stage/pkg/stage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoster() *storage.Roster {
	return &storage.Roster{
		Characters: map[string]actor.Character{
			"bram": {ID: "bram", Name: "Bram", Description: "A weathered ferryman."},
		},
		Users: map[string]actor.User{
			"ana": {ID: "ana", Name: "Ana", ChatProfile: "A curious scholar."},
		},
	}
}

type testServer struct {
	router *http.ServeMux
	gen    *services.MockGenerator
	store  *storage.RedisStore
	mr     *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := storage.NewRedisStore("redis://"+mr.Addr(), time.Hour, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	gen := services.NewMockGenerator()
	stages := NewStages(testRoster(), gen, testLogger())

	return &testServer{
		router: NewRouter(stages, store, gen, testLogger()),
		gen:    gen,
		store:  store,
		mr:     mr,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) stage.Response {
	t.Helper()
	var resp stage.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestTurns_InlineState(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/turns/after", TurnRequest{
		Message: stage.Message{Content: "The ferry docks.", CharacterID: "bram"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	after := decodeTurn(t, rec)
	assert.Equal(t, stage.StatusOK, after.Status)
	assert.Equal(t, "---\nChoose an action:\n1. Open the door\n2. Knock\n3. Leave", after.SystemMessage)
	assert.JSONEq(t, `{"choices":["Open the door","Knock","Leave"]}`, string(after.MessageState))

	rec = srv.do(t, http.MethodPost, "/v1/turns/before", TurnRequest{
		MessageState: after.MessageState,
		Message:      stage.Message{Content: "2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	before := decodeTurn(t, rec)
	assert.Equal(t, "(2. Knock)", before.ModifiedMessage)
	assert.Contains(t, before.StageDirections, "Ana has selected the following action: Knock.")
	require.NotNil(t, before.Resolution)
	require.NotNil(t, before.Resolution.Index)
	assert.Equal(t, 1, *before.Resolution.Index)

	assert.Empty(t, srv.mr.Keys(), "nothing is stored without a conversation")
}

func TestTurns_StoredState(t *testing.T) {
	srv := newTestServer(t)
	convID := uuid.New()
	srv.gen.SetResult("- Row across\n- Swim")

	rec := srv.do(t, http.MethodPost, "/v1/turns/after", TurnRequest{
		ConversationID: convID.String(),
		Message:        stage.Message{CharacterID: "bram"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := srv.store.LoadMessageState(context.Background(), convID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"choices":["Row across","Swim"]}`, string(stored))

	rec = srv.do(t, http.MethodPost, "/v1/turns/before", TurnRequest{
		ConversationID: convID.String(),
		Message:        stage.Message{Content: "I swim for it"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "(2. Swim)", decodeTurn(t, rec).ModifiedMessage)
}

func TestTurns_AdvisoryStillPersists(t *testing.T) {
	srv := newTestServer(t)
	convID := uuid.New()
	srv.gen.SetNoResult()

	rec := srv.do(t, http.MethodPost, "/v1/turns/after", TurnRequest{
		ConversationID: convID.String(),
		MessageState:   json.RawMessage(`{"choices":["Old"]}`),
		Message:        stage.Message{CharacterID: "bram"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Equal(t, stage.StatusAdvisory, resp.Status)
	assert.Equal(t, "Failed to generate actions; consider retrying or writing your own.", resp.Error)

	stored, err := srv.store.LoadMessageState(context.Background(), convID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"choices":[]}`, string(stored))
}

func TestTurns_RejectedLeavesStoreUntouched(t *testing.T) {
	srv := newTestServer(t)
	convID := uuid.New()
	require.NoError(t, srv.store.SaveMessageState(context.Background(), convID, json.RawMessage(`{"choices":["Keep"]}`)))

	rec := srv.do(t, http.MethodPost, "/v1/turns/after", TurnRequest{
		ConversationID: convID.String(),
		Message:        stage.Message{CharacterID: "ghost"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Equal(t, stage.StatusRejected, resp.Status)
	assert.Contains(t, resp.Error, "ghost")
	assert.JSONEq(t, `{"choices":["Keep"]}`, string(resp.MessageState))
	assert.Empty(t, srv.gen.GetCalls())
}

func TestTurns_RequestLookupsOverride(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/turns/after", TurnRequest{
		Message: stage.Message{CharacterID: "mira", PromptForID: "kai"},
		Characters: map[string]actor.Character{
			"mira": {Name: "Mira", Personality: "Sly."},
		},
		Users: map[string]actor.User{
			"kai": {Name: "Kai", ChatProfile: "A sailor."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	calls := srv.gen.GetCalls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].Prompt, "Details about Mira:\nSly.\n\nDetails about Kai:\nA sailor."))
}

func TestTurns_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "wrong method", method: http.MethodGet, path: "/v1/turns/before", wantStatus: http.StatusMethodNotAllowed},
		{name: "malformed body", method: http.MethodPost, path: "/v1/turns/before", body: `{"message":`, wantStatus: http.StatusBadRequest},
		{name: "bad conversation id", method: http.MethodPost, path: "/v1/turns/after", body: `{"conversation_id":"nope","message":{}}`, wantStatus: http.StatusBadRequest},
		{name: "bad message state", method: http.MethodPost, path: "/v1/turns/before", body: `{"message_state":"oops","message":{"content":"1"}}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestTurns_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t)
	srv.mr.Close()

	rec := srv.do(t, http.MethodPost, "/v1/turns/before", TurnRequest{
		ConversationID: uuid.NewString(),
		Message:        stage.Message{Content: "1"},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/v1/turns/before", TurnRequest{Message: stage.Message{Content: "hello"}})

	rec := srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "action_stage_turns_total")
	assert.Contains(t, rec.Body.String(), `action_stage_resolutions_total{kind="ad_lib"}`)
}
