//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtauth "github.com/alanyang/prompt-vault/internal/adapter/jwt"
	"github.com/alanyang/prompt-vault/internal/adapter/memory"
	pgidem "github.com/alanyang/prompt-vault/internal/adapter/postgres/idempotency"
	pgmessage "github.com/alanyang/prompt-vault/internal/adapter/postgres/message"
	pgpersona "github.com/alanyang/prompt-vault/internal/adapter/postgres/persona"
	pguser "github.com/alanyang/prompt-vault/internal/adapter/postgres/user"
	"github.com/alanyang/prompt-vault/internal/domain/event"
	authsvc "github.com/alanyang/prompt-vault/internal/service/auth"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/testutil"
	"github.com/alanyang/prompt-vault/internal/transport"
)

// ── test harness ──────────────────────────────────────────────────────────────

const secret = "integration-secret"

type harness struct {
	router *gin.Engine
	bus    *testutil.CaptureBus
	issuer *jwtauth.Authenticator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pool := testutil.SetupTestDB(t)

	issuer, err := jwtauth.New(secret, "", "")
	require.NoError(t, err)

	bus := &testutil.CaptureBus{}
	personaSvc := personasvc.NewService(pgpersona.New(pool, pgmessage.DetachPersona), bus)
	messageSvc := messagesvc.NewService(pgmessage.New(pool), bus)
	auth := authsvc.NewService(issuer, pguser.New(pool), memory.NewUserCache(), time.Minute)

	router := transport.NewRouter(context.Background(), transport.Deps{
		PersonaSvc:  personaSvc,
		MessageSvc:  messageSvc,
		Guard:       auth,
		Idempotency: pgidem.New(pool, time.Hour),
		EventBus:    bus,
		Health:      pool.Ping,
	})
	return &harness{router: router, bus: bus, issuer: issuer}
}

// token mints a credential for a fresh identity-provider subject.
func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, err := h.issuer.Issue("e2e|"+uuid.NewString(), "e2e@example.com", time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, token, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

// ── scenarios ─────────────────────────────────────────────────────────────────

func TestVault_PersonaDeleteDetachesMessages(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t)

	w := h.do(t, tok, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "e2e@example.com", decode(t, w)["email"])

	w = h.do(t, tok, http.MethodPost, "/api/personas", map[string]any{"name": "Reviewer", "prompt": "Review it."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	persona := decode(t, w)
	personaID := persona["id"].(string)

	w = h.do(t, tok, http.MethodPost, "/api/messages", map[string]any{
		"type": "prompt", "title": "t", "content": "c", "persona_id": personaID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	messageID := decode(t, w)["id"].(string)

	w = h.do(t, tok, http.MethodDelete, "/api/personas/"+personaID, nil, "If-Match", `"1"`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = h.do(t, tok, http.MethodGet, "/api/messages/"+messageID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode(t, w)
	assert.Nil(t, msg["persona_id"])
	assert.EqualValues(t, 2, msg["version"])
	assert.Equal(t, `"2"`, w.Header().Get("ETag"))

	w = h.do(t, tok, http.MethodGet, "/api/personas/"+personaID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []event.Type{
		event.TypePersonaCreated,
		event.TypeMessageCreated,
		event.TypePersonaDeleted,
	}, h.bus.Types())
}

func TestVault_OwnershipIsolation(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.token(t), h.token(t)

	w := h.do(t, alice, http.MethodPost, "/api/messages", map[string]any{"type": "response", "title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/messages/" + id, nil},
		{http.MethodPut, "/api/messages/" + id, map[string]any{"title": "x", "version": 1}},
		{http.MethodDelete, "/api/messages/" + id + "?version=1", nil},
		{http.MethodGet, "/api/messages/" + id + "/history", nil},
	} {
		w := h.do(t, bob, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}

	w = h.do(t, bob, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode(t, w)
	assert.Empty(t, listed["items"])
	assert.EqualValues(t, 0, listed["total"])

	w = h.do(t, "", http.MethodGet, "/api/messages", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVault_StaleWriteAndRetry(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t)

	w := h.do(t, tok, http.MethodPost, "/api/messages", map[string]any{"type": "prompt", "title": "v1", "content": "c"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = h.do(t, tok, http.MethodPut, "/api/messages/"+id, map[string]any{"title": "v2", "version": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, tok, http.MethodPut, "/api/messages/"+id, map[string]any{"title": "stale", "version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "version_conflict", decode(t, w)["error"])

	w = h.do(t, tok, http.MethodGet, "/api/messages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := int64(decode(t, w)["version"].(float64))
	w = h.do(t, tok, http.MethodPut, "/api/messages/"+id, map[string]any{"starred": true, "version": current})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, "v2", got["title"])
	assert.Equal(t, true, got["starred"])
	assert.EqualValues(t, 3, got["version"])

	w = h.do(t, tok, http.MethodGet, "/api/messages/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode(t, w)
	assert.Len(t, hist["items"], 2)
	assert.EqualValues(t, 2, hist["total"])
}

func TestVault_IdempotentCreate(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t)
	body := map[string]any{"name": "Once", "prompt": "p"}

	first := h.do(t, tok, http.MethodPost, "/api/personas", body, "Idempotency-Key", "create-once")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := h.do(t, tok, http.MethodPost, "/api/personas", body, "Idempotency-Key", "create-once")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, `"1"`, second.Header().Get("ETag"))
	assert.Equal(t, decode(t, first)["id"], decode(t, second)["id"])

	third := h.do(t, tok, http.MethodPost, "/api/personas", body)
	assert.Equal(t, http.StatusConflict, third.Code, "name is unique among active personas")
}
