package persona_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
	"github.com/alanyang/prompt-vault/internal/mocks"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
	transportpersona "github.com/alanyang/prompt-vault/internal/transport/persona"
)

func init() { gin.SetMode(gin.TestMode) }

const owner = record.UserID("user-1")

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockPersonaRepository, *mocks.MockEventBus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPersonaRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)

	r := gin.New()
	authed := r.Group("/personas", func(c *gin.Context) {
		httpx.SetUser(c, domainuser.User{ID: owner})
	})
	transportpersona.Register(authed, personasvc.NewService(repo, bus))
	return r, repo, bus
}

func do(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body) //nolint:errcheck
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── POST /personas ────────────────────────────────────────────────────────────

func TestCreatePersona(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		setup      func(repo *mocks.MockPersonaRepository, bus *mocks.MockEventBus)
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{
			name: "created",
			body: map[string]any{"name": "Official", "prompt": "Be formal"},
			setup: func(repo *mocks.MockPersonaRepository, bus *mocks.MockEventBus) {
				repo.EXPECT().Create(gomock.Any(), owner, domainpersona.Draft{Name: "Official", Prompt: "Be formal"}).
					Return(domainpersona.Persona{ID: record.NewID(), UserID: owner, Name: "Official",
						Lifecycle: record.Lifecycle{Version: 1}}, nil)
				bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing prompt",
			body:       map[string]any{"name": "Official"},
			setup:      func(*mocks.MockPersonaRepository, *mocks.MockEventBus) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
			wantDetail: "prompt is required",
		},
		{
			name:       "empty body",
			body:       map[string]any{},
			setup:      func(*mocks.MockPersonaRepository, *mocks.MockEventBus) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
			wantDetail: "name, prompt is required",
		},
		{
			name: "duplicate name",
			body: map[string]any{"name": "Official", "prompt": "x"},
			setup: func(repo *mocks.MockPersonaRepository, _ *mocks.MockEventBus) {
				repo.EXPECT().Create(gomock.Any(), owner, gomock.Any()).Return(domainpersona.Persona{}, record.ErrConflict)
			},
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo, bus := newRouter(t)
			tt.setup(repo, bus)

			w := do(r, http.MethodPost, "/personas", tt.body, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body["error"])
				if tt.wantDetail != "" {
					assert.Contains(t, body["detail"], tt.wantDetail)
				}
			} else {
				assert.Equal(t, `"1"`, w.Header().Get("ETag"))
			}
		})
	}
}

// ── GET /personas ─────────────────────────────────────────────────────────────

func TestListPersonas_PageParams(t *testing.T) {
	r, repo, _ := newRouter(t)
	repo.EXPECT().List(gomock.Any(), owner, record.PageRequest{Size: 2, Token: "tok"}).
		Return(record.Page[domainpersona.Persona]{Items: []domainpersona.Persona{{Name: "a"}, {Name: "b"}}, NextToken: "next"}, nil)

	w := do(r, http.MethodGet, "/personas?page_size=2&page_token=tok", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items     []map[string]any `json:"items"`
		NextToken string           `json:"next_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 2)
	assert.Equal(t, "next", body.NextToken)
}

func TestListPersonas_EmptyIsArray(t *testing.T) {
	r, repo, _ := newRouter(t)
	repo.EXPECT().List(gomock.Any(), owner, gomock.Any()).
		Return(record.Page[domainpersona.Persona]{Items: []domainpersona.Persona{}}, nil)

	w := do(r, http.MethodGet, "/personas", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}

// ── GET /personas/:id ─────────────────────────────────────────────────────────

func TestGetPersona_UnknownIDIs404(t *testing.T) {
	r, _, _ := newRouter(t)

	w := do(r, http.MethodGet, "/personas/not-an-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── PUT /personas/:id ─────────────────────────────────────────────────────────

func TestUpdatePersona_VersionSources(t *testing.T) {
	id := record.NewID()
	tests := []struct {
		name     string
		body     map[string]any
		header   map[string]string
		expected int64
	}{
		{name: "body", body: map[string]any{"prompt": "p", "version": 3}, expected: 3},
		{name: "if-match", body: map[string]any{"prompt": "p"}, header: map[string]string{"If-Match": `"4"`}, expected: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo, bus := newRouter(t)
			repo.EXPECT().Update(gomock.Any(), owner, id, tt.expected, gomock.Any()).
				Return(domainpersona.Persona{ID: id, Lifecycle: record.Lifecycle{Version: tt.expected + 1}}, nil)
			bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

			w := do(r, http.MethodPut, "/personas/"+string(id), tt.body, tt.header)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestUpdatePersona_StaleVersionIs409(t *testing.T) {
	r, repo, _ := newRouter(t)
	id := record.NewID()
	repo.EXPECT().Update(gomock.Any(), owner, id, int64(1), gomock.Any()).
		Return(domainpersona.Persona{}, record.ErrVersionConflict)

	w := do(r, http.MethodPut, "/personas/"+string(id), map[string]any{"prompt": "p", "version": 1}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "version_conflict")
}

func TestUpdatePersona_TakenNameIs409(t *testing.T) {
	r, repo, _ := newRouter(t)
	id := record.NewID()
	name := "Official"
	repo.EXPECT().Update(gomock.Any(), owner, id, int64(1), domainpersona.Patch{Name: &name}).
		Return(domainpersona.Persona{}, fmt.Errorf("updating persona: %w: uq_personas_user_name_active", record.ErrConflict))

	w := do(r, http.MethodPut, "/personas/"+string(id), map[string]any{"name": name, "version": 1}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "conflict", body["error"])
}

func TestUpdatePersona_MissingVersionIs400(t *testing.T) {
	r, _, _ := newRouter(t)

	w := do(r, http.MethodPut, "/personas/"+string(record.NewID()), map[string]any{"prompt": "p"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── DELETE /personas/:id ──────────────────────────────────────────────────────

func TestDeletePersona(t *testing.T) {
	r, repo, bus := newRouter(t)
	id := record.NewID()
	repo.EXPECT().SoftDelete(gomock.Any(), owner, id, int64(2)).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := do(r, http.MethodDelete, "/personas/"+string(id)+"?version=2", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
