package message_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
	"github.com/alanyang/prompt-vault/internal/mocks"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
	transportmessage "github.com/alanyang/prompt-vault/internal/transport/message"
)

func init() { gin.SetMode(gin.TestMode) }

const owner = record.UserID("user-1")

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockMessageRepository, *mocks.MockEventBus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMessageRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)

	r := gin.New()
	authed := r.Group("/messages", func(c *gin.Context) {
		httpx.SetUser(c, domainuser.User{ID: owner})
	})
	transportmessage.Register(authed, messagesvc.NewService(repo, bus))
	return r, repo, bus
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body) //nolint:errcheck
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── POST /messages ────────────────────────────────────────────────────────────

func TestCreateMessage(t *testing.T) {
	r, repo, bus := newRouter(t)
	want := domainmessage.Draft{Type: domainmessage.TypeResponse, Title: "t", Content: "c", Starred: true}
	repo.EXPECT().Create(gomock.Any(), owner, want).
		Return(domainmessage.Message{ID: record.NewID(), Type: want.Type, Title: "t", Content: "c", Starred: true,
			Lifecycle: record.Lifecycle{Version: 1}}, nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := do(r, http.MethodPost, "/messages", map[string]any{
		"type": "response", "title": "t", "content": "c", "starred": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(1), got["version"])
	assert.Nil(t, got["deleted_at"])
	assert.Nil(t, got["persona_id"])
}

func TestCreateMessage_UnknownPersonaIs400(t *testing.T) {
	r, repo, _ := newRouter(t)
	repo.EXPECT().Create(gomock.Any(), owner, gomock.Any()).
		Return(domainmessage.Message{}, record.ErrValidation)

	w := do(r, http.MethodPost, "/messages", map[string]any{
		"type": "prompt", "title": "t", "content": "c", "persona_id": string(record.NewID()),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessage_MissingRequiredFieldsIs400(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		detail string
	}{
		{name: "no type", body: map[string]any{"title": "t", "content": "c"}, detail: "type is required"},
		{name: "no title", body: map[string]any{"type": "prompt", "content": "c"}, detail: "title is required"},
		{name: "no content", body: map[string]any{"type": "prompt", "title": "t"}, detail: "content is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRouter(t)

			w := do(r, http.MethodPost, "/messages", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "validation_failed", body["error"])
			assert.Contains(t, body["detail"], tt.detail)
		})
	}
}

// ── GET /messages ─────────────────────────────────────────────────────────────

func TestListMessages_Filters(t *testing.T) {
	personaID := record.NewID()
	yes := true
	typ := domainmessage.TypePrompt

	tests := []struct {
		name   string
		query  string
		filter domainmessage.Filter
	}{
		{name: "none", query: "", filter: domainmessage.Filter{}},
		{name: "starred", query: "?starred=true", filter: domainmessage.Filter{Starred: &yes}},
		{name: "type and persona", query: "?type=prompt&persona_id=" + string(personaID),
			filter: domainmessage.Filter{Type: &typ, PersonaID: &personaID}},
		{name: "unlinked", query: "?persona_id=none&starred=true",
			filter: domainmessage.Filter{Starred: &yes, Unlinked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo, _ := newRouter(t)
			repo.EXPECT().List(gomock.Any(), owner, tt.filter, record.PageRequest{}).
				Return(record.Page[domainmessage.Message]{Items: []domainmessage.Message{}}, nil)

			w := do(r, http.MethodGet, "/messages"+tt.query, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestListMessages_BadInput(t *testing.T) {
	for _, q := range []string{"?starred=maybe", "?type=note", "?page_size=-1"} {
		t.Run(q, func(t *testing.T) {
			r, repo, _ := newRouter(t)
			if q == "?page_size=-1" {
				repo.EXPECT().List(gomock.Any(), owner, gomock.Any(), record.PageRequest{Size: -1}).
					Return(record.Page[domainmessage.Message]{}, record.ErrValidation)
			}
			w := do(r, http.MethodGet, "/messages"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// ── GET /messages/:id/history ────────────────────────────────────────────────

func TestMessageHistory(t *testing.T) {
	r, repo, _ := newRouter(t)
	id := record.NewID()
	repo.EXPECT().History(gomock.Any(), owner, id, record.PageRequest{}).
		Return(record.Page[domainmessage.Revision]{Items: []domainmessage.Revision{
			{Message: domainmessage.Message{ID: id, Title: "old", Lifecycle: record.Lifecycle{Version: 1}}},
		}}, nil)

	w := do(r, http.MethodGet, "/messages/"+string(id)+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"old"`)
	assert.Contains(t, w.Body.String(), `"archived_at"`)
}

// ── PUT / DELETE /messages/:id ────────────────────────────────────────────────

func TestUpdateMessage_RetryWithStaleVersion(t *testing.T) {
	r, repo, bus := newRouter(t)
	id := record.NewID()
	gomock.InOrder(
		repo.EXPECT().Update(gomock.Any(), owner, id, int64(1), gomock.Any()).
			Return(domainmessage.Message{ID: id, Lifecycle: record.Lifecycle{Version: 2}}, nil),
		repo.EXPECT().Update(gomock.Any(), owner, id, int64(1), gomock.Any()).
			Return(domainmessage.Message{}, record.ErrVersionConflict),
	)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	body := map[string]any{"title": "new", "version": 1}
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/messages/"+string(id), body).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPut, "/messages/"+string(id), body).Code)
}

func TestDeleteMessage_ThenGetIs404(t *testing.T) {
	r, repo, bus := newRouter(t)
	id := record.NewID()
	repo.EXPECT().SoftDelete(gomock.Any(), owner, id, int64(1)).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().Get(gomock.Any(), owner, id).Return(domainmessage.Message{}, record.ErrNotFound)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/messages/"+string(id)+"?version=1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/messages/"+string(id), nil).Code)
}
