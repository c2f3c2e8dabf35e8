package message_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyang/prompt-vault/internal/domain/message"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

func ptr[T any](v T) *T { return &v }

func TestDraft_Validate(t *testing.T) {
	personaID := record.NewID()
	tests := []struct {
		name    string
		draft   message.Draft
		wantErr bool
	}{
		{name: "prompt", draft: message.Draft{Type: message.TypePrompt, Title: "t", Content: "c"}},
		{name: "response with persona", draft: message.Draft{Type: message.TypeResponse, Title: "t", Content: "c", PersonaID: &personaID}},
		{name: "unknown type", draft: message.Draft{Type: "note", Title: "t", Content: "c"}, wantErr: true},
		{name: "empty title", draft: message.Draft{Type: message.TypePrompt, Title: " ", Content: "c"}, wantErr: true},
		{name: "long title", draft: message.Draft{Type: message.TypePrompt, Title: strings.Repeat("t", message.MaxTitleLen+1), Content: "c"}, wantErr: true},
		{name: "empty content", draft: message.Draft{Type: message.TypePrompt, Title: "t"}, wantErr: true},
		{name: "long summary", draft: message.Draft{Type: message.TypePrompt, Title: "t", Content: "c", Summary: ptr(strings.Repeat("s", message.MaxSummaryLen+1))}, wantErr: true},
		{name: "malformed persona id", draft: message.Draft{Type: message.TypePrompt, Title: "t", Content: "c", PersonaID: ptr(record.ID("p-1"))}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, record.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	personaID := record.NewID()
	cur := message.Message{
		PersonaID: &personaID,
		Type:      message.TypePrompt,
		Title:     "draft",
		Content:   "hello",
		Summary:   ptr("s"),
	}

	got := message.Patch{Starred: ptr(true), Title: ptr(" final ")}.Apply(cur)
	assert.True(t, got.Starred)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, &personaID, got.PersonaID)
	assert.Equal(t, message.TypePrompt, got.Type)

	got = message.Patch{PersonaID: ptr(record.ID("")), Summary: ptr("")}.Apply(cur)
	assert.Nil(t, got.PersonaID)
	assert.Nil(t, got.Summary)
}

func TestPatch_LinksPersona(t *testing.T) {
	assert.False(t, message.Patch{}.LinksPersona())
	assert.False(t, message.Patch{PersonaID: ptr(record.ID(""))}.LinksPersona())
	assert.True(t, message.Patch{PersonaID: ptr(record.NewID())}.LinksPersona())
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, message.Filter{}.Validate())
	assert.NoError(t, message.Filter{Type: ptr(message.TypeResponse), Starred: ptr(true)}.Validate())
	assert.ErrorIs(t, message.Filter{Type: ptr(message.Type("draft"))}.Validate(), record.ErrValidation)
	assert.NoError(t, message.Filter{Unlinked: true, Starred: ptr(false)}.Validate())
	assert.ErrorIs(t, message.Filter{Unlinked: true, PersonaID: ptr(record.NewID())}.Validate(), record.ErrValidation)
}
