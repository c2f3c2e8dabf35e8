package message

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

type Type string

const (
	TypePrompt   Type = "prompt"
	TypeResponse Type = "response"
)

func (t Type) Valid() bool {
	return t == TypePrompt || t == TypeResponse
}

const (
	MaxTitleLen   = 500
	MaxSummaryLen = 10000
)

// Message is a saved prompt or response. PersonaID is a weak reference:
// soft-deleting the persona clears it and leaves the message in place.
type Message struct {
	ID        record.ID     `json:"id"`
	UserID    record.UserID `json:"user_id"`
	PersonaID *record.ID    `json:"persona_id"`
	Type      Type          `json:"type"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Summary   *string       `json:"summary"`
	Starred   bool          `json:"starred"`
	record.Lifecycle
}

func (m Message) Key() record.ID       { return m.ID }
func (m Message) Owner() record.UserID { return m.UserID }

// Revision is the state a message had before one of its mutations.
type Revision struct {
	Message
	ArchivedAt time.Time `json:"archived_at"`
}

type Draft struct {
	PersonaID *record.ID
	Type      Type
	Title     string
	Content   string
	Summary   *string
	Starred   bool
}

func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: type must be %q or %q", record.ErrValidation, TypePrompt, TypeResponse)
	}
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content is required", record.ErrValidation)
	}
	if err := validateSummary(d.Summary); err != nil {
		return err
	}
	return validatePersonaRef(d.PersonaID)
}

func (d Draft) Message() Message {
	return Message{
		PersonaID: emptyIDToNil(d.PersonaID),
		Type:      d.Type,
		Title:     strings.TrimSpace(d.Title),
		Content:   d.Content,
		Summary:   emptyToNil(d.Summary),
		Starred:   d.Starred,
	}
}

// Patch is a partial update. The type of a message is fixed at creation.
// An empty PersonaID or Summary clears the field.
type Patch struct {
	PersonaID *record.ID
	Title     *string
	Content   *string
	Summary   *string
	Starred   *bool
}

func (p Patch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", record.ErrValidation)
	}
	if err := validateSummary(p.Summary); err != nil {
		return err
	}
	return validatePersonaRef(p.PersonaID)
}

// LinksPersona reports whether applying p sets a (non-empty) persona reference.
func (p Patch) LinksPersona() bool {
	return p.PersonaID != nil && *p.PersonaID != ""
}

func (p Patch) Apply(cur Message) Message {
	if p.PersonaID != nil {
		cur.PersonaID = emptyIDToNil(p.PersonaID)
	}
	if p.Title != nil {
		cur.Title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		cur.Content = *p.Content
	}
	if p.Summary != nil {
		cur.Summary = emptyToNil(p.Summary)
	}
	if p.Starred != nil {
		cur.Starred = *p.Starred
	}
	return cur
}

// Filter narrows a listing. Unset fields do not constrain it. Unlinked keeps
// only messages with no persona and excludes PersonaID.
type Filter struct {
	Type      *Type
	Starred   *bool
	PersonaID *record.ID
	Unlinked  bool
}

func (f Filter) Validate() error {
	if f.Type != nil && !f.Type.Valid() {
		return fmt.Errorf("%w: unknown message type %q", record.ErrValidation, *f.Type)
	}
	if f.Unlinked && f.PersonaID != nil {
		return fmt.Errorf("%w: persona_id and unlinked are mutually exclusive", record.ErrValidation)
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", record.ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", record.ErrValidation, MaxTitleLen)
	}
	return nil
}

func validateSummary(s *string) error {
	if s != nil && utf8.RuneCountInString(*s) > MaxSummaryLen {
		return fmt.Errorf("%w: summary exceeds %d characters", record.ErrValidation, MaxSummaryLen)
	}
	return nil
}

func validatePersonaRef(id *record.ID) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, ok := record.ParseID(string(*id)); !ok {
		return fmt.Errorf("%w: invalid persona_id", record.ErrValidation)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func emptyIDToNil(id *record.ID) *record.ID {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}
