package persona

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

const (
	MaxNameLen        = 255
	MaxDescriptionLen = 5000
)

// Persona is a named prompt template. Name is unique among the owner's
// active personas.
type Persona struct {
	ID          record.ID     `json:"id"`
	UserID      record.UserID `json:"user_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Prompt      string        `json:"prompt"`
	record.Lifecycle
}

func (p Persona) Key() record.ID       { return p.ID }
func (p Persona) Owner() record.UserID { return p.UserID }

// Draft carries the caller-supplied fields of a new persona.
type Draft struct {
	Name        string
	Description *string
	Prompt      string
}

func (d Draft) Validate() error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	if err := validateDescription(d.Description); err != nil {
		return err
	}
	if strings.TrimSpace(d.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", record.ErrValidation)
	}
	return nil
}

// Persona returns the kind fields of d as an unsaved persona.
func (d Draft) Persona() Persona {
	return Persona{
		Name:        strings.TrimSpace(d.Name),
		Description: emptyToNil(d.Description),
		Prompt:      d.Prompt,
	}
}

// Patch is a partial update. Nil fields are left untouched; an empty
// Description clears it.
type Patch struct {
	Name        *string
	Description *string
	Prompt      *string
}

func (p Patch) Validate() error {
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.Prompt != nil && strings.TrimSpace(*p.Prompt) == "" {
		return fmt.Errorf("%w: prompt must not be empty", record.ErrValidation)
	}
	return nil
}

func (p Patch) Apply(cur Persona) Persona {
	if p.Name != nil {
		cur.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		cur.Description = emptyToNil(p.Description)
	}
	if p.Prompt != nil {
		cur.Prompt = *p.Prompt
	}
	return cur
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", record.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", record.ErrValidation, MaxNameLen)
	}
	return nil
}

func validateDescription(d *string) error {
	if d != nil && utf8.RuneCountInString(*d) > MaxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", record.ErrValidation, MaxDescriptionLen)
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
