package persona

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	portbus "github.com/alanyang/prompt-vault/internal/port/eventbus"
	portpersona "github.com/alanyang/prompt-vault/internal/port/persona"
)

type Service struct {
	repo portpersona.Repository
	bus  portbus.EventBus
}

func NewService(repo portpersona.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Create(ctx context.Context, owner record.UserID, d domainpersona.Draft) (domainpersona.Persona, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainpersona.Persona{}, err
	}
	if err := d.Validate(); err != nil {
		return domainpersona.Persona{}, err
	}
	p, err := s.repo.Create(ctx, owner, d)
	if err != nil {
		return domainpersona.Persona{}, fmt.Errorf("create persona: %w", err)
	}
	s.publish(ctx, event.TypePersonaCreated, owner, p.ID, p.Version)
	return p, nil
}

func (s *Service) Get(ctx context.Context, owner record.UserID, rawID string) (domainpersona.Persona, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainpersona.Persona{}, err
	}
	id, err := record.Ref("persona", rawID)
	if err != nil {
		return domainpersona.Persona{}, err
	}
	p, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domainpersona.Persona{}, fmt.Errorf("get persona: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, owner record.UserID, page record.PageRequest) (record.Page[domainpersona.Persona], error) {
	if err := record.CheckOwner(owner); err != nil {
		return record.Page[domainpersona.Persona]{}, err
	}
	out, err := s.repo.List(ctx, owner, page)
	if err != nil {
		return record.Page[domainpersona.Persona]{}, fmt.Errorf("list personas: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, owner record.UserID, rawID string, expected int64, patch domainpersona.Patch) (domainpersona.Persona, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainpersona.Persona{}, err
	}
	id, err := record.Ref("persona", rawID)
	if err != nil {
		return domainpersona.Persona{}, err
	}
	if err := record.CheckVersion(expected); err != nil {
		return domainpersona.Persona{}, err
	}
	if err := patch.Validate(); err != nil {
		return domainpersona.Persona{}, err
	}
	p, err := s.repo.Update(ctx, owner, id, expected, patch)
	if err != nil {
		return domainpersona.Persona{}, fmt.Errorf("update persona: %w", err)
	}
	s.publish(ctx, event.TypePersonaUpdated, owner, p.ID, p.Version)
	return p, nil
}

// Delete soft-deletes the persona and detaches it from the owner's messages.
func (s *Service) Delete(ctx context.Context, owner record.UserID, rawID string, expected int64) error {
	if err := record.CheckOwner(owner); err != nil {
		return err
	}
	id, err := record.Ref("persona", rawID)
	if err != nil {
		return err
	}
	if err := record.CheckVersion(expected); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, owner, id, expected); err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	s.publish(ctx, event.TypePersonaDeleted, owner, id, expected+1)
	return nil
}

func (s *Service) publish(ctx context.Context, t event.Type, owner record.UserID, id record.ID, version int64) {
	if err := s.bus.Publish(ctx, event.New(t, owner, id, version)); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", t, "id", id, "error", err)
	}
}
