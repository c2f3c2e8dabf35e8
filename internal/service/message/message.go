package message

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	portbus "github.com/alanyang/prompt-vault/internal/port/eventbus"
	portmessage "github.com/alanyang/prompt-vault/internal/port/message"
)

type Service struct {
	repo portmessage.Repository
	bus  portbus.EventBus
}

func NewService(repo portmessage.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Create(ctx context.Context, owner record.UserID, d domainmessage.Draft) (domainmessage.Message, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainmessage.Message{}, err
	}
	if err := d.Validate(); err != nil {
		return domainmessage.Message{}, err
	}
	m, err := s.repo.Create(ctx, owner, d)
	if err != nil {
		return domainmessage.Message{}, fmt.Errorf("create message: %w", err)
	}
	s.publish(ctx, event.TypeMessageCreated, owner, m.ID, m.Version)
	return m, nil
}

func (s *Service) Get(ctx context.Context, owner record.UserID, rawID string) (domainmessage.Message, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainmessage.Message{}, err
	}
	id, err := record.Ref("message", rawID)
	if err != nil {
		return domainmessage.Message{}, err
	}
	m, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domainmessage.Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, owner record.UserID, f domainmessage.Filter, page record.PageRequest) (record.Page[domainmessage.Message], error) {
	if err := record.CheckOwner(owner); err != nil {
		return record.Page[domainmessage.Message]{}, err
	}
	if err := f.Validate(); err != nil {
		return record.Page[domainmessage.Message]{}, err
	}
	out, err := s.repo.List(ctx, owner, f, page)
	if err != nil {
		return record.Page[domainmessage.Message]{}, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, owner record.UserID, rawID string, expected int64, patch domainmessage.Patch) (domainmessage.Message, error) {
	if err := record.CheckOwner(owner); err != nil {
		return domainmessage.Message{}, err
	}
	id, err := record.Ref("message", rawID)
	if err != nil {
		return domainmessage.Message{}, err
	}
	if err := record.CheckVersion(expected); err != nil {
		return domainmessage.Message{}, err
	}
	if err := patch.Validate(); err != nil {
		return domainmessage.Message{}, err
	}
	m, err := s.repo.Update(ctx, owner, id, expected, patch)
	if err != nil {
		return domainmessage.Message{}, fmt.Errorf("update message: %w", err)
	}
	s.publish(ctx, event.TypeMessageUpdated, owner, m.ID, m.Version)
	return m, nil
}

// Star sets the starred flag. It is Update restricted to one field.
func (s *Service) Star(ctx context.Context, owner record.UserID, rawID string, expected int64, starred bool) (domainmessage.Message, error) {
	return s.Update(ctx, owner, rawID, expected, domainmessage.Patch{Starred: &starred})
}

func (s *Service) Delete(ctx context.Context, owner record.UserID, rawID string, expected int64) error {
	if err := record.CheckOwner(owner); err != nil {
		return err
	}
	id, err := record.Ref("message", rawID)
	if err != nil {
		return err
	}
	if err := record.CheckVersion(expected); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, owner, id, expected); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	s.publish(ctx, event.TypeMessageDeleted, owner, id, expected+1)
	return nil
}

// History lists earlier versions of an active message, newest first.
func (s *Service) History(ctx context.Context, owner record.UserID, rawID string, page record.PageRequest) (record.Page[domainmessage.Revision], error) {
	if err := record.CheckOwner(owner); err != nil {
		return record.Page[domainmessage.Revision]{}, err
	}
	id, err := record.Ref("message", rawID)
	if err != nil {
		return record.Page[domainmessage.Revision]{}, err
	}
	out, err := s.repo.History(ctx, owner, id, page)
	if err != nil {
		return record.Page[domainmessage.Revision]{}, fmt.Errorf("message history: %w", err)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, t event.Type, owner record.UserID, id record.ID, version int64) {
	if err := s.bus.Publish(ctx, event.New(t, owner, id, version)); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", t, "id", id, "error", err)
	}
}
