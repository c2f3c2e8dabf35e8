package testutil

import (
	"context"
	"sync"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-vault/internal/port/eventbus"
)

// CaptureBus is an in-process EventBus that records every published event
// and delivers it synchronously to subscribers of its channel.
type CaptureBus struct {
	mu       sync.Mutex
	Events   []event.Event
	handlers map[event.Channel][]*captureSub
}

type captureSub struct {
	bus     *CaptureBus
	ch      event.Channel
	handler porteventbus.Handler
}

func (s *captureSub) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.handlers[s.ch]
	for i, other := range subs {
		if other == s {
			s.bus.handlers[s.ch] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *CaptureBus) Publish(ctx context.Context, e event.Event) error {
	b.mu.Lock()
	b.Events = append(b.Events, e)
	subs := append([]*captureSub(nil), b.handlers[event.ChannelFor(e.Type)]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(ctx, e)
	}
	return nil
}

func (b *CaptureBus) Subscribe(_ context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[event.Channel][]*captureSub)
	}
	s := &captureSub{bus: b, ch: ch, handler: handler}
	b.handlers[ch] = append(b.handlers[ch], s)
	return s, nil
}

// Types returns the types of the recorded events in publish order.
func (b *CaptureBus) Types() []event.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Type, len(b.Events))
	for i, e := range b.Events {
		out[i] = e.Type
	}
	return out
}
