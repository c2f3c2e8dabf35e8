package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-vault/internal/port/eventbus"
)

// EventBus fans record changes out across server processes with Postgres
// LISTEN/NOTIFY. Each subscription holds one pooled connection.
type EventBus struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool: pool,
		subs: make(map[*subscription]struct{}),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	if ch == "" {
		return fmt.Errorf("publishing event: unknown type %q", e.Type)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channelName(ch), string(payload)); err != nil {
		return fmt.Errorf("publishing %s on %s: %w", e.Type, channelName(ch), err)
	}
	return nil
}

// Subscribe invokes handler for every event on ch until the subscription is
// cancelled or ctx ends.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}

	name := channelName(ch)
	if _, err := conn.Exec(ctx, "LISTEN "+name); err != nil {
		conn.Release()
		return nil, fmt.Errorf("executing LISTEN on %s: %w", name, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	eb.mu.Lock()
	eb.subs[sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			conn.Exec(context.Background(), "UNLISTEN "+name) //nolint:errcheck
			conn.Release()
			eb.mu.Lock()
			delete(eb.subs, sub)
			eb.mu.Unlock()
			close(sub.done)
		}()

		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				slog.WarnContext(subCtx, "event bus wait failed", "channel", name, "error", err)
				if conn.Conn().IsClosed() {
					return
				}
				continue
			}

			var e event.Event
			if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
				slog.WarnContext(subCtx, "dropping malformed event", "channel", name, "error", err)
				continue
			}
			handler(subCtx, e)
		}
	}()

	return sub, nil
}

// Close cancels every live subscription and waits for their listeners.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	subs := make([]*subscription, 0, len(eb.subs))
	for s := range eb.subs {
		subs = append(subs, s)
	}
	eb.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func channelName(ch event.Channel) string {
	return "prompt_vault_" + string(ch)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
