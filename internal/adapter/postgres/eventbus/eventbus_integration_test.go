//go:build integration

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeventbus "github.com/alanyang/prompt-vault/internal/adapter/postgres/eventbus"
	"github.com/alanyang/prompt-vault/internal/domain/event"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	"github.com/alanyang/prompt-vault/internal/testutil"
)

func TestEventBus_DeliversOnKindChannel(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bus := pgeventbus.New(pool)
	defer bus.Close()

	got := make(chan event.Event, 4)
	sub, err := bus.Subscribe(ctx, event.ChannelMessage, func(_ context.Context, e event.Event) {
		got <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	id := record.NewID()
	require.NoError(t, bus.Publish(ctx, event.New(event.TypePersonaCreated, "u1", record.NewID(), 1)))
	require.NoError(t, bus.Publish(ctx, event.New(event.TypeMessageUpdated, "u1", id, 3)))

	select {
	case e := <-got:
		assert.Equal(t, event.TypeMessageUpdated, e.Type)
		assert.Equal(t, id, e.EntityID)
		assert.Equal(t, int64(3), e.Version)
		assert.Equal(t, record.UserID("u1"), e.UserID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
