package event

import (
	"time"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

type Type string

const (
	TypePersonaCreated Type = "persona_created"
	TypePersonaUpdated Type = "persona_updated"
	TypePersonaDeleted Type = "persona_deleted"
	TypeMessageCreated Type = "message_created"
	TypeMessageUpdated Type = "message_updated"
	TypeMessageDeleted Type = "message_deleted"
)

// Channel is a Postgres NOTIFY channel. Each record kind shares one LISTEN
// connection.
type Channel string

const (
	ChannelPersona Channel = "persona"
	ChannelMessage Channel = "message"
)

var typeToChannel = map[Type]Channel{
	TypePersonaCreated: ChannelPersona,
	TypePersonaUpdated: ChannelPersona,
	TypePersonaDeleted: ChannelPersona,
	TypeMessageCreated: ChannelMessage,
	TypeMessageUpdated: ChannelMessage,
	TypeMessageDeleted: ChannelMessage,
}

// ChannelFor returns the channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers and the resulting version only, not record state.
// Subscribers that need the record re-read it as the owner.
type Event struct {
	Type      Type          `json:"type"`
	UserID    record.UserID `json:"user_id"`
	EntityID  record.ID     `json:"entity_id"`
	Version   int64         `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
}

func New(eventType Type, owner record.UserID, entityID record.ID, version int64) Event {
	return Event{
		Type:      eventType,
		UserID:    owner,
		EntityID:  entityID,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}
