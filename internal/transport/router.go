package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-vault/internal/port/eventbus"
	portidem "github.com/alanyang/prompt-vault/internal/port/idempotency"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"

	authhandler "github.com/alanyang/prompt-vault/internal/transport/auth"
	messagehandler "github.com/alanyang/prompt-vault/internal/transport/message"
	personahandler "github.com/alanyang/prompt-vault/internal/transport/persona"
	wshandler "github.com/alanyang/prompt-vault/internal/transport/ws"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	PersonaSvc  *personasvc.Service
	MessageSvc  *messagesvc.Service
	Guard       authhandler.Guard
	Idempotency portidem.Store
	EventBus    porteventbus.EventBus

	// MCP is mounted at /mcp behind authentication when set.
	MCP http.Handler

	// Health reports whether the store is reachable.
	Health func(ctx context.Context) error

	CORSOrigins []string
}

func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				slog.WarnContext(c.Request.Context(), "health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := authhandler.Middleware(d.Guard)
	api := r.Group("/api", authed)

	idem := IdempotencyMiddleware(d.Idempotency)
	authhandler.Register(api.Group("/auth"))
	personahandler.Register(api.Group("/personas"), d.PersonaSvc, idem)
	messagehandler.Register(api.Group("/messages"), d.MessageSvc, idem)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	if d.MCP != nil {
		mcp := gin.WrapH(d.MCP)
		r.Any("/mcp", authed, mcp)
	}

	// One LISTEN connection per channel; the hub routes each event to the
	// owner's sockets only.
	for _, ch := range []event.Channel{event.ChannelPersona, event.ChannelMessage} {
		c := ch
		if _, err := d.EventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}
