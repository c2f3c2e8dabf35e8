package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// Server exposes personas and messages as MCP tools and prompts over
// streamable HTTP. It must be mounted behind the auth middleware; every
// call acts as the authenticated user.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(personaSvc *personasvc.Service, messageSvc *messagesvc.Service, version string) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"prompt-vault",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
	)

	RegisterTools(mcpSrv, personaSvc, messageSvc)
	RegisterPrompts(mcpSrv, personaSvc)

	return &Server{
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithHTTPContextFunc(ownerFromRequest),
		),
	}
}

// Handler returns the http.Handler serving the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func ownerFromRequest(ctx context.Context, r *http.Request) context.Context {
	if owner := httpx.OwnerFrom(r.Context()); owner != "" {
		return httpx.WithOwner(ctx, owner)
	}
	return ctx
}
