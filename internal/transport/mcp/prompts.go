package mcp

import (
	"context"
	"fmt"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// RegisterPrompts exposes the caller's personas as an MCP prompt.
func RegisterPrompts(s *mcpserver.MCPServer, personaSvc *personasvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("persona",
			mcpmcp.WithPromptDescription("The prompt template of one of your personas."),
			mcpmcp.WithArgument("persona_id",
				mcpmcp.ArgumentDescription("Persona id, as returned by list_personas."),
				mcpmcp.RequiredArgument(),
			),
		),
		personaPromptHandler(personaSvc),
	)
}

func personaPromptHandler(svc *personasvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		p, err := svc.Get(ctx, httpx.OwnerFrom(ctx), req.Params.Arguments["persona_id"])
		if err != nil {
			return nil, fmt.Errorf("get persona prompt: %w", err)
		}

		description := p.Name
		if p.Description != nil {
			description = p.Name + ": " + *p.Description
		}
		return mcpmcp.NewGetPromptResult(
			description,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: p.Prompt,
					},
				),
			},
		), nil
	}
}
