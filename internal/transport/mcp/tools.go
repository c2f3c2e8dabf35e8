package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// RegisterTools registers all MCP tools on the server.
func RegisterTools(s *mcpserver.MCPServer, personaSvc *personasvc.Service, messageSvc *messagesvc.Service) {
	pageOpts := []mcpmcp.ToolOption{
		mcpmcp.WithNumber("page_size", mcpmcp.Description("Items per page (default 20, max 100)")),
		mcpmcp.WithString("page_token", mcpmcp.Description("next_token from the previous page")),
	}

	s.AddTool(mcpmcp.NewTool("list_personas", append([]mcpmcp.ToolOption{
		mcpmcp.WithDescription("List your personas, newest first."),
	}, pageOpts...)...), listPersonasHandler(personaSvc))

	s.AddTool(mcpmcp.NewTool("get_persona",
		mcpmcp.WithDescription("Fetch one persona, including its prompt and current version."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Persona id")),
	), getPersonaHandler(personaSvc))

	s.AddTool(mcpmcp.NewTool("create_persona",
		mcpmcp.WithDescription("Create a persona. Names are unique among your personas."),
		mcpmcp.WithString("name", mcpmcp.Required(), mcpmcp.Description("Display name, up to 255 characters")),
		mcpmcp.WithString("prompt", mcpmcp.Required(), mcpmcp.Description("Prompt template text")),
		mcpmcp.WithString("description", mcpmcp.Description("Optional description")),
	), createPersonaHandler(personaSvc))

	s.AddTool(mcpmcp.NewTool("save_message",
		mcpmcp.WithDescription("Save a prompt or a response to the vault."),
		mcpmcp.WithString("type", mcpmcp.Required(), mcpmcp.Enum("prompt", "response"), mcpmcp.Description("prompt or response")),
		mcpmcp.WithString("title", mcpmcp.Required(), mcpmcp.Description("Title, up to 500 characters")),
		mcpmcp.WithString("content", mcpmcp.Required(), mcpmcp.Description("Message body")),
		mcpmcp.WithString("summary", mcpmcp.Description("Optional summary")),
		mcpmcp.WithString("persona_id", mcpmcp.Description("Optional id of one of your personas")),
		mcpmcp.WithBoolean("starred", mcpmcp.Description("Star the message")),
	), saveMessageHandler(messageSvc))

	s.AddTool(mcpmcp.NewTool("list_messages", append([]mcpmcp.ToolOption{
		mcpmcp.WithDescription("List your saved messages, newest first. Filters are combined with AND."),
		mcpmcp.WithString("type", mcpmcp.Enum("prompt", "response"), mcpmcp.Description("Only this type")),
		mcpmcp.WithBoolean("starred", mcpmcp.Description("Only starred (true) or unstarred (false)")),
		mcpmcp.WithString("persona_id", mcpmcp.Description("Only messages linked to this persona")),
		mcpmcp.WithBoolean("unlinked", mcpmcp.Description("Only messages linked to no persona")),
	}, pageOpts...)...), listMessagesHandler(messageSvc))

	s.AddTool(mcpmcp.NewTool("get_message",
		mcpmcp.WithDescription("Fetch one message and its current version."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Message id")),
	), getMessageHandler(messageSvc))

	s.AddTool(mcpmcp.NewTool("star_message",
		mcpmcp.WithDescription("Star or unstar a message. Fails with version_conflict if the message changed since you read it."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Message id")),
		mcpmcp.WithNumber("version", mcpmcp.Required(), mcpmcp.Description("Version you last read")),
		mcpmcp.WithBoolean("starred", mcpmcp.Required(), mcpmcp.Description("New starred flag")),
	), starMessageHandler(messageSvc))

	s.AddTool(mcpmcp.NewTool("delete_message",
		mcpmcp.WithDescription("Delete a message. Fails with version_conflict if it changed since you read it."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Message id")),
		mcpmcp.WithNumber("version", mcpmcp.Required(), mcpmcp.Description("Version you last read")),
	), deleteMessageHandler(messageSvc))

	s.AddTool(mcpmcp.NewTool("message_history", append([]mcpmcp.ToolOption{
		mcpmcp.WithDescription("Earlier versions of a message, newest first."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Message id")),
	}, pageOpts...)...), messageHistoryHandler(messageSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listPersonasHandler(svc *personasvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		out, err := svc.List(ctx, httpx.OwnerFrom(ctx), pageOf(req))
		return reply(out, err)
	}
}

func getPersonaHandler(svc *personasvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		p, err := svc.Get(ctx, httpx.OwnerFrom(ctx), mcpmcp.ParseString(req, "id", ""))
		return reply(p, err)
	}
}

func createPersonaHandler(svc *personasvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		p, err := svc.Create(ctx, httpx.OwnerFrom(ctx), domainpersona.Draft{
			Name:        mcpmcp.ParseString(req, "name", ""),
			Prompt:      mcpmcp.ParseString(req, "prompt", ""),
			Description: optionalString(req, "description"),
		})
		return reply(p, err)
	}
}

func saveMessageHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		d := domainmessage.Draft{
			Type:    domainmessage.Type(mcpmcp.ParseString(req, "type", "")),
			Title:   mcpmcp.ParseString(req, "title", ""),
			Content: mcpmcp.ParseString(req, "content", ""),
			Summary: optionalString(req, "summary"),
			Starred: mcpmcp.ParseBoolean(req, "starred", false),
		}
		if v := optionalString(req, "persona_id"); v != nil {
			id := record.ID(*v)
			d.PersonaID = &id
		}
		m, err := svc.Create(ctx, httpx.OwnerFrom(ctx), d)
		return reply(m, err)
	}
}

func listMessagesHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		var f domainmessage.Filter
		if v := optionalString(req, "type"); v != nil {
			t := domainmessage.Type(*v)
			f.Type = &t
		}
		if _, ok := req.GetArguments()["starred"]; ok {
			b := mcpmcp.ParseBoolean(req, "starred", false)
			f.Starred = &b
		}
		if v := optionalString(req, "persona_id"); v != nil {
			id := record.ID(*v)
			f.PersonaID = &id
		}
		f.Unlinked = mcpmcp.ParseBoolean(req, "unlinked", false)
		out, err := svc.List(ctx, httpx.OwnerFrom(ctx), f, pageOf(req))
		return reply(out, err)
	}
}

func getMessageHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		m, err := svc.Get(ctx, httpx.OwnerFrom(ctx), mcpmcp.ParseString(req, "id", ""))
		return reply(m, err)
	}
}

func starMessageHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		m, err := svc.Star(ctx, httpx.OwnerFrom(ctx),
			mcpmcp.ParseString(req, "id", ""),
			mcpmcp.ParseInt64(req, "version", 0),
			mcpmcp.ParseBoolean(req, "starred", true),
		)
		return reply(m, err)
	}
}

func deleteMessageHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		err := svc.Delete(ctx, httpx.OwnerFrom(ctx), id, mcpmcp.ParseInt64(req, "version", 0))
		return reply(map[string]string{"deleted": id}, err)
	}
}

func messageHistoryHandler(svc *messagesvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		out, err := svc.History(ctx, httpx.OwnerFrom(ctx), mcpmcp.ParseString(req, "id", ""), pageOf(req))
		return reply(out, err)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────

// reply renders v as JSON text, or err as "error: <code>[: detail]". Errors
// are tool results, not protocol errors, so the model can react to them.
func reply(v any, err error) (*mcpmcp.CallToolResult, error) {
	if err != nil {
		status, code := httpx.Status(err)
		if status >= http.StatusInternalServerError {
			return mcpmcp.NewToolResultText("error: " + code), nil
		}
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s: %s", code, err)), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}

func pageOf(req mcpmcp.CallToolRequest) record.PageRequest {
	return record.PageRequest{
		Size:  mcpmcp.ParseInt(req, "page_size", 0),
		Token: mcpmcp.ParseString(req, "page_token", ""),
	}
}

func optionalString(req mcpmcp.CallToolRequest, key string) *string {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := mcpmcp.ParseString(req, key, "")
	return &v
}
