// ABOUTME: MCP server subcommand
// ABOUTME: Exposes record resolution and navigation as MCP tools on stdio
package cli

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(cfg *config.Config) error {
	log.Println("Starting record navigation MCP server...")

	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	recordHandlers := handlers.NewRecordHandlers(session.Cache, session.Fetcher, session.Bus)
	resourceHandlers := handlers.NewResourceHandlers(session.Cache, session.Fetcher)
	promptHandlers := handlers.NewPromptHandlers(session.Cache, session.Fetcher)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pipenav",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_record",
		Description: "Resolve a record slug or ID to the full record, using the layered cache before the network",
	}, recordHandlers.ResolveRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List a pipeline section's records in navigation order, with optional filters and sort",
	}, recordHandlers.ListRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "navigate_record",
		Description: "Return the next or previous record in a section's working set",
	}, recordHandlers.NavigateRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "invalidate_record",
		Description: "Publish a refresh signal so a record is refetched on its next lookup",
	}, recordHandlers.InvalidateRecord)

	server.AddResource(&mcp.Resource{
		URI:         "pipenav://pipeline",
		Name:        "pipeline",
		Description: "Per-section record counts for the whole pipeline",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "record-summary",
		Description: "Summarize a single pipeline record",
		Arguments: []*mcp.PromptArgument{
			{Name: "section", Description: "Pipeline section", Required: true},
			{Name: "id", Description: "Record ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Triage prospects by follow-up urgency",
	}, promptHandlers.GetPrompt)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
