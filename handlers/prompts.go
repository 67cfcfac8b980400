// ABOUTME: MCP prompt handlers for reusable pipeline workflow templates
// ABOUTME: Provides standardized prompts for record review and follow-up triage
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/fetch"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/workingset"
)

type PromptHandlers struct {
	cache   *cache.LayeredCache
	fetcher *fetch.Client
}

func NewPromptHandlers(layered *cache.LayeredCache, fetcher *fetch.Client) *PromptHandlers {
	return &PromptHandlers{cache: layered, fetcher: fetcher}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "record-summary":
		return h.getRecordSummaryPrompt(ctx, arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getRecordSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	sectionName, ok := args["section"]
	if !ok {
		return nil, fmt.Errorf("section is required")
	}
	id, ok := args["id"]
	if !ok {
		return nil, fmt.Errorf("id is required")
	}

	section, err := models.ParseSection(sectionName)
	if err != nil {
		return nil, err
	}

	rec, found := h.cache.Lookup(section, id)
	if !found {
		rec, err = h.fetcher.FetchRecord(ctx, section, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this pipeline record:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", rec.DisplayName()))
	for _, key := range []string{"title", "company", "email", "industry", "status", "rank"} {
		if v := rec.Str(key); v != "" {
			promptText.WriteString(fmt.Sprintf("%s: %s\n", strings.ToUpper(key[:1])+key[1:], v))
		}
	}
	if ts, ok := rec.LastContactedAt(); ok {
		promptText.WriteString(fmt.Sprintf("Last Contacted: %s\n", ts.Format("2006-01-02")))
	}

	promptText.WriteString("\nPlease analyze this record and provide:")
	promptText.WriteString("\n1. A brief summary of the relationship and where it stands")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any risks suggested by the rank and contact recency")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summary for record: %s", rec.DisplayName()),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	records, _, err := h.fetcher.FetchCollection(ctx, models.SectionProspects, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prospects: %w", err)
	}

	// Prospects order is oldest contact first, so the top of the set is the
	// follow-up backlog.
	set := workingset.Build(models.SectionProspects, records, workingset.Filter{}, workingset.Sort{})

	var promptText strings.Builder
	promptText.WriteString("Prospects ordered by follow-up urgency (oldest contact first):\n\n")

	now := time.Now()
	for _, rec := range set.Records {
		if ts, ok := rec.LastContactedAt(); ok {
			days := int(now.Sub(ts).Hours() / 24)
			promptText.WriteString(fmt.Sprintf("- %s (last contacted %d days ago)\n", rec.DisplayName(), days))
		} else {
			promptText.WriteString(fmt.Sprintf("- %s (never contacted)\n", rec.DisplayName()))
		}
	}

	if len(set.Records) == 0 {
		promptText.WriteString("No prospects in the pipeline.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which prospects to reach out to first")
	promptText.WriteString("\n2. Suggest personalized outreach approaches for each")
	promptText.WriteString("\n3. Identify any patterns in follow-up gaps")

	return &mcp.GetPromptResult{
		Description: "Follow-up suggestions for prospects",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
