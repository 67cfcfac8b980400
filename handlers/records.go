// ABOUTME: Record MCP tool handlers
// ABOUTME: Implements resolve_record, list_records, navigate_record, and invalidate_record tools
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/fetch"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/slug"
	"github.com/adrata/pipenav/workingset"
)

type RecordHandlers struct {
	cache   *cache.LayeredCache
	fetcher *fetch.Client
	bus     *cache.Bus
}

func NewRecordHandlers(layered *cache.LayeredCache, fetcher *fetch.Client, bus *cache.Bus) *RecordHandlers {
	return &RecordHandlers{cache: layered, fetcher: fetcher, bus: bus}
}

type RecordOutput struct {
	ID          string         `json:"id"`
	Section     string         `json:"section"`
	DisplayName string         `json:"display_name"`
	Slug        string         `json:"slug"`
	Source      string         `json:"source"`
	Fields      map[string]any `json:"fields"`
}

type ResolveRecordInput struct {
	Section string `json:"section" jsonschema:"Pipeline section: leads, prospects, opportunities, companies, people, or speedrun (required)"`
	Slug    string `json:"slug" jsonschema:"Record slug or raw record ID to resolve (required)"`
}

func (h *RecordHandlers) ResolveRecord(ctx context.Context, request *mcp.CallToolRequest, input ResolveRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	if input.Slug == "" {
		return nil, RecordOutput{}, fmt.Errorf("slug is required")
	}

	section, err := models.ParseSection(input.Section)
	if err != nil {
		return nil, RecordOutput{}, err
	}

	id, err := slug.Decode(input.Slug)
	if err != nil {
		// A raw id is accepted where a slug was expected.
		if !models.ValidID(input.Slug) {
			return nil, RecordOutput{}, fmt.Errorf("invalid slug: %s", input.Slug)
		}
		id = input.Slug
	}

	if rec, ok := h.cache.Lookup(section, id); ok {
		return nil, recordToOutput(section, rec, "cache"), nil
	}

	rec, err := h.fetcher.FetchRecord(ctx, section, id)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return nil, RecordOutput{}, fmt.Errorf("record not found: %s", id)
		}
		return nil, RecordOutput{}, fmt.Errorf("failed to fetch record: %w", err)
	}

	return nil, recordToOutput(section, rec, "network"), nil
}

type ListRecordsInput struct {
	Section     string `json:"section" jsonschema:"Pipeline section (required)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of records to fetch (default 100)"`
	Search      string `json:"search,omitempty" jsonschema:"Substring match on display name"`
	Industry    string `json:"industry,omitempty" jsonschema:"Filter by industry"`
	Status      string `json:"status,omitempty" jsonschema:"Filter by status (LEAD, PROSPECT, OPPORTUNITY)"`
	SortField   string `json:"sort_field,omitempty" jsonschema:"Field to sort by (defaults to the section's natural order)"`
	SortReverse bool   `json:"sort_reverse,omitempty" jsonschema:"Sort descending instead of ascending"`
}

type ListRecordsOutput struct {
	Records []RecordOutput `json:"records"`
	Total   int            `json:"total"`
}

func (h *RecordHandlers) ListRecords(ctx context.Context, request *mcp.CallToolRequest, input ListRecordsInput) (*mcp.CallToolResult, ListRecordsOutput, error) {
	section, err := models.ParseSection(input.Section)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 100
	}

	records, total, err := h.fetcher.FetchCollection(ctx, section, limit)
	if err != nil {
		return nil, ListRecordsOutput{}, fmt.Errorf("failed to fetch collection: %w", err)
	}

	filter := workingset.Filter{
		Search:   input.Search,
		Industry: input.Industry,
		Status:   input.Status,
	}
	var order workingset.Sort
	if input.SortField != "" {
		order.Field = input.SortField
		if input.SortReverse {
			order.Direction = workingset.Descending
		}
	}

	set := workingset.Build(section, records, filter, order)

	result := make([]RecordOutput, len(set.Records))
	for i, rec := range set.Records {
		result[i] = recordToOutput(section, rec, "network")
	}

	return nil, ListRecordsOutput{Records: result, Total: total}, nil
}

type NavigateRecordInput struct {
	Section   string `json:"section" jsonschema:"Pipeline section (required)"`
	CurrentID string `json:"current_id" jsonschema:"ID of the record navigated from (required)"`
	Direction string `json:"direction" jsonschema:"Navigation direction: next or prev (required)"`
}

func (h *RecordHandlers) NavigateRecord(ctx context.Context, request *mcp.CallToolRequest, input NavigateRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	section, err := models.ParseSection(input.Section)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	if input.CurrentID == "" {
		return nil, RecordOutput{}, fmt.Errorf("current_id is required")
	}

	records, _, snapOK := h.cache.Collection(section)
	if !snapOK {
		if records, _, err = h.fetcher.FetchCollection(ctx, section, 100); err != nil {
			return nil, RecordOutput{}, fmt.Errorf("failed to fetch collection: %w", err)
		}
	}

	set := workingset.Build(section, records, workingset.Filter{}, workingset.Sort{})

	idx := set.IndexOf(input.CurrentID)
	if idx < 0 {
		return nil, RecordOutput{}, fmt.Errorf("record not in working set: %s", input.CurrentID)
	}

	var (
		neighbor models.Record
		ok       bool
	)
	switch input.Direction {
	case "next":
		neighbor, _, ok = set.Next(idx)
	case "prev":
		neighbor, _, ok = set.Prev(idx)
	default:
		return nil, RecordOutput{}, fmt.Errorf("direction must be next or prev")
	}

	if !ok {
		return nil, RecordOutput{}, fmt.Errorf("no %s record from %s", input.Direction, input.CurrentID)
	}
	return nil, recordToOutput(section, neighbor, "cache"), nil
}

type InvalidateRecordInput struct {
	Section string `json:"section" jsonschema:"Pipeline section (required)"`
	ID      string `json:"id" jsonschema:"Record ID to invalidate (required)"`
}

type InvalidateRecordOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *RecordHandlers) InvalidateRecord(_ context.Context, request *mcp.CallToolRequest, input InvalidateRecordInput) (*mcp.CallToolResult, InvalidateRecordOutput, error) {
	section, err := models.ParseSection(input.Section)
	if err != nil {
		return nil, InvalidateRecordOutput{}, err
	}
	if input.ID == "" {
		return nil, InvalidateRecordOutput{}, fmt.Errorf("id is required")
	}

	h.bus.Publish(section, input.ID)
	h.fetcher.Forget(section, input.ID)

	return nil, InvalidateRecordOutput{
		Success: true,
		Message: fmt.Sprintf("Invalidated %s record: %s", section, input.ID),
	}, nil
}

func recordToOutput(section models.Section, rec models.Record, source string) RecordOutput {
	return RecordOutput{
		ID:          rec.ID,
		Section:     string(section),
		DisplayName: rec.DisplayName(),
		Slug:        slug.Build(rec.DisplayName(), rec.ID),
		Source:      source,
		Fields:      rec.Fields,
	}
}
