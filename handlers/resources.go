// ABOUTME: MCP resource handlers for exposing pipeline data
// ABOUTME: Provides read-only access to sections and records via pipenav:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/fetch"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/workingset"
)

type ResourceHandlers struct {
	cache   *cache.LayeredCache
	fetcher *fetch.Client
}

func NewResourceHandlers(layered *cache.LayeredCache, fetcher *fetch.Client) *ResourceHandlers {
	return &ResourceHandlers{cache: layered, fetcher: fetcher}
}

// ReadResource handles resource read requests. URIs:
//   - pipenav://<section>        the section's working set in navigation order
//   - pipenav://<section>/<id>   a single record
//   - pipenav://pipeline         per-section record counts
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "pipenav://") {
		return nil, fmt.Errorf("invalid URI scheme: expected pipenav://")
	}

	path := strings.TrimPrefix(uri, "pipenav://")
	parts := strings.Split(path, "/")

	if parts[0] == "pipeline" {
		return h.readPipeline(ctx)
	}

	section, err := models.ParseSection(parts[0])
	if err != nil {
		return nil, err
	}

	if len(parts) == 1 {
		return h.readSection(ctx, section)
	}
	return h.readRecord(ctx, section, parts[1])
}

func (h *ResourceHandlers) readSection(ctx context.Context, section models.Section) (*mcp.ReadResourceResult, error) {
	records, total, err := h.sectionRecords(ctx, section)
	if err != nil {
		return nil, err
	}

	set := workingset.Build(section, records, workingset.Filter{}, workingset.Sort{})

	payload := struct {
		Records []models.Record `json:"records"`
		Total   int             `json:"total"`
	}{set.Records, total}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s records: %w", section, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      fmt.Sprintf("pipenav://%s", section),
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readRecord(ctx context.Context, section models.Section, id string) (*mcp.ReadResourceResult, error) {
	rec, ok := h.cache.Lookup(section, id)
	if !ok {
		var err error
		rec, err = h.fetcher.FetchRecord(ctx, section, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      fmt.Sprintf("pipenav://%s/%s", section, id),
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readPipeline(ctx context.Context) (*mcp.ReadResourceResult, error) {
	pipeline := make(map[string]struct {
		Count int `json:"count"`
		Total int `json:"total"`
	})

	for _, section := range models.Sections() {
		records, total, err := h.sectionRecords(ctx, section)
		if err != nil {
			return nil, err
		}
		pipeline[string(section)] = struct {
			Count int `json:"count"`
			Total int `json:"total"`
		}{len(records), total}
	}

	data, err := json.MarshalIndent(pipeline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pipeline: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      "pipenav://pipeline",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// sectionRecords serves from the session's collection snapshot when present.
func (h *ResourceHandlers) sectionRecords(ctx context.Context, section models.Section) ([]models.Record, int, error) {
	if records, total, ok := h.cache.Collection(section); ok {
		return records, total, nil
	}
	records, total, err := h.fetcher.FetchCollection(ctx, section, 100)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", section, err)
	}
	return records, total, nil
}
