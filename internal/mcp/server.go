// Package mcp implements the Model Context Protocol server for canvas-engine.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/canvas-engine/internal/engine"
	"github.com/ajitpratap0/canvas-engine/internal/generate"
	"github.com/ajitpratap0/canvas-engine/internal/metrics"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

const (
	// defaultSearchLimit is the default number of rows for search.
	defaultSearchLimit = 10

	// defaultGenerateCount is the default record count for generation.
	defaultGenerateCount = 8
)

// Server wraps an MCPServer with canvas-engine dependencies.
type Server struct {
	mcp    *mcpserver.MCPServer
	eng    *engine.Engine
	gen    *generate.Generator
	logger *slog.Logger
}

// NewServer creates a new MCP server. If eng or gen are nil,
// the corresponding tool calls will return an error response instead of panicking.
func NewServer(eng *engine.Engine, gen *generate.Generator, logger *slog.Logger) *Server {
	s := &Server{
		eng:    eng,
		gen:    gen,
		logger: logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"canvas-engine",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildLoadTool(), s.handleLoad)
	mcpSrv.AddTool(buildViewTool(), s.handleView)
	mcpSrv.AddTool(buildMoveTool(), s.handleMove)
	mcpSrv.AddTool(buildEditTool(), s.handleEdit)
	mcpSrv.AddTool(buildAddTool(), s.handleAdd)
	mcpSrv.AddTool(buildDeleteTool(), s.handleDelete)
	mcpSrv.AddTool(buildSearchTool(), s.handleSearch)
	mcpSrv.AddTool(buildGenerateTool(), s.handleGenerate)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleLoad is the exported handler for the "canvas_load" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleLoad(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleLoad(ctx, req)
}

// HandleView is the exported handler for the "canvas_view" tool.
func (s *Server) HandleView(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleView(ctx, req)
}

// HandleMove is the exported handler for the "canvas_move" tool.
func (s *Server) HandleMove(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleMove(ctx, req)
}

// HandleEdit is the exported handler for the "canvas_edit" tool.
func (s *Server) HandleEdit(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleEdit(ctx, req)
}

// HandleAdd is the exported handler for the "canvas_add" tool.
func (s *Server) HandleAdd(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAdd(ctx, req)
}

// HandleDelete is the exported handler for the "canvas_delete" tool.
func (s *Server) HandleDelete(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDelete(ctx, req)
}

// HandleSearch is the exported handler for the "canvas_search" tool.
func (s *Server) HandleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearch(ctx, req)
}

// HandleGenerate is the exported handler for the "canvas_generate" tool.
func (s *Server) HandleGenerate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGenerate(ctx, req)
}

// HandleStats is the exported handler for the "canvas_stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildLoadTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_load",
		mcpgo.WithDescription("Load a record batch into the canvas session. Accepts a bare array, {\"entityRecords\": [...]}, or {\"data\": [...]}."),
		mcpgo.WithString("json",
			mcpgo.Required(),
			mcpgo.Description("The record batch as a JSON string"),
		),
	)
}

func buildViewTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_view",
		mcpgo.WithDescription("Project the loaded records as one of the canvas views."),
		mcpgo.WithString("kind",
			mcpgo.Description("View kind: table, kanban, or gantt (default: table)"),
		),
	)
}

func buildMoveTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_move",
		mcpgo.WithDescription("Move a record to another kanban column by rewriting its category field."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("The record id"),
		),
		mcpgo.WithString("column",
			mcpgo.Required(),
			mcpgo.Description("The destination column name"),
		),
	)
}

func buildEditTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_edit",
		mcpgo.WithDescription("Set one field's value on one record. All other fields are preserved."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("The record id"),
		),
		mcpgo.WithString("field",
			mcpgo.Required(),
			mcpgo.Description("The field key to edit"),
		),
		mcpgo.WithString("value",
			mcpgo.Required(),
			mcpgo.Description("The new value"),
		),
	)
}

func buildAddTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_add",
		mcpgo.WithDescription("Append a blank record shaped like the first one and return its id."),
	)
}

func buildDeleteTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_delete",
		mcpgo.WithDescription("Delete records by id. Deleted ids are pruned from the selection."),
		mcpgo.WithString("ids",
			mcpgo.Required(),
			mcpgo.Description("Comma-separated record ids to delete"),
		),
	)
}

func buildSearchTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_search",
		mcpgo.WithDescription("Search the loaded records. Returns matching table rows."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The text to search for"),
		),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of rows (default: 10)"),
		),
	)
}

func buildGenerateTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_generate",
		mcpgo.WithDescription("Generate a record batch from a natural-language prompt and load it into the session."),
		mcpgo.WithString("prompt",
			mcpgo.Required(),
			mcpgo.Description("What kind of dataset to generate"),
		),
		mcpgo.WithNumber("count",
			mcpgo.Description("Number of records to generate (default: 8)"),
		),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("canvas_stats",
		mcpgo.WithDescription("Get session statistics: record count, selection size, columns, enabled views."),
	)
}

// --- tool handlers ---

// handleLoad parses a record batch and makes it the session state.
func (s *Server) handleLoad(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	raw := req.GetString("json", "")
	if strings.TrimSpace(raw) == "" {
		return mcpgo.NewToolResultError("json is required and must not be empty"), nil
	}

	if err := s.eng.LoadJSON([]byte(raw)); err != nil {
		return mcpgo.NewToolResultErrorf("load failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: batch loaded", "records", len(s.eng.Records()))
	return toolResultJSON(s.eng.Stats())
}

// handleView projects the session as the requested view kind.
func (s *Server) handleView(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	kind := models.ViewKind(req.GetString("kind", string(s.eng.DefaultView())))
	view, err := s.eng.View(kind)
	if err != nil {
		return mcpgo.NewToolResultErrorf("view failed: %s", err.Error()), nil
	}
	return toolResultJSON(view)
}

// handleMove rebuckets one record.
func (s *Server) handleMove(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	id := req.GetString("id", "")
	column := req.GetString("column", "")
	if strings.TrimSpace(id) == "" || strings.TrimSpace(column) == "" {
		return mcpgo.NewToolResultError("id and column are required"), nil
	}

	applied := s.eng.MoveCard(id, column)
	if applied {
		s.logger.Info("mcp: card moved", "id", id, "column", column)
	}
	return toolResultJSON(map[string]any{"applied": applied})
}

// handleEdit sets one field value on one record.
func (s *Server) handleEdit(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	id := req.GetString("id", "")
	field := req.GetString("field", "")
	if strings.TrimSpace(id) == "" || strings.TrimSpace(field) == "" {
		return mcpgo.NewToolResultError("id and field are required"), nil
	}
	value := req.GetString("value", "")

	applied := s.eng.EditCell(id, field, value)
	if applied {
		s.logger.Info("mcp: cell edited", "id", id, "field", field)
	}
	return toolResultJSON(map[string]any{"applied": applied})
}

// handleAdd appends a blank record.
func (s *Server) handleAdd(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	id := s.eng.AddRecord()
	if id == "" {
		return mcpgo.NewToolResultError("no template record to clone"), nil
	}

	s.logger.Info("mcp: record added", "id", id)
	return toolResultJSON(map[string]any{"id": id, "added": true})
}

// handleDelete removes records by id.
func (s *Server) handleDelete(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	raw := req.GetString("ids", "")
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return mcpgo.NewToolResultError("ids is required and must not be empty"), nil
	}

	applied := s.eng.DeleteRecords(ids)
	if applied {
		s.logger.Info("mcp: records deleted", "count", len(ids))
	}
	return toolResultJSON(map[string]any{"applied": applied})
}

// handleSearch returns table rows matching the query.
func (s *Server) handleSearch(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows := s.eng.Search(query)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return toolResultJSON(map[string]any{"rows": rows})
}

// handleGenerate produces a batch from a prompt and loads it.
func (s *Server) handleGenerate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}
	if s.gen == nil {
		return mcpgo.NewToolResultError("generator is unavailable"), nil
	}

	prompt := req.GetString("prompt", "")
	if strings.TrimSpace(prompt) == "" {
		return mcpgo.NewToolResultError("prompt is required and must not be empty"), nil
	}
	count := req.GetInt("count", defaultGenerateCount)
	if count <= 0 {
		count = defaultGenerateCount
	}

	batch, err := s.gen.Generate(ctx, prompt, count)
	if err != nil {
		return mcpgo.NewToolResultErrorf("generation failed: %s", err.Error()), nil
	}

	s.eng.SetRecords(batch.Records)
	if batch.Metadata != nil {
		s.eng.Session().SetMetadata(batch.Metadata)
	}
	metrics.Inc(metrics.GenerateTotal)

	s.logger.Info("mcp: batch generated", "records", len(batch.Records))
	return toolResultJSON(s.eng.Stats())
}

// handleStats returns session statistics.
func (s *Server) handleStats(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.eng == nil {
		return mcpgo.NewToolResultError("engine is unavailable"), nil
	}
	return toolResultJSON(s.eng.Stats())
}
