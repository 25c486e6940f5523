package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dhollis/codeatlas-mcp/internal/indexer"
	"github.com/dhollis/codeatlas-mcp/internal/semantic"
	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32001 // The file is already being indexed
	ErrorCodeEmptyQuery         = -32002 // Query parameter is empty
)

// handleIndexFile handles the index_file tool invocation
func (s *Server) handleIndexFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}

	req := indexer.FileRequest{
		FilePath:    filePath,
		ServiceName: getStringDefault(args, "service_name", ""),
	}
	if content, ok := args["content"].(string); ok {
		req.Source = []byte(content)
	}

	result, err := s.indexer.IndexFile(ctx, req)
	if errors.Is(err, types.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "file is already being indexed", map[string]interface{}{
			"file_path": filePath,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid file path", map[string]interface{}{
			"param":  "file_path",
			"reason": err.Error(),
		})
	}

	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"indexed":            result.Indexed,
		"symbols_found":      result.SymbolsFound,
		"dependencies_found": result.DependenciesFound,
	}
	if len(result.Errors) > 0 {
		response["errors"] = result.Errors
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexProject handles the index_project tool invocation
func (s *Server) handleIndexProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	cfg := &indexer.ProjectConfig{
		Force:   getBoolDefault(args, "force", false),
		Workers: getIntDefault(args, "workers", 0),
	}

	stats, err := s.indexer.IndexProject(ctx, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"files_indexed":      stats.FilesIndexed,
		"files_skipped":      stats.FilesSkipped,
		"files_failed":       stats.FilesFailed,
		"symbols_extracted":  stats.SymbolsExtracted,
		"dependencies_found": stats.DependenciesFound,
		"duration_ms":        stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		if len(stats.ErrorMessages) > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = len(stats.ErrorMessages)
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", semantic.DefaultTopK)
	if limit < 1 || limit > semantic.MaxTopK {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", semantic.MaxTopK), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results := s.searcher.Search(ctx, query, semantic.SearchOptions{
		TopK:        limit,
		Language:    getStringDefault(args, "language", ""),
		ServiceName: getStringDefault(args, "service_name", ""),
	})

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAnalyzeGraph handles the analyze_graph tool invocation
func (s *Server) handleAnalyzeGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	analysis := s.indexer.Analyze()
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode analysis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGetDependencies handles the get_dependencies tool invocation
func (s *Server) handleGetDependencies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleFileWalk(request, "dependencies", s.indexer.Dependencies)
}

// handleGetDependents handles the get_dependents tool invocation
func (s *Server) handleGetDependents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleFileWalk(request, "dependents", s.indexer.Dependents)
}

func (s *Server) handleFileWalk(request mcp.CallToolRequest, key string, walk func(string, int) []string) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}

	depth := getIntDefault(args, "depth", 1)
	if depth < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "depth must be at least 1", map[string]interface{}{
			"param": "depth",
			"value": depth,
		})
	}

	files := walk(filePath, depth)
	response := map[string]interface{}{
		"file_path": filePath,
		"depth":     depth,
		key:         files,
		"count":     len(files),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetImpact handles the get_impact tool invocation
func (s *Server) handleGetImpact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}

	files := s.indexer.Impact(filePath)
	response := map[string]interface{}{
		"file_path": filePath,
		"impacted":  files,
		"count":     len(files),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindDeadCode handles the find_dead_code tool invocation
func (s *Server) handleFindDeadCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	minimum := getStringDefault(args, "confidence", "low")
	if minimum != "low" && minimum != "medium" && minimum != "high" {
		return nil, newMCPError(ErrorCodeInvalidParams, "confidence must be low, medium, or high", map[string]interface{}{
			"param": "confidence",
			"value": minimum,
		})
	}

	entries, err := s.indexer.DeadCode(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "dead code detection failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	filtered := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		if !meetsConfidence(e.Confidence, minimum) {
			continue
		}
		filtered = append(filtered, map[string]interface{}{
			"symbol_name":  e.SymbolName,
			"file_path":    e.FilePath,
			"kind":         e.Kind,
			"line":         e.Line,
			"service_name": e.ServiceName,
			"confidence":   e.Confidence,
		})
	}

	response := map[string]interface{}{
		"count":   len(filtered),
		"entries": filtered,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.indexer.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get index status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"server":      ServerName,
		"version":     ServerVersion,
		"files":       status.Files,
		"symbols":     status.Symbols,
		"graph_nodes": status.GraphSize,
		"graph_edges": status.Edges,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// MCPError carries a JSON-RPC error code; the framework handles encoding.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// meetsConfidence reports whether a finding's confidence is at or above
// the requested minimum.
func meetsConfidence(c types.Confidence, minimum string) bool {
	rank := map[types.Confidence]int{
		types.ConfidenceLow:    0,
		types.ConfidenceMedium: 1,
		types.ConfidenceHigh:   2,
	}
	return rank[c] >= rank[types.Confidence(minimum)]
}

// formatJSON formats a response map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
