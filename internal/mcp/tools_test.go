package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("CODEATLAS_EMBEDDING_PROVIDER", "local")
	t.Setenv("CODEATLAS_EMBEDDING_DIMENSION", "32")

	root := t.TempDir()
	writeSource(t, root, "auth/models.py", "class User:\n    def __init__(self, name):\n        self.name = name\n")
	writeSource(t, root, "auth/service.py", "from .models import User\n\ndef login(user):\n    return User(user)\n")

	s, err := NewServer(context.Background(), Config{
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		ProjectRoot: root,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.storage.Close() })
	return s
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func toolCall(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func assertMCPError(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func TestHandleIndexFile(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleIndexFile(context.Background(), toolCall(map[string]interface{}{
		"file_path": "auth/service.py",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, true, response["indexed"])
	assert.Equal(t, float64(1), response["symbols_found"])
	assert.Equal(t, float64(1), response["dependencies_found"])
	assert.NotContains(t, response, "errors")
}

func TestHandleIndexFileInlineContent(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleIndexFile(context.Background(), toolCall(map[string]interface{}{
		"file_path": "lib/util.py",
		"content":   "def helper():\n    return 1\n",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, true, response["indexed"])
}

func TestHandleIndexFileMissingPath(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleIndexFile(context.Background(), toolCall(map[string]interface{}{}))
	assertMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleIndexFileBadFile(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleIndexFile(context.Background(), toolCall(map[string]interface{}{
		"file_path": "ghost.py",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, false, response["indexed"])
	assert.Contains(t, response, "errors")
}

func TestHandleIndexProject(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleIndexProject(context.Background(), toolCall(map[string]interface{}{
		"workers": float64(2),
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, float64(2), response["files_indexed"])
	assert.Equal(t, float64(0), response["files_failed"])
}

func TestHandleSearchCode(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleSearchCode(ctx, toolCall(map[string]interface{}{
		"query": "user login",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, "user login", response["query"])
	assert.Greater(t, response["count"], float64(0))
}

func TestHandleSearchCodeEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(), toolCall(map[string]interface{}{}))
	assertMCPError(t, err, ErrorCodeEmptyQuery)

	_, err = s.handleSearchCode(context.Background(), toolCall(map[string]interface{}{
		"query": "",
	}))
	assertMCPError(t, err, ErrorCodeEmptyQuery)
}

func TestHandleSearchCodeBadLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(), toolCall(map[string]interface{}{
		"query": "x",
		"limit": float64(0),
	}))
	assertMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearchCode(context.Background(), toolCall(map[string]interface{}{
		"query": "x",
		"limit": float64(500),
	}))
	assertMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleAnalyzeGraph(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleAnalyzeGraph(ctx, toolCall(nil))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, float64(2), response["node_count"])
	assert.Equal(t, float64(1), response["edge_count"])
	assert.Equal(t, true, response["is_dag"])
}

func TestHandleGetDependencies(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleGetDependencies(ctx, toolCall(map[string]interface{}{
		"file_path": "auth/service.py",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, []interface{}{"auth/models.py"}, response["dependencies"])
}

func TestHandleGetDependents(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleGetDependents(ctx, toolCall(map[string]interface{}{
		"file_path": "auth/models.py",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, []interface{}{"auth/service.py"}, response["dependents"])
}

func TestHandleFileWalkBadDepth(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleGetDependencies(context.Background(), toolCall(map[string]interface{}{
		"file_path": "auth/service.py",
		"depth":     float64(0),
	}))
	assertMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleGetImpact(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleGetImpact(ctx, toolCall(map[string]interface{}{
		"file_path": "auth/models.py",
	}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, []interface{}{"auth/service.py"}, response["impacted"])
}

func TestHandleFindDeadCode(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleFindDeadCode(ctx, toolCall(map[string]interface{}{}))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Contains(t, response, "count")
	assert.Contains(t, response, "entries")
}

func TestHandleFindDeadCodeBadConfidence(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleFindDeadCode(context.Background(), toolCall(map[string]interface{}{
		"confidence": "certain",
	}))
	assertMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleGetStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIndexProject(ctx, toolCall(nil))
	require.NoError(t, err)

	result, err := s.handleGetStatus(ctx, toolCall(nil))
	require.NoError(t, err)

	response := decodeResult(t, result)
	assert.Equal(t, ServerName, response["server"])
	assert.Equal(t, float64(2), response["files"])
}

func TestMeetsConfidence(t *testing.T) {
	assert.True(t, meetsConfidence(types.ConfidenceHigh, "low"))
	assert.True(t, meetsConfidence(types.ConfidenceMedium, "medium"))
	assert.False(t, meetsConfidence(types.ConfidenceLow, "medium"))
	assert.False(t, meetsConfidence(types.ConfidenceMedium, "high"))
}

func TestArgumentHelpers(t *testing.T) {
	args := map[string]interface{}{
		"flag":  true,
		"num":   float64(7),
		"label": "x",
	}
	assert.True(t, getBoolDefault(args, "flag", false))
	assert.False(t, getBoolDefault(args, "missing", false))
	assert.Equal(t, 7, getIntDefault(args, "num", 0))
	assert.Equal(t, 3, getIntDefault(args, "missing", 3))
	assert.Equal(t, "x", getStringDefault(args, "label", ""))
	assert.Equal(t, "d", getStringDefault(args, "missing", "d"))
}
