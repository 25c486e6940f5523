package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dhollis/codeatlas-mcp/internal/embedder"
	"github.com/dhollis/codeatlas-mcp/internal/indexer"
	"github.com/dhollis/codeatlas-mcp/internal/semantic"
	"github.com/dhollis/codeatlas-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "codeatlas-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Config configures the server.
type Config struct {
	// DBPath is the SQLite database location. Empty defaults to
	// ~/.codeatlas/codeatlas.db.
	DBPath string

	// ProjectRoot is the codebase the server indexes. Empty defaults to
	// the working directory.
	ProjectRoot string
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	searcher *semantic.Searcher
}

// NewServer creates a new MCP server instance
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".codeatlas", "codeatlas.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	root := cfg.ProjectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	idx := indexer.New(ctx, store, store, emb, indexer.Config{ProjectRoot: root})
	srch := semantic.NewSearcher(store, emb)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		indexer:  idx,
		searcher: srch,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexFileTool(), s.handleIndexFile)
	s.mcp.AddTool(indexProjectTool(), s.handleIndexProject)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(analyzeGraphTool(), s.handleAnalyzeGraph)
	s.mcp.AddTool(getDependenciesTool(), s.handleGetDependencies)
	s.mcp.AddTool(getDependentsTool(), s.handleGetDependents)
	s.mcp.AddTool(getImpactTool(), s.handleGetImpact)
	s.mcp.AddTool(findDeadCodeTool(), s.handleFindDeadCode)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
