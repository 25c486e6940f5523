package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexFileTool returns the tool definition for index_file
func indexFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_file",
		Description: "Index a single source file: extract symbols, resolve imports, update the dependency graph, and refresh semantic chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "File content; read from disk when omitted",
				},
				"service_name": map[string]interface{}{
					"type":        "string",
					"description": "Service the file belongs to; derived from the top-level directory when omitted",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

// indexProjectTool returns the tool definition for index_project
func indexProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_project",
		Description: "Index every supported source file under the project root (Python, JavaScript, TypeScript, Go)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index files whose content hash is unchanged",
					"default":     false,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Concurrent file limit (default: CPU count)",
				},
			},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Semantic search over indexed code chunks with natural language queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one language (python, javascript, typescript, go)",
				},
				"service_name": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one service",
				},
			},
			Required: []string{"query"},
		},
	}
}

// analyzeGraphTool returns the tool definition for analyze_graph
func analyzeGraphTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_graph",
		Description: "Analyze the dependency graph: cycles, central files, components, and build order",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getDependenciesTool returns the tool definition for get_dependencies
func getDependenciesTool() mcp.Tool {
	return fileWalkTool("get_dependencies", "List the files a file depends on, to a given depth")
}

// getDependentsTool returns the tool definition for get_dependents
func getDependentsTool() mcp.Tool {
	return fileWalkTool("get_dependents", "List the files that depend on a file, to a given depth")
}

func fileWalkTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"description": "Traversal depth (default: 1)",
					"default":     1,
					"minimum":     1,
				},
			},
			Required: []string{"file_path"},
		},
	}
}

// getImpactTool returns the tool definition for get_impact
func getImpactTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_impact",
		Description: "List every file transitively affected by a change to the given file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

// findDeadCodeTool returns the tool definition for find_dead_code
func findDeadCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_dead_code",
		Description: "Find exported symbols with no references, ranked by removal confidence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"confidence": map[string]interface{}{
					"type":        "string",
					"description": "Minimum confidence to report (low, medium, high)",
					"default":     "low",
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index size: files, symbols, and graph dimensions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
