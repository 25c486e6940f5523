// Package mcp implements the Model Context Protocol server for CodeAtlas.
//
// The server exposes the indexing and analysis pipeline as MCP tools
// over stdio (JSON-RPC 2.0):
//   - index_file: index one source file
//   - index_project: index every supported file under the project root
//   - search_code: semantic search over indexed chunks
//   - analyze_graph: cycles, central files, components, build order
//   - get_dependencies / get_dependents: bounded graph walks
//   - get_impact: transitive dependents of a file
//   - find_dead_code: unreferenced exported symbols by confidence
//   - get_status: index size counters
//
// # Error Handling
//
// Tool handlers return standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "file_path", "reason": "missing or empty"}
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Indexing in progress for the requested file
//   - -32002: Empty query
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the MCP protocol.
package mcp
