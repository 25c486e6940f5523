// Package types defines the language-neutral domain model shared across the
// CodeAtlas indexing engine: canonical symbols, import references, dependency
// edges, code chunks, dead-code findings, and the result shapes returned by
// the indexing and search operations.
//
// The model reconciles four divergent grammars (Python, JavaScript,
// TypeScript, Go) into one closed set of symbol kinds and relations. All line
// spans are 1-indexed and inclusive, and a symbol with LineStart > LineEnd
// fails validation.
package types
