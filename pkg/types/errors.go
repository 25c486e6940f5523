package types

import "errors"

// Error taxonomy for the indexing engine. The orchestrator treats these as
// fatal short-circuits; everything else degrades per component contract.
var (
	// ErrUnsupportedLanguage is returned when a file extension maps to no
	// known language. Fatal, no side effects.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidSymbol reports a symbol that failed construction-time
	// validation.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrFileTooLarge is returned when a source file exceeds the parser's
	// size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrIndexingInProgress is returned when a second indexing call races
	// the same file. Callers should retry after the current pass finishes.
	ErrIndexingInProgress = errors.New("indexing already in progress for file")
)
