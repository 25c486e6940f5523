package types

// Confidence is the heuristic certainty attached to a dead-code finding.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DeadCodeEntry is one unreferenced exported symbol flagged by the detector.
type DeadCodeEntry struct {
	SymbolName  string
	FilePath    string
	Kind        SymbolKind
	Line        int
	ServiceName string
	Confidence  Confidence
}
