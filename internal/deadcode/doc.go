// Package deadcode flags exported symbols with no discovered reference
// anywhere in the index, attaching a high/medium/low confidence heuristic.
// Exclusion rules (non-exported, entry points, referenced) run strictly
// before confidence scoring.
package deadcode
