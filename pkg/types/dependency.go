package types

import "fmt"

// Relation classifies the kind of dependency between two symbols or files.
type Relation string

const (
	RelationImports    Relation = "imports"
	RelationCalls      Relation = "calls"
	RelationInherits   Relation = "inherits"
	RelationImplements Relation = "implements"
	RelationUses       Relation = "uses"
)

// ImportReference is the best-effort resolution of one import statement.
// TargetFile is either a project-relative path or, for bare specifiers that
// could not be resolved on disk, the package token itself.
type ImportReference struct {
	SourceFile    string
	TargetFile    string
	ImportedNames []string
	Line          int
	IsRelative    bool
}

// DependencyEdge links two symbols (and their files) in the dependency graph.
type DependencyEdge struct {
	SourceSymbolID string
	TargetSymbolID string
	Relation       Relation
	SourceFile     string
	TargetFile     string
	Line           int
}

// Validate checks the edge's relation and endpoints.
func (e *DependencyEdge) Validate() error {
	if e.SourceFile == "" || e.TargetFile == "" {
		return fmt.Errorf("dependency edge requires source and target files")
	}
	switch e.Relation {
	case RelationImports, RelationCalls, RelationInherits, RelationImplements, RelationUses:
		return nil
	default:
		return fmt.Errorf("invalid relation %q", e.Relation)
	}
}
