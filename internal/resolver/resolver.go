package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// scriptExtensions is the fixed priority order for resolving JS/TS relative
// specifiers: TypeScript sources win over JavaScript when both exist.
var scriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver turns raw import statements into best-effort import references.
// Resolution never fails: imports that cannot be located on disk degrade to
// a best-guess target or pass through as bare package tokens, which the
// graph still records as external nodes.
type Resolver struct {
	// ProjectRoot anchors on-disk existence checks. Empty disables them,
	// leaving resolution purely lexical.
	ProjectRoot string

	// Aliases maps path-alias patterns to targets (tsconfig-paths style).
	// Patterns may contain one "*" wildcard; the longest literal prefix
	// wins. Alias hits override relative resolution.
	Aliases map[string]string

	// GoModule is the local module path from go.mod. Go imports under it
	// resolve to project-relative directories; everything else is bare.
	GoModule string
}

// New creates a Resolver rooted at projectRoot.
func New(projectRoot string) *Resolver {
	return &Resolver{ProjectRoot: projectRoot}
}

// Resolve converts the raw imports of one file into import references.
func (r *Resolver) Resolve(sourceFile string, lang types.Language, imports []types.RawImport) []types.ImportReference {
	refs := make([]types.ImportReference, 0, len(imports))
	for _, imp := range imports {
		var ref types.ImportReference
		switch lang {
		case types.LangPython:
			ref = r.resolvePython(sourceFile, imp)
		case types.LangJavaScript:
			ref = r.resolveScript(sourceFile, imp, ".js")
		case types.LangTypeScript:
			ref = r.resolveScript(sourceFile, imp, ".ts")
		case types.LangGo:
			ref = r.resolveGo(sourceFile, imp)
		default:
			ref = bareReference(sourceFile, imp)
		}
		refs = append(refs, ref)
	}
	return refs
}

// resolvePython resolves Python imports. A from-import with N leading dots
// walks up N-1 parent directories from the importing file's directory, then
// descends any remaining dotted segments. A package-init file is preferred
// over a same-named module file; a relative import with no module name
// refers to the current directory's package-init file.
func (r *Resolver) resolvePython(sourceFile string, imp types.RawImport) types.ImportReference {
	if imp.Dots == 0 {
		// Absolute imports may still point into the project tree.
		if imp.Specifier != "" {
			rel := strings.ReplaceAll(imp.Specifier, ".", "/")
			if target, ok := r.findPythonModule(rel); ok {
				return types.ImportReference{
					SourceFile:    sourceFile,
					TargetFile:    target,
					ImportedNames: imp.Names,
					Line:          imp.Line,
				}
			}
		}
		return bareReference(sourceFile, imp)
	}

	dir := filepath.Dir(sourceFile)
	for i := 0; i < imp.Dots-1; i++ {
		dir = filepath.Dir(dir)
	}

	var target string
	if imp.Specifier == "" {
		target = filepath.Join(dir, "__init__.py")
	} else {
		rel := filepath.Join(dir, strings.ReplaceAll(imp.Specifier, ".", "/"))
		if found, ok := r.findPythonModule(rel); ok {
			target = found
		} else {
			target = rel + ".py"
		}
	}

	return types.ImportReference{
		SourceFile:    sourceFile,
		TargetFile:    filepath.ToSlash(target),
		ImportedNames: imp.Names,
		Line:          imp.Line,
		IsRelative:    true,
	}
}

// findPythonModule checks a candidate module path on disk, preferring the
// package-init file over a same-named module file when both could exist.
func (r *Resolver) findPythonModule(rel string) (string, bool) {
	if r.ProjectRoot == "" {
		return "", false
	}
	initFile := filepath.Join(rel, "__init__.py")
	if r.exists(initFile) {
		return filepath.ToSlash(initFile), true
	}
	modFile := rel + ".py"
	if r.exists(modFile) {
		return filepath.ToSlash(modFile), true
	}
	return "", false
}

// resolveScript resolves JS/TS specifiers. Relative specifiers try source
// extensions in priority order, then directory index files in the same
// order; the first on-disk match wins, else the default extension is
// assumed. Bare specifiers pass through unresolved.
func (r *Resolver) resolveScript(sourceFile string, imp types.RawImport, defaultExt string) types.ImportReference {
	spec := imp.Specifier

	if target, ok := r.expandAlias(spec); ok {
		spec = target
		if resolved, found := r.tryScriptPaths(spec); found {
			spec = resolved
		} else if filepath.Ext(spec) == "" {
			spec += defaultExt
		}
		return types.ImportReference{
			SourceFile:    sourceFile,
			TargetFile:    filepath.ToSlash(spec),
			ImportedNames: imp.Names,
			Line:          imp.Line,
			IsRelative:    true,
		}
	}

	if !strings.HasPrefix(spec, ".") {
		return bareReference(sourceFile, imp)
	}

	rel := filepath.Join(filepath.Dir(sourceFile), spec)
	target, found := r.tryScriptPaths(rel)
	if !found {
		if filepath.Ext(rel) != "" {
			target = rel
		} else {
			target = rel + defaultExt
		}
	}

	return types.ImportReference{
		SourceFile:    sourceFile,
		TargetFile:    filepath.ToSlash(target),
		ImportedNames: imp.Names,
		Line:          imp.Line,
		IsRelative:    true,
	}
}

// tryScriptPaths probes "<rel><ext>" for each extension, then
// "<rel>/index.<ext>" in the same order. First on-disk match wins.
func (r *Resolver) tryScriptPaths(rel string) (string, bool) {
	if r.ProjectRoot == "" {
		return "", false
	}
	if filepath.Ext(rel) != "" && r.exists(rel) {
		return filepath.ToSlash(rel), true
	}
	for _, ext := range scriptExtensions {
		candidate := rel + ext
		if r.exists(candidate) {
			return filepath.ToSlash(candidate), true
		}
	}
	for _, ext := range scriptExtensions {
		candidate := filepath.Join(rel, "index"+ext)
		if r.exists(candidate) {
			return filepath.ToSlash(candidate), true
		}
	}
	return "", false
}

// resolveGo maps imports under the local module path to project-relative
// directories; imports outside the module are external packages.
func (r *Resolver) resolveGo(sourceFile string, imp types.RawImport) types.ImportReference {
	if r.GoModule != "" && strings.HasPrefix(imp.Specifier, r.GoModule+"/") {
		rel := strings.TrimPrefix(imp.Specifier, r.GoModule+"/")
		return types.ImportReference{
			SourceFile:    sourceFile,
			TargetFile:    rel,
			ImportedNames: imp.Names,
			Line:          imp.Line,
			IsRelative:    true,
		}
	}
	return bareReference(sourceFile, imp)
}

// expandAlias applies the path-alias table: longest literal prefix wins,
// with a single "*" wildcard substituted through to the target.
func (r *Resolver) expandAlias(spec string) (string, bool) {
	bestLen := -1
	var bestTarget string
	for pattern, target := range r.Aliases {
		star := strings.IndexByte(pattern, '*')
		if star < 0 {
			if spec == pattern && len(pattern) > bestLen {
				bestLen = len(pattern)
				bestTarget = target
			}
			continue
		}
		prefix, suffix := pattern[:star], pattern[star+1:]
		if !strings.HasPrefix(spec, prefix) || !strings.HasSuffix(spec, suffix) {
			continue
		}
		if len(prefix) > bestLen {
			bestLen = len(prefix)
			wildcard := spec[len(prefix) : len(spec)-len(suffix)]
			bestTarget = strings.Replace(target, "*", wildcard, 1)
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return bestTarget, true
}

// bareReference records an unresolved specifier as an opaque external
// dependency.
func bareReference(sourceFile string, imp types.RawImport) types.ImportReference {
	return types.ImportReference{
		SourceFile:    sourceFile,
		TargetFile:    imp.Specifier,
		ImportedNames: imp.Names,
		Line:          imp.Line,
	}
}

// exists reports whether a project-relative path is present on disk.
func (r *Resolver) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(r.ProjectRoot, rel))
	return err == nil
}
