package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// walkPython extracts definitions from a Python module or class body.
// parent carries the enclosing class or function name for nested
// definitions.
func (w *walker) walkPython(node *sitter.Node, parent string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			w.pythonFunction(child, parent)
		case "class_definition":
			w.pythonClass(child, parent)
		case "decorated_definition":
			// The decorator wrapper and the inner definition share one
			// logical symbol; descend so the span de-dup keys off the
			// inner node.
			if def := child.ChildByFieldName("definition"); def != nil {
				switch def.Type() {
				case "function_definition":
					w.pythonFunction(def, parent)
				case "class_definition":
					w.pythonClass(def, parent)
				}
			}
		case "import_statement":
			w.pythonImport(child)
		case "import_from_statement":
			w.pythonFromImport(child)
		case "expression_statement":
			if parent == "" {
				w.pythonAssignment(child)
			}
		case "if_statement", "try_statement":
			// Module-level guards (if TYPE_CHECKING, try/except imports)
			// still contain imports worth recording.
			w.pythonNestedImports(child)
		}
	}
}

// pythonFunction emits a function or method symbol and recurses for nested
// definitions.
func (w *walker) pythonFunction(node *sitter.Node, parent string) {
	name := w.content(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	kind := types.KindFunction
	if parent != "" {
		kind = types.KindMethod
	}
	w.add(node, types.RawSymbol{
		Name:      name,
		Kind:      kind,
		Signature: w.signature(node),
		Docstring: w.pythonDocstring(node),
		Exported:  !strings.HasPrefix(name, "_"),
		Parent:    parent,
	})
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkPython(body, name)
	}
}

// pythonClass emits a class symbol and walks its body for methods and
// nested classes.
func (w *walker) pythonClass(node *sitter.Node, parent string) {
	name := w.content(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	w.add(node, types.RawSymbol{
		Name:      name,
		Kind:      types.KindClass,
		Signature: w.signature(node),
		Docstring: w.pythonDocstring(node),
		Exported:  !strings.HasPrefix(name, "_"),
		Parent:    parent,
	})
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkPython(body, name)
	}
}

// pythonDocstring returns the leading string literal of a definition body,
// Python's docstring convention.
func (w *walker) pythonDocstring(node *sitter.Node) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	text := w.content(str)
	text = strings.Trim(text, "\"'")
	return strings.TrimSpace(text)
}

// pythonAssignment emits module-level variables bound by simple assignment.
func (w *walker) pythonAssignment(stmt *sitter.Node) {
	if stmt.NamedChildCount() == 0 {
		return
	}
	assign := stmt.NamedChild(0)
	if assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := w.content(left)
	w.add(assign, types.RawSymbol{
		Name:      name,
		Kind:      types.KindVariable,
		Signature: w.signature(assign),
		Exported:  !strings.HasPrefix(name, "_"),
	})
}

// pythonImport records `import a.b` statements. These are dotted module
// paths, treated as bare unless the resolver finds a matching file.
func (w *walker) pythonImport(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			w.imports = append(w.imports, types.RawImport{
				Specifier: w.content(child),
				Line:      int(node.StartPoint().Row) + 1,
			})
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				w.imports = append(w.imports, types.RawImport{
					Specifier: w.content(name),
					Line:      int(node.StartPoint().Row) + 1,
				})
			}
		}
	}
}

// pythonFromImport records `from x import y` statements, counting leading
// relative markers so the resolver can walk parent directories.
func (w *walker) pythonFromImport(node *sitter.Node) {
	imp := types.RawImport{Line: int(node.StartPoint().Row) + 1}

	module := node.ChildByFieldName("module_name")
	if module != nil {
		switch module.Type() {
		case "relative_import":
			text := w.content(module)
			imp.Dots = len(text) - len(strings.TrimLeft(text, "."))
			imp.Specifier = strings.TrimLeft(text, ".")
		case "dotted_name":
			imp.Specifier = w.content(module)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			imp.Names = append(imp.Names, w.content(child))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imp.Names = append(imp.Names, w.content(name))
			}
		case "wildcard_import":
			imp.Names = append(imp.Names, "*")
		}
	}

	w.imports = append(w.imports, imp)
}

// pythonNestedImports scans guarded blocks for import statements without
// emitting symbols for anything else inside them.
func (w *walker) pythonNestedImports(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			w.pythonImport(child)
		case "import_from_statement":
			w.pythonFromImport(child)
		case "block", "else_clause", "except_clause":
			w.pythonNestedImports(child)
		}
	}
}
