package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// walkGo extracts top-level Go declarations. Go nests nothing the symbol
// model cares about, so the walk stays at source_file children.
func (w *walker) walkGo(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "function_declaration":
			name := w.content(node.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			w.add(node, types.RawSymbol{
				Name:      name,
				Kind:      types.KindFunction,
				Signature: w.signature(node),
				Docstring: w.leadingComment(node),
				Exported:  goExported(name),
			})

		case "method_declaration":
			name := w.content(node.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			w.add(node, types.RawSymbol{
				Name:      name,
				Kind:      types.KindMethod,
				Signature: w.signature(node),
				Docstring: w.leadingComment(node),
				Exported:  goExported(name),
				Parent:    goReceiverType(w, node),
			})

		case "type_declaration":
			w.goTypeSpecs(node)

		case "const_declaration", "var_declaration":
			w.goValueSpecs(node)

		case "import_declaration":
			w.goImports(node)
		}
	}
}

// goTypeSpecs emits one symbol per type_spec inside a type declaration,
// classifying struct types as classes and interface types as interfaces.
func (w *walker) goTypeSpecs(decl *sitter.Node) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		spec := decl.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		name := w.content(spec.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		kind := types.KindType
		if t := spec.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_type":
				kind = types.KindClass
			case "interface_type":
				kind = types.KindInterface
			}
		}
		doc := w.leadingComment(decl)
		w.add(spec, types.RawSymbol{
			Name:      name,
			Kind:      kind,
			Signature: w.signature(spec),
			Docstring: doc,
			Exported:  goExported(name),
		})
	}
}

// goValueSpecs emits variable symbols for const and var specs. Grouped
// declarations yield one symbol per named identifier.
func (w *walker) goValueSpecs(decl *sitter.Node) {
	var specs []*sitter.Node
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "const_spec", "var_spec":
			specs = append(specs, child)
		}
	}
	for _, spec := range specs {
		for j := 0; j < int(spec.NamedChildCount()); j++ {
			ident := spec.NamedChild(j)
			if ident.Type() != "identifier" {
				continue
			}
			name := w.content(ident)
			w.add(ident, types.RawSymbol{
				Name:      name,
				Kind:      types.KindVariable,
				Signature: w.signature(spec),
				Exported:  goExported(name),
			})
		}
	}
}

// goImports records import specs. Go import paths are bare module paths;
// resolution against the local module happens in the resolver.
func (w *walker) goImports(decl *sitter.Node) {
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "import_spec":
				path := child.ChildByFieldName("path")
				if path == nil {
					continue
				}
				w.imports = append(w.imports, types.RawImport{
					Specifier: w.stringLiteral(path),
					Line:      int(child.StartPoint().Row) + 1,
				})
			case "import_spec_list":
				visit(child)
			}
		}
	}
	visit(decl)
}

// goReceiverType extracts the receiver's base type name from a method
// declaration, stripping any pointer or generic decoration.
func goReceiverType(w *walker, node *sitter.Node) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := w.content(recv)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

// goExported reports Go's leading-uppercase export rule.
func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
