package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// walkScript extracts definitions from JavaScript and TypeScript programs.
// The two grammars share most node types; ts gates the TypeScript-only
// constructs (interfaces, type aliases, enums, accessibility modifiers).
func (w *walker) walkScript(node *sitter.Node, parent string, ts bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		w.scriptNode(child, parent, ts, false)
	}
}

// scriptNode dispatches one statement-level node. exported marks nodes
// reached through an export_statement wrapper.
func (w *walker) scriptNode(node *sitter.Node, parent string, ts, exported bool) {
	switch node.Type() {
	case "export_statement":
		// The wrapper is the export rule for JS/TS: everything declared
		// under it is visible outside the module.
		for i := 0; i < int(node.NamedChildCount()); i++ {
			w.scriptNode(node.NamedChild(i), parent, ts, true)
		}
		if src := node.ChildByFieldName("source"); src != nil {
			// export { X } from './other' is a re-export, records an import.
			w.imports = append(w.imports, types.RawImport{
				Specifier: w.stringLiteral(src),
				Line:      int(node.StartPoint().Row) + 1,
			})
		}

	case "import_statement":
		w.scriptImport(node)

	case "function_declaration", "generator_function_declaration":
		name := w.content(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		w.add(node, types.RawSymbol{
			Name:      name,
			Kind:      types.KindFunction,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})

	case "class_declaration", "abstract_class_declaration":
		name := w.content(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		w.add(node, types.RawSymbol{
			Name:      name,
			Kind:      types.KindClass,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})
		if body := node.ChildByFieldName("body"); body != nil {
			w.scriptClassBody(body, name, ts)
		}

	case "interface_declaration":
		if !ts {
			return
		}
		name := w.content(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		w.add(node, types.RawSymbol{
			Name:      name,
			Kind:      types.KindInterface,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})

	case "type_alias_declaration":
		if !ts {
			return
		}
		name := w.content(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		w.add(node, types.RawSymbol{
			Name:      name,
			Kind:      types.KindType,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})

	case "enum_declaration":
		if !ts {
			return
		}
		name := w.content(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		w.add(node, types.RawSymbol{
			Name:      name,
			Kind:      types.KindEnum,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})

	case "lexical_declaration", "variable_declaration":
		w.scriptVariables(node, parent, exported)

	case "ambient_declaration":
		// declare const x: ... wraps a normal declaration.
		for i := 0; i < int(node.NamedChildCount()); i++ {
			w.scriptNode(node.NamedChild(i), parent, ts, exported)
		}
	}
}

// scriptVariables emits one symbol per declarator. Arrow functions and
// function expressions assigned to a binding count as functions.
func (w *walker) scriptVariables(node *sitter.Node, parent string, exported bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		kind := types.KindVariable
		if value := decl.ChildByFieldName("value"); value != nil {
			switch value.Type() {
			case "arrow_function", "function", "function_expression", "generator_function":
				kind = types.KindFunction
			}
		}
		w.add(decl, types.RawSymbol{
			Name:      w.content(nameNode),
			Kind:      kind,
			Signature: w.signature(node),
			Docstring: w.leadingComment(node),
			Exported:  exported,
			Parent:    parent,
		})
	}
}

// scriptClassBody emits methods and fields declared inside a class body.
// TypeScript members are public unless marked private/protected or named
// with a # private field; the class itself carries module visibility.
func (w *walker) scriptClassBody(body *sitter.Node, className string, ts bool) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			name := w.content(member.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			w.add(member, types.RawSymbol{
				Name:      name,
				Kind:      types.KindMethod,
				Signature: w.signature(member),
				Docstring: w.leadingComment(member),
				Exported:  scriptMemberVisible(w, member, name, ts),
				Parent:    className,
			})
		case "public_field_definition":
			name := w.content(member.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			w.add(member, types.RawSymbol{
				Name:      name,
				Kind:      types.KindVariable,
				Signature: w.signature(member),
				Exported:  scriptMemberVisible(w, member, name, ts),
				Parent:    className,
			})
		}
	}
}

// scriptMemberVisible applies the class-member visibility rule: private
// fields (#name) are never visible; TypeScript accessibility modifiers
// private and protected hide a member, anything else is public.
func scriptMemberVisible(w *walker, member *sitter.Node, name string, ts bool) bool {
	if strings.HasPrefix(name, "#") {
		return false
	}
	if !ts {
		return true
	}
	for i := 0; i < int(member.ChildCount()); i++ {
		child := member.Child(i)
		if child.Type() == "accessibility_modifier" {
			switch w.content(child) {
			case "private", "protected":
				return false
			}
		}
	}
	return true
}

// scriptImport records an ES import statement with its named bindings.
func (w *walker) scriptImport(node *sitter.Node) {
	src := node.ChildByFieldName("source")
	if src == nil {
		return
	}
	imp := types.RawImport{
		Specifier: w.stringLiteral(src),
		Line:      int(node.StartPoint().Row) + 1,
	}

	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "identifier":
				imp.Names = append(imp.Names, w.content(child))
			case "import_specifier":
				if name := child.ChildByFieldName("name"); name != nil {
					imp.Names = append(imp.Names, w.content(name))
				}
			case "import_clause", "named_imports", "namespace_import":
				collect(child)
			}
		}
	}
	collect(node)

	w.imports = append(w.imports, imp)
}
