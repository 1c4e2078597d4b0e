// Package constraints implements C4 (Constraint Engine): AST-based validation of generated Python
// source against the seven fixed walkers (spec §4.4).
package constraints

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Param is one function parameter.
type Param struct {
	Name        string
	TypeHint    string
	HasHint     bool
	HasDefault  bool
	DefaultKind string // tree-sitter node type of the default value expression, when HasDefault
	IsStar      bool   // *args / **kwargs
}

// IsMutableDefault reports whether this parameter's default value is a bare mutable literal
// (list/dict/set), the classic Python footgun spec §4.4 walker 2 forbids.
func (p Param) IsMutableDefault() bool {
	switch p.DefaultKind {
	case "list", "dictionary", "set":
		return true
	default:
		return false
	}
}

// Function is a module-level function or class method.
type Function struct {
	Name          string
	Params        []Param
	ReturnHint    string
	HasReturnHint bool
	Decorators    []string
	IsAsync       bool
	StartLine     int
	EndLine       int
	Body          string
	IsMethod      bool
	ClassName     string
}

// Class is a module-level class definition.
type Class struct {
	Name       string
	Bases      []string
	Decorators []string
	StartLine  int
	EndLine    int
	Methods    []Function
}

// Import is one module-level import statement.
type Import struct {
	Module   string // dotted module path
	Names    []string
	IsFrom   bool
	RawLine  string
}

// Module is the simplified CST a Walker inspects. Grounded on internal/world/python_parser.go's
// CodeElement extraction, reshaped from a flat element list into a class/function tree since the
// seven walkers need per-class and per-function structure, not a flat ref index.
type Module struct {
	Imports     []Import
	Classes     []Class
	Functions   []Function
	Assignments []Assignment
	Source      string
	LineCount   int
	HasError    bool
}

// Assignment is one module-level (top-level, not inside any function or class) name binding.
type Assignment struct {
	Name      string
	ValueKind string // tree-sitter node type of the assigned expression
	Line      int
}

// IsMutableLiteral reports whether this assignment's right-hand side is a bare mutable literal
// (list/dict/set), the shape walk_di.go's module-level-state check flags.
func (a Assignment) IsMutableLiteral() bool {
	switch a.ValueKind {
	case "list", "dictionary", "set":
		return true
	default:
		return false
	}
}

var parserLanguage = python.GetLanguage()

// ParseModule parses Python source into a Module. A tree-sitter syntax error produces a best-
// effort Module rather than failing outright — tree-sitter is an error-tolerant parser and the
// walkers are robust to partially-recognised trees, matching spec §4.4's SYNTAX_ERROR handling
// (the engine decides whether to surface a violation; the parser itself never refuses input).
func ParseModule(content []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(parserLanguage)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	mod := &Module{Source: string(content), LineCount: strings.Count(string(content), "\n") + 1}
	root := tree.RootNode()
	mod.HasError = root.HasError()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		walkTopLevel(root.NamedChild(i), content, mod)
	}
	return mod, nil
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func walkTopLevel(node *sitter.Node, content []byte, mod *Module) {
	switch node.Type() {
	case "import_statement", "import_from_statement":
		mod.Imports = append(mod.Imports, parseImport(node, content))
	case "expression_statement":
		if a, ok := parseModuleAssignment(node, content); ok {
			mod.Assignments = append(mod.Assignments, a)
		}
	case "function_definition":
		mod.Functions = append(mod.Functions, parseFunction(node, content, nil))
	case "class_definition":
		mod.Classes = append(mod.Classes, parseClass(node, content))
	case "decorated_definition":
		decorators := collectDecorators(node, content)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			inner := node.NamedChild(i)
			switch inner.Type() {
			case "function_definition":
				fn := parseFunction(inner, content, nil)
				fn.Decorators = decorators
				fn.StartLine = int(node.StartPoint().Row) + 1
				mod.Functions = append(mod.Functions, fn)
			case "class_definition":
				cls := parseClass(inner, content)
				cls.Decorators = decorators
				cls.StartLine = int(node.StartPoint().Row) + 1
				mod.Classes = append(mod.Classes, cls)
			}
		}
	}
}

// parseModuleAssignment recognises a top-level "name = value" statement, the shape a bare
// mutable module-level default (e.g. a list or dict literal bound at import time) takes.
func parseModuleAssignment(node *sitter.Node, content []byte) (Assignment, bool) {
	if node.NamedChildCount() == 0 {
		return Assignment{}, false
	}
	child := node.NamedChild(0)
	if child.Type() != "assignment" {
		return Assignment{}, false
	}
	left := child.ChildByFieldName("left")
	right := child.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return Assignment{}, false
	}
	return Assignment{
		Name:      nodeText(left, content),
		ValueKind: right.Type(),
		Line:      int(node.StartPoint().Row) + 1,
	}, true
}

func collectDecorators(decorated *sitter.Node, content []byte) []string {
	var decorators []string
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		child := decorated.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(nodeText(child, content), "@"))
		if idx := strings.Index(text, "("); idx >= 0 {
			text = text[:idx]
		}
		decorators = append(decorators, strings.TrimSpace(text))
	}
	return decorators
}

func parseImport(node *sitter.Node, content []byte) Import {
	imp := Import{IsFrom: node.Type() == "import_from_statement", RawLine: strings.TrimSpace(nodeText(node, content))}
	if imp.IsFrom {
		if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
			imp.Module = nodeText(moduleNode, content)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "dotted_name" || child.Type() == "identifier" {
				name := nodeText(child, content)
				if name != imp.Module {
					imp.Names = append(imp.Names, name)
				}
			}
			if child.Type() == "aliased_import" {
				if n := child.ChildByFieldName("name"); n != nil {
					imp.Names = append(imp.Names, nodeText(n, content))
				}
			}
		}
		return imp
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name", "identifier":
			imp.Module = nodeText(child, content)
			imp.Names = append(imp.Names, imp.Module)
		case "aliased_import":
			if n := child.ChildByFieldName("name"); n != nil {
				imp.Module = nodeText(n, content)
				imp.Names = append(imp.Names, imp.Module)
			}
		}
	}
	return imp
}

func parseFunction(node *sitter.Node, content []byte, classNode *sitter.Node) Function {
	fn := Function{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Body:      nodeText(node, content),
		IsMethod:  classNode != nil,
	}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = nodeText(nameNode, content)
	}
	// tree-sitter-python exposes "async" as the function_definition's first (unnamed) child
	// rather than a field, so check the raw signature line instead.
	fn.IsAsync = strings.HasPrefix(strings.TrimSpace(nodeText(node, content)), "async ")

	if retNode := node.ChildByFieldName("return_type"); retNode != nil {
		fn.ReturnHint = nodeText(retNode, content)
		fn.HasReturnHint = true
	}

	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
			fn.Params = append(fn.Params, parseParam(paramsNode.NamedChild(i), content))
		}
	}
	return fn
}

func parseParam(node *sitter.Node, content []byte) Param {
	p := Param{}
	switch node.Type() {
	case "identifier":
		p.Name = nodeText(node, content)
	case "typed_parameter":
		if n := node.NamedChild(0); n != nil {
			p.Name = nodeText(n, content)
		}
		if t := node.ChildByFieldName("type"); t != nil {
			p.TypeHint = nodeText(t, content)
			p.HasHint = true
		}
	case "default_parameter":
		if n := node.ChildByFieldName("name"); n != nil {
			p.Name = nodeText(n, content)
		}
		p.HasDefault = true
		if v := node.ChildByFieldName("value"); v != nil {
			p.DefaultKind = v.Type()
		}
	case "typed_default_parameter":
		if n := node.ChildByFieldName("name"); n != nil {
			p.Name = nodeText(n, content)
		}
		if t := node.ChildByFieldName("type"); t != nil {
			p.TypeHint = nodeText(t, content)
			p.HasHint = true
		}
		p.HasDefault = true
		if v := node.ChildByFieldName("value"); v != nil {
			p.DefaultKind = v.Type()
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		p.Name = strings.TrimLeft(nodeText(node, content), "*")
		p.IsStar = true
	default:
		p.Name = nodeText(node, content)
	}
	return p
}

func parseClass(node *sitter.Node, content []byte) Class {
	cls := Class{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		cls.Name = nodeText(nameNode, content)
	}
	if superNode := node.ChildByFieldName("superclasses"); superNode != nil {
		for i := 0; i < int(superNode.NamedChildCount()); i++ {
			cls.Bases = append(cls.Bases, nodeText(superNode.NamedChild(i), content))
		}
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			fn := parseFunction(child, content, node)
			fn.ClassName = cls.Name
			cls.Methods = append(cls.Methods, fn)
		case "decorated_definition":
			decorators := collectDecorators(child, content)
			for j := 0; j < int(child.NamedChildCount()); j++ {
				inner := child.NamedChild(j)
				if inner.Type() == "function_definition" {
					fn := parseFunction(inner, content, node)
					fn.ClassName = cls.Name
					fn.Decorators = decorators
					fn.StartLine = int(child.StartPoint().Row) + 1
					cls.Methods = append(cls.Methods, fn)
				}
			}
		}
	}
	return cls
}

// AllFunctions returns every module-level function plus every method of every class, the flat
// view most walkers operate over.
func (m *Module) AllFunctions() []Function {
	all := make([]Function, 0, len(m.Functions))
	all = append(all, m.Functions...)
	for _, c := range m.Classes {
		all = append(all, c.Methods...)
	}
	return all
}
