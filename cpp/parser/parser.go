// Package parser turns C-family source text into an arena-backed syntax tree
// suitable for completion queries. Parsing itself is delegated to the
// tolerant tree-sitter C++ grammar; the concrete syntax tree is lowered into
// a closed set of node kinds, with the declarations each scope introduces
// attached to the scope node.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Parse lowers source into a Tree. It never fails: on parser errors the
// result is a tree whose error regions are KindError nodes, and in the worst
// case a bare translation unit.
func Parse(source []byte) *Tree {
	t := &Tree{
		source: source,
		tokens: ScanAll(source),
		lines:  lineOffsets(source),
	}

	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	st, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil || st == nil {
		t.nodes = append(t.nodes, Node{
			Kind:     KindTranslationUnit,
			Parent:   NoNode,
			Object:   NoNode,
			Property: NoNode,
		})
		return t
	}
	defer st.Close()

	c := converter{tree: t, source: source}
	c.lower(st.RootNode(), NoNode)
	return t
}

type converter struct {
	tree   *Tree
	source []byte
}

func (c *converter) lower(n *sitter.Node, parent NodeID) NodeID {
	id := NodeID(len(c.tree.nodes))
	c.tree.nodes = append(c.tree.nodes, Node{
		Kind:     kindOf(n),
		Span:     c.spanOf(n),
		Parent:   parent,
		Object:   NoNode,
		Property: NoNode,
	})

	count := int(n.NamedChildCount())
	children := make([]NodeID, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, c.lower(n.NamedChild(i), id))
	}

	node := &c.tree.nodes[id]
	node.Children = children

	switch node.Kind {
	case KindIdentifier:
		node.Name = n.Content(c.source)
	case KindStructSpecifier:
		if name := n.ChildByFieldName("name"); name != nil {
			node.Name = name.Content(c.source)
		}
	case KindMemberExpression:
		node.Object = c.childID(n, children, "argument")
		node.Property = c.childID(n, children, "field")
	case KindTranslationUnit:
		node.Decls = c.topLevelDeclarations(n)
	case KindFunctionDefinition:
		node.Decls = c.parameterDeclarations(n)
	case KindBlock:
		node.Decls = c.blockDeclarations(n)
	}
	return id
}

// childID maps a tree-sitter field child back to the arena node lowered from
// it. Children are matched by byte range since lowering visits named children
// in order.
func (c *converter) childID(n *sitter.Node, children []NodeID, field string) NodeID {
	target := n.ChildByFieldName(field)
	if target == nil {
		return NoNode
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count && i < len(children); i++ {
		child := n.NamedChild(i)
		if child.StartByte() == target.StartByte() && child.EndByte() == target.EndByte() {
			return children[i]
		}
	}
	return NoNode
}

func (c *converter) spanOf(n *sitter.Node) Span {
	start, end := n.StartPoint(), n.EndPoint()
	return Span{
		Start: Position{
			Offset: int(n.StartByte()),
			Line:   int(start.Row) + 1,
			Column: int(start.Column),
		},
		End: Position{
			Offset: int(n.EndByte()),
			Line:   int(end.Row) + 1,
			Column: int(end.Column),
		},
	}
}

func kindOf(n *sitter.Node) NodeKind {
	switch n.Type() {
	case "translation_unit":
		return KindTranslationUnit
	case "function_definition":
		return KindFunctionDefinition
	case "compound_statement":
		return KindBlock
	case "declaration":
		return KindDeclaration
	case "struct_specifier", "class_specifier":
		return KindStructSpecifier
	case "field_expression":
		return KindMemberExpression
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier":
		return KindIdentifier
	case "ERROR":
		return KindError
	}
	t := n.Type()
	switch {
	case hasSuffix(t, "_expression"):
		return KindExpression
	case hasSuffix(t, "_statement"):
		return KindStatement
	}
	return KindOther
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// topLevelDeclarations collects the declarations visible in the file's
// outermost scope: global variables, struct and class definitions (including
// typedef'd and inline ones), and function definitions.
func (c *converter) topLevelDeclarations(unit *sitter.Node) []Declaration {
	var decls []Declaration
	count := int(unit.NamedChildCount())
	for i := 0; i < count; i++ {
		child := unit.NamedChild(i)
		switch child.Type() {
		case "declaration":
			decls = append(decls, c.variableDeclarations(child)...)
			decls = append(decls, c.inlineAggregates(child)...)
		case "struct_specifier", "class_specifier":
			if d, ok := c.aggregateDeclaration(child); ok {
				decls = append(decls, d)
			}
		case "type_definition":
			if d, ok := c.typedefDeclaration(child); ok {
				decls = append(decls, d)
			}
		case "function_definition":
			if d, ok := c.functionDeclaration(child); ok {
				decls = append(decls, d)
			}
		case "ERROR":
			// Error recovery sometimes swallows perfectly good
			// declarations into the error region; keep them visible.
			decls = append(decls, c.topLevelDeclarations(child)...)
		}
	}
	return decls
}

func (c *converter) blockDeclarations(block *sitter.Node) []Declaration {
	var decls []Declaration
	count := int(block.NamedChildCount())
	for i := 0; i < count; i++ {
		child := block.NamedChild(i)
		switch child.Type() {
		case "declaration":
			decls = append(decls, c.variableDeclarations(child)...)
			decls = append(decls, c.inlineAggregates(child)...)
		case "struct_specifier", "class_specifier":
			if d, ok := c.aggregateDeclaration(child); ok {
				decls = append(decls, d)
			}
		case "ERROR":
			decls = append(decls, c.blockDeclarations(child)...)
		}
	}
	return decls
}

func (c *converter) parameterDeclarations(fn *sitter.Node) []Declaration {
	declarator := fn.ChildByFieldName("declarator")
	for declarator != nil && declarator.Type() != "function_declarator" {
		declarator = declarator.ChildByFieldName("declarator")
	}
	if declarator == nil {
		return nil
	}
	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var decls []Declaration
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		param := params.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		name := c.declaratorName(param.ChildByFieldName("declarator"))
		if name == "" {
			continue
		}
		decls = append(decls, Declaration{
			Kind: DeclParameter,
			Name: name,
			Type: c.typeName(param.ChildByFieldName("type")),
		})
	}
	return decls
}

// variableDeclarations extracts the variables bound by one declaration node,
// e.g. both x and y from `int x, y = 2;`. Function prototypes show up as the
// same node shape and are recorded as function declarations.
func (c *converter) variableDeclarations(decl *sitter.Node) []Declaration {
	typeName := c.typeName(decl.ChildByFieldName("type"))
	var decls []Declaration
	count := int(decl.NamedChildCount())
	for i := 0; i < count; i++ {
		child := decl.NamedChild(i)
		d := child
		if d.Type() == "init_declarator" {
			d = d.ChildByFieldName("declarator")
			if d == nil {
				continue
			}
		}
		switch d.Type() {
		case "identifier", "pointer_declarator", "reference_declarator", "array_declarator":
			if name := c.declaratorName(d); name != "" {
				decls = append(decls, Declaration{Kind: DeclVariable, Name: name, Type: typeName})
			}
		case "function_declarator":
			if name := c.declaratorName(d); name != "" {
				decls = append(decls, Declaration{Kind: DeclFunction, Name: name, Type: typeName})
			}
		}
	}
	return decls
}

// inlineAggregates handles `struct Point { ... } p;`, where the aggregate
// definition hides inside the declaration's type slot.
func (c *converter) inlineAggregates(decl *sitter.Node) []Declaration {
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	switch typeNode.Type() {
	case "struct_specifier", "class_specifier":
		if d, ok := c.aggregateDeclaration(typeNode); ok {
			return []Declaration{d}
		}
	}
	return nil
}

func (c *converter) aggregateDeclaration(spec *sitter.Node) (Declaration, bool) {
	name := spec.ChildByFieldName("name")
	body := spec.ChildByFieldName("body")
	if name == nil || body == nil {
		// Forward declarations introduce no members.
		return Declaration{}, false
	}
	return Declaration{
		Kind:    DeclStructOrClass,
		Name:    name.Content(c.source),
		Members: c.aggregateMembers(body),
	}, true
}

func (c *converter) typedefDeclaration(def *sitter.Node) (Declaration, bool) {
	typeNode := def.ChildByFieldName("type")
	declarator := def.ChildByFieldName("declarator")
	if typeNode == nil || declarator == nil {
		return Declaration{}, false
	}
	switch typeNode.Type() {
	case "struct_specifier", "class_specifier":
	default:
		return Declaration{}, false
	}
	body := typeNode.ChildByFieldName("body")
	if body == nil {
		return Declaration{}, false
	}
	return Declaration{
		Kind:    DeclStructOrClass,
		Name:    declarator.Content(c.source),
		Members: c.aggregateMembers(body),
	}, true
}

func (c *converter) aggregateMembers(body *sitter.Node) []Member {
	var members []Member
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		field := body.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		typeName := c.typeName(field.ChildByFieldName("type"))
		fieldCount := int(field.NamedChildCount())
		for j := 0; j < fieldCount; j++ {
			d := field.NamedChild(j)
			switch d.Type() {
			case "field_identifier", "pointer_declarator", "reference_declarator", "array_declarator":
				if name := c.declaratorName(d); name != "" {
					members = append(members, Member{Name: name, Type: typeName})
				}
			}
		}
	}
	return members
}

func (c *converter) functionDeclaration(fn *sitter.Node) (Declaration, bool) {
	name := c.declaratorName(fn.ChildByFieldName("declarator"))
	if name == "" {
		return Declaration{}, false
	}
	return Declaration{
		Kind: DeclFunction,
		Name: name,
		Type: c.typeName(fn.ChildByFieldName("type")),
	}, true
}

// declaratorName digs through declarator wrappers (pointers, arrays,
// initializers, parameter lists) to the declared identifier.
func (c *converter) declaratorName(n *sitter.Node) string {
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "type_identifier":
			return n.Content(c.source)
		case "init_declarator", "pointer_declarator", "reference_declarator",
			"array_declarator", "parenthesized_declarator", "function_declarator":
			n = n.ChildByFieldName("declarator")
		default:
			return ""
		}
	}
	return ""
}

// typeName renders a type node as an opaque name. Aggregate specifiers use
// their tag so an inline body never leaks into the name.
func (c *converter) typeName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "struct_specifier", "class_specifier", "enum_specifier", "union_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(c.source)
		}
		return ""
	}
	return n.Content(c.source)
}
