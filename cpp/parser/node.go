package parser

import "strings"

// NodeKind is a closed set of syntax-node variants. Every site that inspects
// a node switches over this enum; there are no casts to get wrong.
type NodeKind int

const (
	KindError NodeKind = iota
	KindTranslationUnit
	KindFunctionDefinition
	KindBlock
	KindDeclaration
	KindStructSpecifier
	KindMemberExpression
	KindIdentifier
	KindExpression
	KindStatement
	KindOther
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindTranslationUnit:    "TranslationUnit",
	KindFunctionDefinition: "FunctionDefinition",
	KindBlock:              "Block",
	KindDeclaration:        "Declaration",
	KindStructSpecifier:    "StructSpecifier",
	KindMemberExpression:   "MemberExpression",
	KindIdentifier:         "Identifier",
	KindExpression:         "Expression",
	KindStatement:          "Statement",
	KindOther:              "Other",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclParameter
	DeclStructOrClass
	DeclFunction
)

// Declaration is a named binding introduced by a scope node. Variables and
// parameters carry their declared type name; struct and class declarations
// carry their members in declaration order.
type Declaration struct {
	Kind    DeclKind
	Name    string
	Type    string
	Members []Member
}

func (d Declaration) IsVariableOrParameter() bool {
	return d.Kind == DeclVariable || d.Kind == DeclParameter
}

type Member struct {
	Name string
	Type string
}

// NodeID addresses a node in its Tree's arena. The arena owns all nodes;
// parent links are indices, so the tree can be walked upward without
// ownership cycles.
type NodeID int32

const NoNode NodeID = -1

type Node struct {
	Kind     NodeKind
	Span     Span
	Parent   NodeID
	Children []NodeID

	// Name is the identifier text for KindIdentifier nodes and the type
	// name for KindStructSpecifier nodes.
	Name string

	// Object and Property are set for KindMemberExpression nodes and
	// NoNode everywhere else.
	Object   NodeID
	Property NodeID

	// Decls are the declarations this node directly introduces: locals for
	// blocks, parameters for function definitions, top-level declarations
	// for the translation unit. Empty for everything else.
	Decls []Declaration
}

// Tree is an arena-backed syntax tree over one processed source text,
// together with the flat token stream of that text.
type Tree struct {
	source []byte
	nodes  []Node
	tokens []Token
	lines  []int
}

func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// RootDeclarations returns the declarations of the translation unit's
// top-level scope.
func (t *Tree) RootDeclarations() []Declaration {
	root := t.Root()
	if root == NoNode {
		return nil
	}
	return t.nodes[root].Decls
}

// TextOf returns the source text covered by a node.
func (t *Tree) TextOf(id NodeID) string {
	n := &t.nodes[id]
	start, end := n.Span.Start.Offset, n.Span.End.Offset
	if start < 0 || end > len(t.source) || start > end {
		return ""
	}
	return string(t.source[start:end])
}

// OffsetOf converts a position to a byte offset, or -1 when the position is
// outside the text.
func (t *Tree) OffsetOf(pos Position) int {
	if pos.Line < 1 || pos.Line > len(t.lines) || pos.Column < 0 {
		return -1
	}
	offset := t.lines[pos.Line-1] + pos.Column
	lineEnd := len(t.source)
	if pos.Line < len(t.lines) {
		lineEnd = t.lines[pos.Line] - 1
	}
	if offset > lineEnd {
		return -1
	}
	return offset
}

// NodeAt returns the innermost node covering the position, or NoNode when
// the position falls outside the tree.
func (t *Tree) NodeAt(pos Position) NodeID {
	offset := t.OffsetOf(pos)
	if offset < 0 {
		return NoNode
	}
	id := t.Root()
	if id == NoNode || !t.nodes[id].Span.Contains(offset) {
		return NoNode
	}
	for {
		inner := NoNode
		for _, child := range t.nodes[id].Children {
			if t.nodes[child].Span.Contains(offset) {
				inner = child
				break
			}
		}
		if inner == NoNode {
			return id
		}
		id = inner
	}
}

// TokenAt returns the token covering the position, or nil.
func (t *Tree) TokenAt(pos Position) *Token {
	offset := t.OffsetOf(pos)
	if offset < 0 {
		return nil
	}
	for i := range t.tokens {
		if t.tokens[i].Span.Contains(offset) {
			return &t.tokens[i]
		}
	}
	return nil
}

// TokenBefore returns the last token ending at or before the start of tok,
// or nil.
func (t *Tree) TokenBefore(tok *Token) *Token {
	var previous *Token
	for i := range t.tokens {
		if t.tokens[i].Span.End.Offset > tok.Span.Start.Offset {
			break
		}
		previous = &t.tokens[i]
	}
	return previous
}

func (t *Tree) String() string {
	root := t.Root()
	if root == NoNode {
		return ""
	}
	var sb strings.Builder
	t.dump(&sb, root, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id NodeID, indent int) {
	n := &t.nodes[id]
	for i := 0; i < indent; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(n.Kind.String())
	if n.Name != "" {
		sb.WriteString(" " + n.Name)
	}
	sb.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	for _, d := range n.Decls {
		sb.WriteString(" {" + d.Name + "}")
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		t.dump(sb, child, indent+1)
	}
}

func lineOffsets(source []byte) []int {
	offsets := []int{0}
	for i, ch := range source {
		if ch == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
