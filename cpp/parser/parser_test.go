package parser

import "testing"

const pointSource = `struct Point {
  int x;
  int y;
};
Point origin;
int scale(Point p, int factor) {
  int result;
  result.
}
`

func findDecl(decls []Declaration, name string) *Declaration {
	for i := range decls {
		if decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

func TestRootDeclarations(t *testing.T) {
	tree := Parse([]byte(pointSource))

	decls := tree.RootDeclarations()
	point := findDecl(decls, "Point")
	if point == nil {
		t.Fatalf("no declaration for Point in %v", decls)
	}
	if point.Kind != DeclStructOrClass {
		t.Errorf("Point kind = %v, want DeclStructOrClass", point.Kind)
	}
	if len(point.Members) != 2 || point.Members[0].Name != "x" || point.Members[1].Name != "y" {
		t.Errorf("Point members = %v, want x, y", point.Members)
	}
	if point.Members[0].Type != "int" {
		t.Errorf("member x type = %q, want int", point.Members[0].Type)
	}

	origin := findDecl(decls, "origin")
	if origin == nil {
		t.Fatalf("no declaration for origin in %v", decls)
	}
	if origin.Kind != DeclVariable || origin.Type != "Point" {
		t.Errorf("origin = %+v, want variable of type Point", origin)
	}

	scale := findDecl(decls, "scale")
	if scale == nil || scale.Kind != DeclFunction {
		t.Errorf("scale = %+v, want function declaration", scale)
	}
}

func TestFunctionParameterDeclarations(t *testing.T) {
	tree := Parse([]byte(pointSource))

	var fn NodeID = NoNode
	for id := range tree.nodes {
		if tree.nodes[id].Kind == KindFunctionDefinition {
			fn = NodeID(id)
			break
		}
	}
	if fn == NoNode {
		t.Fatal("no function definition node")
	}
	decls := tree.Node(fn).Decls
	p := findDecl(decls, "p")
	if p == nil || p.Kind != DeclParameter || p.Type != "Point" {
		t.Errorf("parameter p = %+v, want Point parameter", p)
	}
	factor := findDecl(decls, "factor")
	if factor == nil || factor.Type != "int" {
		t.Errorf("parameter factor = %+v, want int parameter", factor)
	}
}

func TestBlockDeclarations(t *testing.T) {
	tree := Parse([]byte(pointSource))

	var block NodeID = NoNode
	for id := range tree.nodes {
		if tree.nodes[id].Kind == KindBlock {
			block = NodeID(id)
			break
		}
	}
	if block == NoNode {
		t.Fatal("no block node")
	}
	result := findDecl(tree.Node(block).Decls, "result")
	if result == nil || result.Kind != DeclVariable || result.Type != "int" {
		t.Errorf("result = %+v, want int variable", result)
	}
}

func TestNodeAt(t *testing.T) {
	tree := Parse([]byte(pointSource))

	// Line 7 is "  int result;"; column 6 is inside "result".
	id := tree.NodeAt(Position{Line: 7, Column: 6})
	if id == NoNode {
		t.Fatal("no node at 7:6")
	}
	n := tree.Node(id)
	if n.Kind != KindIdentifier || n.Name != "result" {
		t.Errorf("node at 7:6 = %s %q, want Identifier result", n.Kind, n.Name)
	}
	if n.Parent == NoNode {
		t.Error("identifier has no parent")
	}

	if got := tree.NodeAt(Position{Line: 99, Column: 0}); got != NoNode {
		t.Errorf("NodeAt outside text = %v, want NoNode", got)
	}
}

func TestTokenAtDot(t *testing.T) {
	tree := Parse([]byte(pointSource))

	// Line 8 is "  result."; the dot is at column 8.
	tok := tree.TokenAt(Position{Line: 8, Column: 8})
	if tok == nil {
		t.Fatal("no token at 8:8")
	}
	if !tok.IsMemberAccessOperator() {
		t.Errorf("token at 8:8 = %s %q, want member access operator", tok.Kind, tok.Literal)
	}

	before := tree.TokenBefore(tok)
	if before == nil || before.Kind != TokenIdent || before.Literal != "result" {
		t.Errorf("token before dot = %+v, want identifier result", before)
	}
}

func TestTypedefStruct(t *testing.T) {
	source := `typedef struct {
  int width;
  int height;
} Size;
`
	tree := Parse([]byte(source))
	size := findDecl(tree.RootDeclarations(), "Size")
	if size == nil || size.Kind != DeclStructOrClass {
		t.Fatalf("Size = %+v, want struct declaration", size)
	}
	if len(size.Members) != 2 || size.Members[0].Name != "width" {
		t.Errorf("Size members = %v, want width, height", size.Members)
	}
}

func TestInlineAggregateWithVariable(t *testing.T) {
	source := "struct Point { int x; int y; } p;\n"
	tree := Parse([]byte(source))
	decls := tree.RootDeclarations()

	p := findDecl(decls, "p")
	if p == nil || p.Kind != DeclVariable || p.Type != "Point" {
		t.Errorf("p = %+v, want Point variable", p)
	}
	point := findDecl(decls, "Point")
	if point == nil || len(point.Members) != 2 {
		t.Errorf("Point = %+v, want struct with 2 members", point)
	}
}

func TestMultipleDeclarators(t *testing.T) {
	tree := Parse([]byte("int x, y = 2, *z;\n"))
	decls := tree.RootDeclarations()
	for _, name := range []string{"x", "y", "z"} {
		d := findDecl(decls, name)
		if d == nil || d.Kind != DeclVariable || d.Type != "int" {
			t.Errorf("%s = %+v, want int variable", name, d)
		}
	}
}

func TestParseNeverFailsOnIncompleteSource(t *testing.T) {
	sources := []string{
		"",
		"struct Point { int x;",
		"int f( {",
		"#}{ ;;; \x00",
		"struct Point { int x; int y; };\nPoint p;\np.",
	}
	for _, source := range sources {
		tree := Parse([]byte(source))
		if tree == nil || tree.Root() == NoNode {
			t.Errorf("Parse(%q) produced no tree", source)
		}
	}
}

func TestIncompleteSourceKeepsGoodDeclarations(t *testing.T) {
	source := "struct Point { int x; int y; };\nPoint p;\np."
	tree := Parse([]byte(source))
	decls := tree.RootDeclarations()
	if findDecl(decls, "Point") == nil {
		t.Errorf("Point lost on incomplete source: %v", decls)
	}
	if findDecl(decls, "p") == nil {
		t.Errorf("p lost on incomplete source: %v", decls)
	}
}
