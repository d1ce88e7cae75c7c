package codebase

import (
	"fmt"
	"strings"

	"github.com/dhamidi/csense/cpp/parser"
)

type EntryKind int

const (
	EntryIdentifier EntryKind = iota
	EntryProperty
)

func (k EntryKind) String() string {
	switch k {
	case EntryIdentifier:
		return "identifier"
	case EntryProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Entry is one completion suggestion. ReplaceLength is how many characters
// of already-typed text the suggestion replaces.
type Entry struct {
	Text          string    `json:"text"`
	ReplaceLength int       `json:"replace_length"`
	Kind          EntryKind `json:"kind"`
}

// Property is a name/type view over one aggregate member.
type Property struct {
	Name string
	Type string
}

// GetSuggestions returns completion candidates for the cursor position in
// file. Lines are 1-based; column is the 1-based count of characters left of
// the cursor and must be greater than zero. Not finding anything to suggest
// is an empty result, not an error.
func (c *Codebase) GetSuggestions(file string, line, column int) ([]Entry, error) {
	if column <= 0 {
		return nil, ErrBadPosition
	}
	// The cursor sits after the column-th character; reason about the
	// character it is logically over.
	pos := parser.Position{Line: line, Column: column - 1}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.getOrCreateLocked(file)
	if err != nil {
		return nil, err
	}

	id := doc.Tree.NodeAt(pos)
	if id == parser.NoNode {
		log.Debugf("no node at %s in %s", pos, doc.Path)
		return nil, nil
	}

	node := doc.Tree.Node(id)
	if node.Kind != parser.KindIdentifier {
		if c.isEmptyProperty(doc, id, pos) {
			return c.completeProperty(doc, id, "")
		}
		if entries, ok := c.completeDanglingAccess(doc, id, pos); ok {
			return entries, nil
		}
		return nil, nil
	}

	if parent, ok := propertySlot(doc.Tree, id); ok {
		return c.completeProperty(doc, parent, doc.Tree.TextOf(id))
	}
	return c.completeIdentifier(doc, id), nil
}

// isEmptyProperty reports whether the cursor sits right after a member
// access operator with nothing typed yet: the node under the cursor is the
// member expression itself and the token under the cursor is `.` or `->`.
func (c *Codebase) isEmptyProperty(doc *Document, id parser.NodeID, pos parser.Position) bool {
	if doc.Tree.Node(id).Kind != parser.KindMemberExpression {
		return false
	}
	tok := doc.Tree.TokenAt(pos)
	return tok != nil && tok.IsMemberAccessOperator()
}

// completeDanglingAccess covers member access the parser could not recover
// into a member expression (e.g. `p.` as the last thing in the file): when
// the token stream ends in an access chain like `a.b->c.` at the cursor,
// resolve the chain head through the scope walk and each link through the
// member catalog, then complete the members of the resulting type.
func (c *Codebase) completeDanglingAccess(doc *Document, id parser.NodeID, pos parser.Position) ([]Entry, bool) {
	tok := doc.Tree.TokenAt(pos)
	if tok == nil || !tok.IsMemberAccessOperator() {
		return nil, false
	}

	// Walk the token stream backwards collecting identifier names while
	// the tokens keep alternating identifier / access operator.
	var chain []string
	for current := tok; current != nil && current.IsMemberAccessOperator(); {
		object := doc.Tree.TokenBefore(current)
		if object == nil || object.Kind != parser.TokenIdent {
			break
		}
		chain = append([]string{object.Literal}, chain...)
		current = doc.Tree.TokenBefore(object)
	}
	if len(chain) == 0 {
		return nil, false
	}

	typeName := typeOfName(doc.Tree, id, chain[0])
	for _, member := range chain[1:] {
		if typeName == "" {
			break
		}
		typeName = c.memberType(doc, typeName, member)
	}
	if typeName == "" {
		log.Debugf("could not infer type of dangling access %v", chain)
		return nil, true
	}
	return filterPrefix(c.propertyNames(doc, typeName), "", EntryProperty), true
}

// memberType returns the declared type of a member within typeName, or "".
func (c *Codebase) memberType(doc *Document, typeName, member string) string {
	for _, prop := range c.propertiesOf(doc, typeName) {
		if prop.Name == member {
			return prop.Type
		}
	}
	return ""
}

// propertySlot reports whether id is the property of a member expression and
// returns that member expression.
func propertySlot(tree *parser.Tree, id parser.NodeID) (parser.NodeID, bool) {
	parent := tree.Node(id).Parent
	if parent == parser.NoNode {
		return parser.NoNode, false
	}
	p := tree.Node(parent)
	if p.Kind != parser.KindMemberExpression || p.Property != id {
		return parser.NoNode, false
	}
	return parent, true
}

// completeIdentifier suggests every variable or parameter visible from the
// identifier's scope chain, innermost scope first. The first declaration of
// a name wins, which is exactly shadowing.
func (c *Codebase) completeIdentifier(doc *Document, id parser.NodeID) []Entry {
	tree := doc.Tree
	var names []string
	seen := make(map[string]bool)
	for current := id; current != parser.NoNode; current = tree.Node(current).Parent {
		for _, decl := range tree.Node(current).Decls {
			if !decl.IsVariableOrParameter() {
				continue
			}
			if decl.Name == "" || seen[decl.Name] {
				continue
			}
			seen[decl.Name] = true
			names = append(names, decl.Name)
		}
	}
	return filterPrefix(names, tree.TextOf(id), EntryIdentifier)
}

// completeProperty suggests the members of the inferred type of a member
// expression's object.
func (c *Codebase) completeProperty(doc *Document, member parser.NodeID, partial string) ([]Entry, error) {
	object := doc.Tree.Node(member).Object
	if object == parser.NoNode {
		return nil, nil
	}
	typeName, err := c.typeOf(doc, object)
	if err != nil {
		return nil, err
	}
	if typeName == "" {
		log.Debugf("could not infer type of object in %s", doc.Path)
		return nil, nil
	}
	return filterPrefix(c.propertyNames(doc, typeName), partial, EntryProperty), nil
}

// typeOf infers the static type name of an expression head. Only member
// expressions and identifiers are inferable; everything else is
// ErrUnsupported so the boundary can degrade to no suggestions.
func (c *Codebase) typeOf(doc *Document, id parser.NodeID) (string, error) {
	node := doc.Tree.Node(id)
	switch node.Kind {
	case parser.KindMemberExpression:
		if node.Property == parser.NoNode {
			return "", nil
		}
		return c.typeOfProperty(doc, node.Property)
	case parser.KindIdentifier:
		if _, ok := propertySlot(doc.Tree, id); ok {
			return c.typeOfProperty(doc, id)
		}
		return typeOfName(doc.Tree, id, node.Name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, node.Kind)
	}
}

// typeOfProperty resolves the type of a member by name within the inferred
// type of the enclosing object.
func (c *Codebase) typeOfProperty(doc *Document, property parser.NodeID) (string, error) {
	member, ok := propertySlot(doc.Tree, property)
	if !ok {
		return "", fmt.Errorf("%w: identifier outside member expression", ErrUnsupported)
	}
	object := doc.Tree.Node(member).Object
	if object == parser.NoNode {
		return "", nil
	}
	objectType, err := c.typeOf(doc, object)
	if err != nil {
		return "", err
	}
	return c.memberType(doc, objectType, doc.Tree.Node(property).Name), nil
}

// typeOfName walks the scope chain outward from a node looking for a
// variable or parameter declaration with the given name; the innermost one
// wins.
func typeOfName(tree *parser.Tree, from parser.NodeID, name string) string {
	for current := from; current != parser.NoNode; current = tree.Node(current).Parent {
		for _, decl := range tree.Node(current).Decls {
			if decl.IsVariableOrParameter() && decl.Name == name {
				return decl.Type
			}
		}
	}
	return ""
}

// propertiesOf flattens the members of every struct or class declaration
// named typeName that is reachable from doc's top-level scope or, depth
// first, any transitively included document. Redeclarations concatenate;
// duplicates are kept.
func (c *Codebase) propertiesOf(doc *Document, typeName string) []Property {
	var properties []Property
	for _, decl := range c.reachableDeclarations(doc, make(map[string]bool)) {
		if decl.Kind != parser.DeclStructOrClass || decl.Name != typeName {
			continue
		}
		for _, member := range decl.Members {
			properties = append(properties, Property{Name: member.Name, Type: member.Type})
		}
	}
	return properties
}

func (c *Codebase) propertyNames(doc *Document, typeName string) []string {
	props := c.propertiesOf(doc, typeName)
	names := make([]string, 0, len(props))
	for _, prop := range props {
		names = append(names, prop.Name)
	}
	return names
}

// reachableDeclarations collects top-level declarations of doc and its
// transitive includes, includes first, each document visited once per call.
// Included documents are looked up in the store only; this walk never builds.
func (c *Codebase) reachableDeclarations(doc *Document, visited map[string]bool) []parser.Declaration {
	if visited[doc.Path] {
		return nil
	}
	visited[doc.Path] = true

	var decls []parser.Declaration
	for _, include := range doc.Includes {
		target := c.resolveInclude(include)
		if target == "" {
			continue
		}
		abs, err := c.files.AbsolutePath(target)
		if err != nil {
			continue
		}
		included, ok := c.documents[abs]
		if !ok {
			continue
		}
		decls = append(decls, c.reachableDeclarations(included, visited)...)
	}
	return append(decls, doc.Tree.RootDeclarations()...)
}

func filterPrefix(names []string, partial string, kind EntryKind) []Entry {
	var entries []Entry
	for _, name := range names {
		if strings.HasPrefix(name, partial) {
			entries = append(entries, Entry{
				Text:          name,
				ReplaceLength: len(partial),
				Kind:          kind,
			})
		}
	}
	return entries
}
