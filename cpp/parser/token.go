package parser

import "fmt"

// Position is a location in processed source text. Lines are 1-based,
// columns are 0-based byte offsets within the line.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers [Start, End); End is exclusive.
type Span struct {
	Start Position
	End   Position
}

func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenComment
	TokenIdent
	TokenKeyword
	TokenNumber
	TokenString
	TokenChar

	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenArrow
	TokenOperator
	TokenUnknown
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:       "EOF",
	TokenComment:   "Comment",
	TokenIdent:     "Ident",
	TokenKeyword:   "Keyword",
	TokenNumber:    "Number",
	TokenString:    "String",
	TokenChar:      "Char",
	TokenLParen:    "LParen",
	TokenRParen:    "RParen",
	TokenLBrace:    "LBrace",
	TokenRBrace:    "RBrace",
	TokenLBracket:  "LBracket",
	TokenRBracket:  "RBracket",
	TokenSemicolon: "Semicolon",
	TokenComma:     "Comma",
	TokenDot:       "Dot",
	TokenArrow:     "Arrow",
	TokenOperator:  "Operator",
	TokenUnknown:   "Unknown",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Token struct {
	Kind    TokenKind
	Literal string
	Span    Span
}

// IsMemberAccessOperator reports whether the token selects a member off an
// object expression.
func (t Token) IsMemberAccessOperator() bool {
	return t.Kind == TokenDot || t.Kind == TokenArrow
}

var keywords = map[string]bool{
	"auto": true, "bool": true, "break": true, "case": true, "char": true,
	"class": true, "const": true, "continue": true, "default": true,
	"delete": true, "do": true, "double": true, "else": true, "enum": true,
	"extern": true, "false": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "namespace": true,
	"new": true, "nullptr": true, "private": true, "protected": true,
	"public": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"template": true, "this": true, "true": true, "typedef": true,
	"typename": true, "union": true, "unsigned": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "while": true,
}
