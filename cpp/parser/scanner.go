package parser

// Lexer produces the flat token stream the cursor locator consults to see
// which token sits under the completion position. It only needs to be precise
// about identifiers and the member-access operators; all other punctuation
// collapses into a generic operator token.
type Lexer struct {
	input  []byte
	pos    int
	line   int
	column int
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) Next() Token {
	l.skipWhitespace()
	start := l.position()

	ch := l.peek()
	switch {
	case ch == 0:
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	case isIdentStart(ch):
		return l.scanIdentifier(start)
	case ch >= '0' && ch <= '9':
		return l.scanNumber(start)
	case ch == '"':
		return l.scanString(start, '"')
	case ch == '\'':
		return l.scanString(start, '\'')
	case ch == '/' && l.peekN(1) == '/':
		return l.scanLineComment(start)
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start)
	}

	l.advance()
	kind := TokenOperator
	switch ch {
	case '(':
		kind = TokenLParen
	case ')':
		kind = TokenRParen
	case '{':
		kind = TokenLBrace
	case '}':
		kind = TokenRBrace
	case '[':
		kind = TokenLBracket
	case ']':
		kind = TokenRBracket
	case ';':
		kind = TokenSemicolon
	case ',':
		kind = TokenComma
	case '.':
		kind = TokenDot
	case '-':
		if l.peek() == '>' {
			l.advance()
			kind = TokenArrow
		}
	}
	return l.token(kind, start)
}

func (l *Lexer) scanIdentifier(start Position) Token {
	for isIdentStart(l.peek()) || (l.peek() >= '0' && l.peek() <= '9') {
		l.advance()
	}
	tok := l.token(TokenIdent, start)
	if keywords[tok.Literal] {
		tok.Kind = TokenKeyword
	}
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	for isNumberPart(l.peek()) {
		l.advance()
	}
	return l.token(TokenNumber, start)
}

func (l *Lexer) scanString(start Position, quote byte) Token {
	l.advance()
	for l.peek() != 0 && l.peek() != quote && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	l.advance()
	kind := TokenString
	if quote == '\'' {
		kind = TokenChar
	}
	return l.token(kind, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advance()
	l.advance()
	for l.peek() != 0 {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.position()
	return Token{
		Kind:    kind,
		Literal: string(l.input[start.Offset:end.Offset]),
		Span:    Span{Start: start, End: end},
	}
}

// ScanAll tokenizes the whole input, dropping comments.
func ScanAll(input []byte) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.Next()
		if tok.Kind == TokenEOF {
			return tokens
		}
		if tok.Kind == TokenComment {
			continue
		}
		tokens = append(tokens, tok)
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNumberPart(ch byte) bool {
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == 'x' || ch == 'X' ||
		(ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') || ch == 'u' ||
		ch == 'U' || ch == 'l' || ch == 'L'
}
