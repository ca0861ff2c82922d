package lexer

import (
	"fmt"
	"unicode/utf8"
)

// Error is a lexical error. Pos is where the offending construct starts:
// the opening delimiter of an unterminated literal or comment, or the first
// byte of an unrecognized character or word.
type Error struct {
	Pos     Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s (offset %d): %s", e.Pos, e.Pos.Offset, e.Message)
}

// Lexer scans query text into tokens.
//
// A Lexer holds all of its state; there is no package-level mutable state,
// so independent Lexers may run concurrently.
type Lexer struct {
	input  string
	offset int
	line   int
	column int
	err    error
}

// New returns a Lexer positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Tokenize scans the entire input. The returned slice always ends with an
// EOF token on success. Scanning stops at the first error.
func Tokenize(input string) ([]Token, error) {
	lx := New(input)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token, skipping whitespace and comments.
// After an error, every further call returns the same error.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
		return Token{}, err
	}
	return tok, nil
}

func (l *Lexer) pos() Position {
	return Position{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *Lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.input) {
		return 0
	}
	return l.input[l.offset+n]
}

// advance consumes n bytes, tracking line and column.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.input); i++ {
		if l.input[l.offset] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.offset++
	}
}

func (l *Lexer) fail(pos Position, format string, args ...any) error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (l *Lexer) scan() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.pos()
	if l.offset >= len(l.input) {
		return Token{Kind: EOF, Pos: start, End: l.offset}, nil
	}

	c := l.input[l.offset]
	switch {
	case isDigit(c):
		for isDigit(l.peekAt(0)) {
			l.advance(1)
		}
		// Keywords must be separated from integers.
		if isLetter(l.peekAt(0)) {
			return Token{}, l.fail(start, "integer %s runs into a word", l.input[start.Offset:l.offset])
		}
		return l.token(Integer, start), nil
	case isLetter(c):
		return l.scanWord(start)
	case c == '"' || c == '\'':
		return l.scanDelimited(String, c, start, "string literal")
	case c == '|':
		return l.scanDelimited(TermString, '|', start, "term string")
	}

	if kind, n := matchPunct(c, l.peekAt(1)); n > 0 {
		l.advance(n)
		return l.token(kind, start), nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return Token{}, l.fail(start, "unexpected character %q", r)
}

func (l *Lexer) token(kind Kind, start Position) Token {
	return Token{
		Kind:   kind,
		Lexeme: l.input[start.Offset:l.offset],
		Pos:    start,
		End:    l.offset,
	}
}

// skipTrivia consumes whitespace, line comments and block comments.
func (l *Lexer) skipTrivia() error {
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance(1)
		case c == '/' && l.peekAt(1) == '/':
			for l.offset < len(l.input) && l.input[l.offset] != '\n' {
				l.advance(1)
			}
		case c == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance(2)
			closed := false
			for l.offset < len(l.input) {
				if l.input[l.offset] == '*' && l.peekAt(1) == '/' {
					l.advance(2)
					closed = true
					break
				}
				l.advance(1)
			}
			if !closed {
				return l.fail(start, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// scanWord reads a run of ASCII letters and resolves it as a keyword.
// There are no identifiers in the language, so an unknown word is an error.
func (l *Lexer) scanWord(start Position) (Token, error) {
	for isLetter(l.peekAt(0)) {
		l.advance(1)
	}
	word := l.input[start.Offset:l.offset]
	kind, ok := LookupKeyword(word)
	if !ok {
		return Token{}, l.fail(start, "unknown keyword %q", word)
	}
	return l.token(kind, start), nil
}

// scanDelimited reads a literal closed by delim. A backslash escapes the
// following byte, including the delimiter itself.
func (l *Lexer) scanDelimited(kind Kind, delim byte, start Position, what string) (Token, error) {
	l.advance(1)
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		switch {
		case c == '\\':
			if l.offset+1 >= len(l.input) {
				return Token{}, l.fail(start, "unterminated %s", what)
			}
			l.advance(2)
		case c == delim:
			l.advance(1)
			return l.token(kind, start), nil
		default:
			l.advance(1)
		}
	}
	return Token{}, l.fail(start, "unterminated %s", what)
}

// matchPunct returns the longest punctuation token starting with c.
// n is the token length in bytes, zero when c starts no token.
func matchPunct(c, next byte) (Kind, int) {
	switch c {
	case ',':
		return Comma, 1
	case '{':
		if next == '{' {
			return LDoubleBrace, 2
		}
		return LBrace, 1
	case '}':
		if next == '}' {
			return RDoubleBrace, 2
		}
		return RBrace, 1
	case '(':
		return LParen, 1
	case ')':
		return RParen, 1
	case '[':
		return LBracket, 1
	case ']':
		return RBracket, 1
	case '+':
		return Plus, 1
	case '-':
		return Dash, 1
	case '^':
		return Caret, 1
	case '!':
		if next == '=' {
			return NotEqual, 2
		}
		return Bang, 1
	case '.':
		if next == '.' {
			return DotDot, 2
		}
		return Dot, 1
	case '*':
		return Star, 1
	case '=':
		return Equal, 1
	case '<':
		switch next {
		case '<':
			return DblLt, 2
		case '!':
			return LtBang, 2
		case '=':
			return Lte, 2
		}
		return Lt, 1
	case '>':
		switch next {
		case '>':
			return DblGt, 2
		case '!':
			return GtBang, 2
		case '=':
			return Gte, 2
		}
		return Gt, 1
	case '#':
		return Hash, 1
	case ':':
		return Colon, 1
	}
	return EOF, 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
