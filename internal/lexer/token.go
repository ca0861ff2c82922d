package lexer

import (
	"fmt"
	"strings"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota

	// Literals
	Integer    // 404684003
	TermString // |Clinical finding|
	String     // "diabetes" or 'diabetes'

	// Keywords (case-insensitive)
	KwActive
	KwModuleID
	KwTypeID
	KwTerm
	KwMatch
	KwExact
	KwRegex
	KwLanguageCode
	KwLanguageRefSetID
	KwAcceptableIn
	KwPreferredIn
	KwCaseSignificanceID
	KwConcept
	KwDescription
	KwAnd
	KwOr
	KwMinus
	KwTrue
	KwFalse

	// Punctuation and operators
	Comma        // ,
	LBrace       // {
	RBrace       // }
	LDoubleBrace // {{
	RDoubleBrace // }}
	LParen       // (
	RParen       // )
	LBracket     // [
	RBracket     // ]
	Plus         // +
	Dash         // -
	Caret        // ^
	Bang         // !
	Dot          // .
	DotDot       // ..
	Star         // *
	Equal        // =
	NotEqual     // !=
	Lt           // <
	Gt           // >
	DblLt        // <<
	DblGt        // >>
	LtBang       // <!
	GtBang       // >!
	Lte          // <=
	Gte          // >=
	Hash         // #
	Colon        // :
	Reversed     // R
)

var kindNames = map[Kind]string{
	EOF:                  "end of input",
	Integer:              "integer",
	TermString:           "term string",
	String:               "string",
	KwActive:             "active",
	KwModuleID:           "moduleId",
	KwTypeID:             "typeId",
	KwTerm:               "term",
	KwMatch:              "match",
	KwExact:              "exact",
	KwRegex:              "regex",
	KwLanguageCode:       "languageCode",
	KwLanguageRefSetID:   "languageRefSetId",
	KwAcceptableIn:       "acceptableIn",
	KwPreferredIn:        "preferredIn",
	KwCaseSignificanceID: "caseSignificanceId",
	KwConcept:            "concept",
	KwDescription:        "description",
	KwAnd:                "AND",
	KwOr:                 "OR",
	KwMinus:              "MINUS",
	KwTrue:               "true",
	KwFalse:              "false",
	Comma:                ",",
	LBrace:               "{",
	RBrace:               "}",
	LDoubleBrace:         "{{",
	RDoubleBrace:         "}}",
	LParen:               "(",
	RParen:               ")",
	LBracket:             "[",
	RBracket:             "]",
	Plus:                 "+",
	Dash:                 "-",
	Caret:                "^",
	Bang:                 "!",
	Dot:                  ".",
	DotDot:               "..",
	Star:                 "*",
	Equal:                "=",
	NotEqual:             "!=",
	Lt:                   "<",
	Gt:                   ">",
	DblLt:                "<<",
	DblGt:                ">>",
	LtBang:               "<!",
	GtBang:               ">!",
	Lte:                  "<=",
	Gte:                  ">=",
	Hash:                 "#",
	Colon:                ":",
	Reversed:             "R",
}

// String returns the canonical spelling of the kind, used in diagnostics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether the kind is a word keyword.
func (k Kind) IsKeyword() bool {
	return k >= KwActive && k <= KwFalse
}

// keywords maps lower-cased spellings to keyword kinds.
// The single letter r maps to Reversed.
var keywords = map[string]Kind{
	"active":             KwActive,
	"moduleid":           KwModuleID,
	"typeid":             KwTypeID,
	"term":               KwTerm,
	"match":              KwMatch,
	"exact":              KwExact,
	"regex":              KwRegex,
	"languagecode":       KwLanguageCode,
	"languagerefsetid":   KwLanguageRefSetID,
	"acceptablein":       KwAcceptableIn,
	"preferredin":        KwPreferredIn,
	"casesignificanceid": KwCaseSignificanceID,
	"concept":            KwConcept,
	"description":        KwDescription,
	"and":                KwAnd,
	"or":                 KwOr,
	"minus":              KwMinus,
	"true":               KwTrue,
	"false":              KwFalse,
	"r":                  Reversed,
}

// LookupKeyword returns the keyword kind for word, ignoring case.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(word)]
	return k, ok
}

// Position is a location in the query text.
// Offset is a byte offset; Line and Column are 1-based, Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token.
// Lexeme is the raw source text; End is the byte offset one past the token.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
	End    int
}

// Text returns the literal value of the token.
// Quoted strings and term strings are returned without delimiters and with
// backslash escapes resolved; other tokens return their lexeme.
func (t Token) Text() string {
	switch t.Kind {
	case String, TermString:
		if len(t.Lexeme) < 2 {
			return ""
		}
		return unescape(t.Lexeme[1 : len(t.Lexeme)-1])
	default:
		return t.Lexeme
	}
}

// Describe renders the token for "found" positions in error messages.
func (t Token) Describe() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d", t.Kind, t.Lexeme, t.Pos.Offset)
}

// unescape drops each escaping backslash and keeps the character after it.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
