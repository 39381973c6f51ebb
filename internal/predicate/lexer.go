package predicate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes filter expressions
type Lexer struct {
	input string
	pos   int
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character, decoding UTF-8 so that quoted
// strings and identifiers may hold any letter.
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string. ok is false if the closing quote is
// missing.
func (l *Lexer) readString(quote rune) (value string, ok bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 0:
				return result.String(), false
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch != quote {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads a number with an optional leading minus sign
func (l *Lexer) readNumber() string {
	var result strings.Builder
	if l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	for unicode.IsDigit(l.ch) || l.ch == '.' || l.ch == 'e' || l.ch == 'E' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readIdentifier reads a column name or keyword
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readQuotedIdentifier reads a column name between backticks
func (l *Lexer) readQuotedIdentifier() (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening backtick
	for l.ch != '`' && l.ch != 0 {
		result.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch != '`' {
		return result.String(), false
	}
	l.readChar()
	return result.String(), true
}

// operator consumes a one or two character operator
func (l *Lexer) operator(single TokenType, pairs map[rune]TokenType) Token {
	first := l.ch
	if second, ok := pairs[l.peekChar()]; ok {
		next := l.peekChar()
		l.readChar()
		l.readChar()
		return Token{Type: second, Value: string(first) + string(next)}
	}
	l.readChar()
	return Token{Type: single, Value: string(first)}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	switch ch := l.ch; {
	case ch == 0:
		return Token{Type: TokenEOF}
	case ch == '=':
		l.readChar()
		return Token{Type: TokenEqual, Value: "="}
	case ch == '!':
		return l.operator(TokenError, map[rune]TokenType{'=': TokenNotEqual})
	case ch == '<':
		return l.operator(TokenLess, map[rune]TokenType{'=': TokenLessEqual, '>': TokenNotEqual})
	case ch == '>':
		return l.operator(TokenGreater, map[rune]TokenType{'=': TokenGreaterEqual})
	case ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Value: "("}
	case ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Value: ")"}
	case ch == '\'' || ch == '"':
		value, ok := l.readString(ch)
		if !ok {
			return Token{Type: TokenError, Value: "unterminated string"}
		}
		return Token{Type: TokenString, Value: value}
	case ch == '`':
		value, ok := l.readQuotedIdentifier()
		if !ok || value == "" {
			return Token{Type: TokenError, Value: "unterminated identifier"}
		}
		return Token{Type: TokenIdent, Value: value}
	case unicode.IsDigit(ch) || (ch == '-' && unicode.IsDigit(l.peekChar())):
		return Token{Type: TokenNumber, Value: l.readNumber()}
	case unicode.IsLetter(ch) || ch == '_':
		value := l.readIdentifier()
		return Token{Type: identifierType(value), Value: value}
	default:
		l.readChar()
		return Token{Type: TokenError, Value: string(ch)}
	}
}

var keywords = map[string]TokenType{
	"AND":   TokenAnd,
	"OR":    TokenOr,
	"NOT":   TokenNot,
	"IS":    TokenIs,
	"NULL":  TokenNull,
	"TRUE":  TokenBool,
	"FALSE": TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case insensitive.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with TokenEOF or the
// first TokenError.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
