package types

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNestingDepth bounds how deeply ARRAY and ROW types may nest.
const MaxNestingDepth = 32

type tokenType int

const (
	tokenIdent tokenType = iota
	tokenOpen            // <
	tokenClose           // >
	tokenComma           // ,
	tokenEOF
	tokenError
)

type token struct {
	typ   tokenType
	value string
}

// tokenize splits a type declaration into identifiers and punctuation.
func tokenize(input string) []token {
	var tokens []token
	pos := 0
	for pos < len(input) {
		ch := rune(input[pos])
		switch {
		case unicode.IsSpace(ch):
			pos++
		case ch == '<':
			tokens = append(tokens, token{typ: tokenOpen, value: "<"})
			pos++
		case ch == '>':
			tokens = append(tokens, token{typ: tokenClose, value: ">"})
			pos++
		case ch == ',':
			tokens = append(tokens, token{typ: tokenComma, value: ","})
			pos++
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_':
			start := pos
			for pos < len(input) {
				c := rune(input[pos])
				if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
					break
				}
				pos++
			}
			tokens = append(tokens, token{typ: tokenIdent, value: input[start:pos]})
		default:
			return append(tokens, token{typ: tokenError, value: string(ch)})
		}
	}
	return append(tokens, token{typ: tokenEOF})
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() { p.pos++ }

func (p *parser) expect(typ tokenType, what string) error {
	if p.current().typ != typ {
		return fmt.Errorf("expected %s, got %q", what, p.current().value)
	}
	p.advance()
	return nil
}

// ParseDataType parses the textual form of a data type, for example
// "ARRAY<ROW<id BIGINT, v STRING>>". Keywords are case-insensitive.
func ParseDataType(input string) (*DataType, error) {
	p := &parser{tokens: tokenize(input)}
	t, err := p.parseType()
	if err != nil {
		return nil, Error.New("invalid type %q: %v", input, err)
	}
	if p.current().typ != tokenEOF {
		return nil, Error.New("invalid type %q: unexpected %q", input, p.current().value)
	}
	return t, nil
}

func (p *parser) parseType() (*DataType, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNestingDepth {
		return nil, fmt.Errorf("type nesting too deep (max %d)", MaxNestingDepth)
	}

	tok := p.current()
	if tok.typ != tokenIdent {
		return nil, fmt.Errorf("expected type name, got %q", tok.value)
	}
	p.advance()

	switch strings.ToUpper(tok.value) {
	case "BIGINT", "LONG":
		return BigInt(), nil
	case "INT", "INTEGER":
		return Int(), nil
	case "DOUBLE":
		return Double(), nil
	case "FLOAT":
		return Float(), nil
	case "STRING", "VARCHAR":
		return String(), nil
	case "BOOLEAN", "BOOL":
		return Boolean(), nil
	case "BYTES", "BINARY":
		return Bytes(), nil
	case "ARRAY":
		return p.parseArray()
	case "ROW":
		return p.parseRow()
	default:
		return nil, fmt.Errorf("unknown type %q", tok.value)
	}
}

func (p *parser) parseArray() (*DataType, error) {
	if err := p.expect(tokenOpen, "'<' after ARRAY"); err != nil {
		return nil, err
	}
	element, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokenClose, "'>' closing ARRAY"); err != nil {
		return nil, err
	}
	return Array(element), nil
}

func (p *parser) parseRow() (*DataType, error) {
	if err := p.expect(tokenOpen, "'<' after ROW"); err != nil {
		return nil, err
	}

	var fields []Field
	seen := make(map[string]bool)
	for {
		name := p.current()
		if name.typ != tokenIdent {
			return nil, fmt.Errorf("expected field name, got %q", name.value)
		}
		if seen[name.value] {
			return nil, fmt.Errorf("duplicate field %q", name.value)
		}
		seen[name.value] = true
		p.advance()

		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, NewField(name.value, fieldType))

		if p.current().typ == tokenComma {
			p.advance()
			continue
		}
		break
	}

	if err := p.expect(tokenClose, "'>' closing ROW"); err != nil {
		return nil, err
	}
	return Row(fields...), nil
}
