package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser builds an expression tree from tokens
type Parser struct {
	tokens []Token
	pos    int
	depth  depthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		depth:  depthCounter{maxDepth: MaxExpressionDepth},
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if tok := p.current(); tok.Type != tokType {
		return unexpected(tokType.String(), tok)
	}
	p.advance()
	return nil
}

func unexpected(want string, got Token) error {
	if got.Type == TokenError {
		return fmt.Errorf("expected %s, got %s %q", want, got.Type, got.Value)
	}
	if got.Value != "" {
		return fmt.Errorf("expected %s, got %s %q", want, got.Type, got.Value)
	}
	return fmt.Errorf("expected %s, got %s", want, got.Type)
}

// Parse parses a filter expression such as
//
//	qty > 3 AND (sku != 'x' OR note IS NULL)
//
// AND binds tighter than OR, NOT tighter than both.
func Parse(input string) (Expression, error) {
	expr, err := parse(input)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return expr, nil
}

func parse(input string) (Expression, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty expression")
	}

	tokens := Tokenize(input)
	if err := validateTokens(tokens); err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	expr, err := parser.parseOr()
	if err != nil {
		return nil, err
	}
	if err := parser.expect(TokenEOF); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Expression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseUnary parses NOT, parenthesized expressions and comparisons
func (p *Parser) parseUnary() (Expression, error) {
	switch p.current().Type {
	case TokenNot:
		if err := p.depth.enter(); err != nil {
			return nil, err
		}
		defer p.depth.exit()

		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: expr}, nil
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parseComparison()
}

// parseComparison parses "column op value" and "column IS [NOT] NULL"
func (p *Parser) parseComparison() (Expression, error) {
	if p.current().Type != TokenIdent {
		return nil, unexpected("column name", p.current())
	}
	column := p.current().Value
	if err := validateColumnName(column); err != nil {
		return nil, err
	}
	p.advance()

	operator := p.current().Type
	switch operator {
	case TokenIs:
		p.advance()
		negate := false
		if p.current().Type == TokenNot {
			negate = true
			p.advance()
		}
		if err := p.expect(TokenNull); err != nil {
			return nil, err
		}
		return &NullCheckExpr{Column: column, Negate: negate}, nil
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		p.advance()
	default:
		return nil, unexpected("comparison operator", p.current())
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &ComparisonExpr{
		Column:   column,
		Operator: operator,
		Value:    value,
	}, nil
}

// parseValue parses a string, number or boolean literal
func (p *Parser) parseValue() (interface{}, error) {
	tok := p.current()
	switch tok.Type {
	case TokenString:
		p.advance()
		return tok.Value, nil
	case TokenNumber:
		p.advance()
		// Try to parse as int first, then float
		if intVal, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
			return intVal, nil
		}
		if floatVal, err := strconv.ParseFloat(tok.Value, 64); err == nil {
			return floatVal, nil
		}
		return nil, fmt.Errorf("invalid number: %s", tok.Value)
	case TokenBool:
		p.advance()
		return strings.EqualFold(tok.Value, "true"), nil
	}
	return nil, unexpected("value (string, number, or bool)", tok)
}
