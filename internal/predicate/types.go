// Package predicate parses and evaluates row filter expressions.
//
// It implements a small boolean expression language over named columns
// with comparison operators, NULL checks, NOT, parentheses and boolean
// logic (AND/OR). The package includes a lexer for tokenization, a parser
// for building ASTs, and an evaluator for filtering rows.
//
// Example usage:
//
//	expr, err := Parse("qty > 3 AND (sku != 'x' OR note IS NULL)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	match, err := expr.Evaluate(row)
package predicate

import "github.com/zeebo/errs"

// Error is the class of expression parse and evaluation errors.
var Error = errs.Class("predicate")

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenAnd TokenType = iota
	TokenOr
	TokenNot
	TokenIs
	TokenNull

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenLParen       // (
	TokenRParen       // )

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenIs:           "IS",
	TokenNull:         "NULL",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenEOF:          "end of input",
	TokenError:        "invalid character",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// Expression is a boolean expression over the columns of a row.
type Expression interface {
	Evaluate(row map[string]interface{}) (bool, error)
}

// BinaryExpr represents a binary expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

// NotExpr negates an expression.
type NotExpr struct {
	Expr Expression
}

// ComparisonExpr compares a column with a literal.
type ComparisonExpr struct {
	Column   string
	Operator TokenType
	Value    interface{}
}

// NullCheckExpr tests whether a column is NULL or missing.
type NullCheckExpr struct {
	Column string
	Negate bool // IS NOT NULL
}

// Evaluate evaluates a binary expression. The right side is only evaluated
// when the left side does not decide the result.
func (b *BinaryExpr) Evaluate(row map[string]interface{}) (bool, error) {
	left, err := b.Left.Evaluate(row)
	if err != nil {
		return false, err
	}

	switch b.Operator {
	case TokenAnd:
		if !left {
			return false, nil
		}
	case TokenOr:
		if left {
			return true, nil
		}
	default:
		return false, nil
	}

	return b.Right.Evaluate(row)
}

// Evaluate evaluates a negation
func (n *NotExpr) Evaluate(row map[string]interface{}) (bool, error) {
	match, err := n.Expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	return !match, nil
}

// Evaluate evaluates a comparison expression. Comparisons with a missing
// or NULL column are false.
func (c *ComparisonExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, exists := row[c.Column]
	if !exists || value == nil {
		return false, nil
	}

	return compare(value, c.Operator, c.Value)
}

// Evaluate evaluates a NULL check
func (n *NullCheckExpr) Evaluate(row map[string]interface{}) (bool, error) {
	isNull := row[n.Column] == nil
	return isNull != n.Negate, nil
}
