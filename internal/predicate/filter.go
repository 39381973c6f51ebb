package predicate

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
)

// compare compares a row value with a literal using the given operator
func compare(left interface{}, operator TokenType, right interface{}) (bool, error) {
	// Try numeric comparison
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)

	if leftIsNum && rightIsNum {
		if math.IsNaN(leftNum) || math.IsNaN(rightNum) {
			// NaN equals nothing and orders against nothing
			return operator == TokenNotEqual, nil
		}
		return ordered(cmp.Compare(leftNum, rightNum), operator), nil
	}

	// Try string comparison
	leftStr, leftIsStr := toBytes(left)
	rightStr, rightIsStr := toBytes(right)

	if leftIsStr && rightIsStr {
		return ordered(bytes.Compare(leftStr, rightStr), operator), nil
	}

	// Try boolean comparison
	leftBool, leftIsBool := left.(bool)
	rightBool, rightIsBool := right.(bool)

	if leftIsBool && rightIsBool {
		switch operator {
		case TokenEqual:
			return leftBool == rightBool, nil
		case TokenNotEqual:
			return leftBool != rightBool, nil
		}
		return false, fmt.Errorf("operator %s is not defined for booleans", operator)
	}

	// Type mismatch
	return false, fmt.Errorf("cannot compare %T with %T", left, right)
}

// ordered applies operator to the result of a three-way comparison
func ordered(result int, operator TokenType) bool {
	switch operator {
	case TokenEqual:
		return result == 0
	case TokenNotEqual:
		return result != 0
	case TokenLess:
		return result < 0
	case TokenGreater:
		return result > 0
	case TokenLessEqual:
		return result <= 0
	case TokenGreaterEqual:
		return result >= 0
	default:
		return false
	}
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toBytes returns the bytes of strings and byte slices
func toBytes(v interface{}) ([]byte, bool) {
	switch val := v.(type) {
	case string:
		return []byte(val), true
	case []byte:
		return val, true
	default:
		return nil, false
	}
}

// Matcher adapts an expression to a predicate that cannot fail. The first
// evaluation error is kept and reported by Err; the failing row does not
// match.
type Matcher struct {
	expr Expression
	err  error
}

// NewMatcher returns a matcher for expr. A nil expr matches every row.
func NewMatcher(expr Expression) *Matcher {
	return &Matcher{expr: expr}
}

// Match reports whether row satisfies the expression.
func (m *Matcher) Match(row map[string]interface{}) bool {
	if m.expr == nil {
		return true
	}
	match, err := m.expr.Evaluate(row)
	if err != nil {
		if m.err == nil {
			m.err = err
		}
		return false
	}
	return match
}

// Err returns the first evaluation error.
func (m *Matcher) Err() error {
	return Error.Wrap(m.err)
}
