package predicate

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_Comparison(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		column    string
		operator  TokenType
		wantValue interface{}
	}{
		{"string", "name = 'alice'", "name", TokenEqual, "alice"},
		{"integer", "age > 30", "age", TokenGreater, int64(30)},
		{"float", "score <= 95.5", "score", TokenLessEqual, float64(95.5)},
		{"negative integer", "temp != -10", "temp", TokenNotEqual, int64(-10)},
		{"boolean", "active = TRUE", "active", TokenEqual, true},
		{"quoted column", "`_VALUE_KIND` = '+I'", "_VALUE_KIND", TokenEqual, "+I"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			comp, ok := expr.(*ComparisonExpr)
			if !ok {
				t.Fatalf("expected ComparisonExpr, got %T", expr)
			}
			if comp.Column != tt.column {
				t.Errorf("expected column %q, got %q", tt.column, comp.Column)
			}
			if comp.Operator != tt.operator {
				t.Errorf("expected operator %v, got %v", tt.operator, comp.Operator)
			}
			if comp.Value != tt.wantValue {
				t.Errorf("expected value %v (%T), got %v (%T)", tt.wantValue, tt.wantValue, comp.Value, comp.Value)
			}
		})
	}
}

func TestParse_NullCheck(t *testing.T) {
	for input, negate := range map[string]bool{"note IS NULL": false, "note is not null": true} {
		expr, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}
		check, ok := expr.(*NullCheckExpr)
		if !ok {
			t.Fatalf("expected NullCheckExpr, got %T", expr)
		}
		if check.Column != "note" || check.Negate != negate {
			t.Errorf("Parse(%q) = %+v", input, check)
		}
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	// a OR b AND c parses as a OR (b AND c)
	expr, err := Parse("a = 1 OR b = 2 AND c = 3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	binExpr, ok := expr.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	if binExpr.Operator != TokenOr {
		t.Errorf("expected root operator to be OR, got %v", binExpr.Operator)
	}
	rightBin, ok := binExpr.Right.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected right side to be BinaryExpr, got %T", binExpr.Right)
	}
	if rightBin.Operator != TokenAnd {
		t.Errorf("expected right operator to be AND, got %v", rightBin.Operator)
	}
}

func TestParse_Parentheses(t *testing.T) {
	// (a OR b) AND c keeps the OR below the AND
	expr, err := Parse("(a = 1 OR b = 2) AND NOT c = 3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root, ok := expr.(*BinaryExpr)
	if !ok || root.Operator != TokenAnd {
		t.Fatalf("expected AND at the root, got %#v", expr)
	}
	if left, ok := root.Left.(*BinaryExpr); !ok || left.Operator != TokenOr {
		t.Errorf("expected OR on the left, got %#v", root.Left)
	}
	if _, ok := root.Right.(*NotExpr); !ok {
		t.Errorf("expected NOT on the right, got %T", root.Right)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   "},
		{"missing comparison value", "age >"},
		{"missing column name", "> 30"},
		{"missing operator", "age 30"},
		{"incomplete AND", "age > 30 AND"},
		{"incomplete OR", "age > 30 OR"},
		{"trailing tokens", "age > 30 name = 'x'"},
		{"unbalanced parenthesis", "(age > 30"},
		{"extra parenthesis", "age > 30)"},
		{"IS without NULL", "age IS 3"},
		{"invalid number", "age = 1.2.3"},
		{"invalid character", "age > 30 # comment"},
		{"column compared to column", "a = b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse() expected error for input: %s", tt.input)
			}
			if !Error.Has(err) {
				t.Errorf("Parse() error %v is not a predicate error", err)
			}
		})
	}
}

func TestParse_Limits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "too long",
			input:   "a = '" + strings.Repeat("x", MaxExpressionLength) + "'",
			wantErr: ErrExpressionTooLong,
		},
		{
			name:    "too many tokens",
			input:   strings.Repeat("a = 1 AND ", MaxTokens/4) + "a = 1",
			wantErr: ErrTooManyTokens,
		},
		{
			name:    "too deep",
			input:   strings.Repeat("(", MaxExpressionDepth+1) + "a = 1" + strings.Repeat(")", MaxExpressionDepth+1),
			wantErr: ErrExpressionTooDeep,
		},
		{
			name:    "long column",
			input:   strings.Repeat("c", MaxColumnNameLength+1) + " = 1",
			wantErr: ErrColumnNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
