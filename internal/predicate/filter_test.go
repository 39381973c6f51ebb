package predicate

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		left     interface{}
		operator TokenType
		right    interface{}
		want     bool
	}{
		// Integer comparisons
		{"int equal", int64(30), TokenEqual, int64(30), true},
		{"int not equal", int64(30), TokenNotEqual, int64(25), true},
		{"int less", int32(25), TokenLess, int64(30), true},
		{"int greater", int64(35), TokenGreater, int32(30), true},
		{"int less equal same", int64(30), TokenLessEqual, int64(30), true},
		{"int greater equal greater", int64(35), TokenGreaterEqual, int64(30), true},

		// Mixed int/float comparisons
		{"int vs float equal", int64(30), TokenEqual, float64(30.0), true},
		{"float vs int greater", float64(35.5), TokenGreater, int64(30), true},
		{"float32", float32(1.5), TokenLess, float64(2), true},

		// NaN
		{"nan equal", math.NaN(), TokenEqual, math.NaN(), false},
		{"nan not equal", math.NaN(), TokenNotEqual, int64(1), true},
		{"nan greater", math.NaN(), TokenGreater, int64(1), false},
		{"nan less", int64(1), TokenLess, math.NaN(), false},

		// Strings and bytes
		{"string equal", "alice", TokenEqual, "alice", true},
		{"string case sensitive", "Alice", TokenEqual, "alice", false},
		{"string less", "apple", TokenLess, "banana", true},
		{"bytes vs string", []byte("sku-1"), TokenEqual, "sku-1", true},
		{"bytes greater", []byte("b"), TokenGreater, "a", true},

		// Booleans
		{"bool equal", true, TokenEqual, true, true},
		{"bool not equal", true, TokenNotEqual, false, true},

		// Negative results
		{"int not equal same", int64(30), TokenNotEqual, int64(30), false},
		{"int less wrong", int64(35), TokenLess, int64(30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compare(tt.left, tt.operator, tt.right)
			if err != nil {
				t.Fatalf("compare() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("compare(%v, %v, %v) = %v, want %v", tt.left, tt.operator, tt.right, got, tt.want)
			}
		})
	}
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name     string
		left     interface{}
		operator TokenType
		right    interface{}
	}{
		{"string vs int", "30", TokenEqual, int64(30)},
		{"bool vs string", true, TokenEqual, "true"},
		{"bool ordering", true, TokenLess, false},
		{"array", []interface{}{1}, TokenEqual, int64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compare(tt.left, tt.operator, tt.right); err == nil {
				t.Errorf("compare(%v, %v, %v) expected error", tt.left, tt.operator, tt.right)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	row := map[string]interface{}{
		"sku":    "x-1",
		"qty":    int64(5),
		"price":  2.5,
		"active": true,
		"note":   nil,
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"qty > 3", true},
		{"qty > 3 AND sku != 'x-1'", false},
		{"qty > 10 OR sku = 'x-1'", true},
		{"NOT qty > 10", true},
		{"NOT (qty > 3 AND active = true)", false},
		{"note IS NULL", true},
		{"note IS NOT NULL", false},
		{"missing IS NULL", true},
		{"sku IS NOT NULL", true},
		{"note = 'x'", false},
		{"note != 'x'", false},
		{"missing = 1", false},
		{"(qty >= 5 AND price < 3) OR missing = 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := expr.Evaluate(row)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinaryExpr_ShortCircuit(t *testing.T) {
	failing := &ComparisonExpr{Column: "sku", Operator: TokenLess, Value: int64(1)}
	row := map[string]interface{}{"sku": "x", "qty": int64(1)}

	tests := []struct {
		name string
		expr BinaryExpr
		want bool
	}{
		{
			name: "AND stops on false",
			expr: BinaryExpr{Left: &ComparisonExpr{Column: "qty", Operator: TokenEqual, Value: int64(2)}, Operator: TokenAnd, Right: failing},
			want: false,
		},
		{
			name: "OR stops on true",
			expr: BinaryExpr{Left: &ComparisonExpr{Column: "qty", Operator: TokenEqual, Value: int64(1)}, Operator: TokenOr, Right: failing},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.expr.Evaluate(row)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := (&BinaryExpr{Left: failing, Operator: TokenAnd, Right: failing}).Evaluate(row); err == nil {
		t.Error("expected the type mismatch to surface")
	}
}

func TestMatcher(t *testing.T) {
	expr, err := Parse("qty > 1")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m := NewMatcher(expr)

	if !m.Match(map[string]interface{}{"qty": int64(2)}) {
		t.Error("expected qty 2 to match")
	}
	if m.Match(map[string]interface{}{"qty": "two"}) {
		t.Error("a failing evaluation must not match")
	}
	if m.Match(map[string]interface{}{"qty": []byte("3")}) {
		t.Error("a failing evaluation must not match")
	}
	if m.Err() == nil {
		t.Fatal("expected the evaluation error to be kept")
	}
	if got := m.Err().Error(); got != "predicate: cannot compare string with int64" {
		t.Errorf("Err() = %q, want the first error", got)
	}

	all := NewMatcher(nil)
	if !all.Match(nil) || all.Err() != nil {
		t.Error("a nil expression matches everything")
	}
}
