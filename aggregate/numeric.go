package aggregate

import (
	"github.com/vegasq/mergetree/types"
)

const (
	// SumName is the registered name of the sum aggregator.
	SumName = "sum"
	// ProductName is the registered name of the product aggregator.
	ProductName = "product"
)

type number interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// arithmetic folds numbers of one runtime type N. Agg applies fold and
// Retract applies unfold.
type arithmetic[N number] struct {
	base
	want   string
	fold   func(a, b N) N
	unfold func(a, b N) (N, error)
}

func (a *arithmetic[N]) Agg(accumulator, input any) (any, error) {
	if result, ok := shortcut(accumulator, input); ok {
		return result, nil
	}
	x, y, err := a.operands(accumulator, input)
	if err != nil {
		return nil, err
	}
	return a.fold(x, y), nil
}

func (a *arithmetic[N]) Retract(accumulator, retracted any) (any, error) {
	if accumulator == nil || retracted == nil {
		return accumulator, nil
	}
	x, y, err := a.operands(accumulator, retracted)
	if err != nil {
		return nil, err
	}
	return a.unfold(x, y)
}

func (a *arithmetic[N]) operands(x, y any) (N, N, error) {
	nx, ok := x.(N)
	if !ok {
		return 0, 0, a.wrongShape(x, a.want)
	}
	ny, ok := y.(N)
	if !ok {
		return 0, 0, a.wrongShape(y, a.want)
	}
	return nx, ny, nil
}

func newSum(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	b := base{name: SumName, field: field}
	switch dataType.Kind {
	case types.KindBigInt:
		return sumOf[int64](b, "BIGINT"), nil
	case types.KindInt:
		return sumOf[int32](b, "INT"), nil
	case types.KindDouble:
		return sumOf[float64](b, "DOUBLE"), nil
	case types.KindFloat:
		return sumOf[float32](b, "FLOAT"), nil
	}
	return nil, b.wrongType(dataType, "a numeric type")
}

func sumOf[N number](b base, want string) *arithmetic[N] {
	return &arithmetic[N]{
		base:   b,
		want:   want,
		fold:   func(x, y N) N { return x + y },
		unfold: func(x, y N) (N, error) { return x - y, nil },
	}
}

func newProduct(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	b := base{name: ProductName, field: field}
	switch dataType.Kind {
	case types.KindBigInt:
		return productOf[int64](b, "BIGINT", true), nil
	case types.KindInt:
		return productOf[int32](b, "INT", true), nil
	case types.KindDouble:
		return productOf[float64](b, "DOUBLE", false), nil
	case types.KindFloat:
		return productOf[float32](b, "FLOAT", false), nil
	}
	return nil, b.wrongType(dataType, "a numeric type")
}

func productOf[N number](b base, want string, integral bool) *arithmetic[N] {
	return &arithmetic[N]{
		base: b,
		want: want,
		fold: func(x, y N) N { return x * y },
		unfold: func(x, y N) (N, error) {
			if integral && y == 0 {
				return 0, Error.New("field %q (%s): cannot retract zero from an integer product", b.field, b.name)
			}
			return x / y, nil
		},
	}
}
