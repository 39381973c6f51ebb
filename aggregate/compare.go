package aggregate

import (
	"cmp"

	"github.com/vegasq/mergetree/types"
)

const (
	// MaxName is the registered name of the max aggregator.
	MaxName = "max"
	// MinName is the registered name of the min aggregator.
	MinName = "min"
)

// extremum keeps the greatest (or least) value seen. It cannot retract:
// the runner-up is not retained.
type extremum[T cmp.Ordered] struct {
	base
	want   string
	larger bool
}

func (e *extremum[T]) Agg(accumulator, input any) (any, error) {
	if result, ok := shortcut(accumulator, input); ok {
		return result, nil
	}
	x, ok := accumulator.(T)
	if !ok {
		return nil, e.wrongShape(accumulator, e.want)
	}
	y, ok := input.(T)
	if !ok {
		return nil, e.wrongShape(input, e.want)
	}

	c := cmp.Compare(x, y)
	if (e.larger && c < 0) || (!e.larger && c > 0) {
		return y, nil
	}
	return x, nil
}

func (e *extremum[T]) Retract(_, _ any) (any, error) {
	return nil, e.unsupportedRetract()
}

func newMax(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return newExtremum(base{name: MaxName, field: field}, dataType, true)
}

func newMin(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return newExtremum(base{name: MinName, field: field}, dataType, false)
}

func newExtremum(b base, dataType *types.DataType, larger bool) (FieldAggregator, error) {
	switch dataType.Kind {
	case types.KindBigInt:
		return &extremum[int64]{base: b, want: "BIGINT", larger: larger}, nil
	case types.KindInt:
		return &extremum[int32]{base: b, want: "INT", larger: larger}, nil
	case types.KindDouble:
		return &extremum[float64]{base: b, want: "DOUBLE", larger: larger}, nil
	case types.KindFloat:
		return &extremum[float32]{base: b, want: "FLOAT", larger: larger}, nil
	case types.KindString:
		return &extremum[string]{base: b, want: "STRING", larger: larger}, nil
	}
	return nil, b.wrongType(dataType, "a numeric or STRING type")
}
