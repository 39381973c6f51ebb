package aggregate

import (
	"github.com/vegasq/mergetree/types"
)

const (
	// ListAggName is the registered name of the string concatenation aggregator.
	ListAggName = "listagg"
	// BoolAndName is the registered name of the logical AND aggregator.
	BoolAndName = "bool_and"
	// BoolOrName is the registered name of the logical OR aggregator.
	BoolOrName = "bool_or"

	defaultListAggDelimiter = ","
)

type listAgg struct {
	base
	delimiter string
}

func newListAgg(field string, dataType *types.DataType, opts FieldOptions) (FieldAggregator, error) {
	b := base{name: ListAggName, field: field}
	if dataType.Kind != types.KindString {
		return nil, b.wrongType(dataType, "STRING")
	}
	delimiter := opts.ListAggDelimiter
	if delimiter == "" {
		delimiter = defaultListAggDelimiter
	}
	return &listAgg{base: b, delimiter: delimiter}, nil
}

func (l *listAgg) Agg(accumulator, input any) (any, error) {
	if result, ok := shortcut(accumulator, input); ok {
		return result, nil
	}
	acc, ok := accumulator.(string)
	if !ok {
		return nil, l.wrongShape(accumulator, "STRING")
	}
	in, ok := input.(string)
	if !ok {
		return nil, l.wrongShape(input, "STRING")
	}
	return acc + l.delimiter + in, nil
}

func (l *listAgg) Retract(_, _ any) (any, error) {
	return nil, l.unsupportedRetract()
}

type boolAgg struct {
	base
	and bool
}

func newBoolAnd(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return newBoolAgg(base{name: BoolAndName, field: field}, dataType, true)
}

func newBoolOr(field string, dataType *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return newBoolAgg(base{name: BoolOrName, field: field}, dataType, false)
}

func newBoolAgg(b base, dataType *types.DataType, and bool) (FieldAggregator, error) {
	if dataType.Kind != types.KindBoolean {
		return nil, b.wrongType(dataType, "BOOLEAN")
	}
	return &boolAgg{base: b, and: and}, nil
}

func (b *boolAgg) Agg(accumulator, input any) (any, error) {
	if result, ok := shortcut(accumulator, input); ok {
		return result, nil
	}
	x, ok := accumulator.(bool)
	if !ok {
		return nil, b.wrongShape(accumulator, "BOOLEAN")
	}
	y, ok := input.(bool)
	if !ok {
		return nil, b.wrongShape(input, "BOOLEAN")
	}
	if b.and {
		return x && y, nil
	}
	return x || y, nil
}

func (b *boolAgg) Retract(_, _ any) (any, error) {
	return nil, b.unsupportedRetract()
}
