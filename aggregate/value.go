package aggregate

import (
	"github.com/vegasq/mergetree/types"
)

const (
	// PrimaryKeyName is the aggregator implicitly used for primary key fields.
	PrimaryKeyName = "primary-key"
	// LastValueName keeps the latest value, absent or not.
	LastValueName = "last_value"
	// LastNonNullValueName keeps the latest present value.
	LastNonNullValueName = "last_non_null_value"
	// FirstNonNullValueName keeps the first present value.
	FirstNonNullValueName = "first_non_null_value"
)

// primaryKey takes the incoming value for both additions and retractions:
// key fields are identical across every version of a key.
type primaryKey struct{ base }

func newPrimaryKey(field string, _ *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return &primaryKey{base{name: PrimaryKeyName, field: field}}, nil
}

func (p *primaryKey) Agg(_, input any) (any, error)         { return input, nil }
func (p *primaryKey) Retract(_, retracted any) (any, error) { return retracted, nil }

type lastValue struct{ base }

func newLastValue(field string, _ *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return &lastValue{base{name: LastValueName, field: field}}, nil
}

func (l *lastValue) Agg(_, input any) (any, error) { return input, nil }

// Retract clears the field: the value before the retracted one is unknown.
func (l *lastValue) Retract(_, _ any) (any, error) { return nil, nil }

type lastNonNullValue struct{ base }

func newLastNonNullValue(field string, _ *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return &lastNonNullValue{base{name: LastNonNullValueName, field: field}}, nil
}

func (l *lastNonNullValue) Agg(accumulator, input any) (any, error) {
	if input == nil {
		return accumulator, nil
	}
	return input, nil
}

func (l *lastNonNullValue) Retract(accumulator, retracted any) (any, error) {
	if retracted != nil {
		return nil, nil
	}
	return accumulator, nil
}

type firstNonNullValue struct{ base }

func newFirstNonNullValue(field string, _ *types.DataType, _ FieldOptions) (FieldAggregator, error) {
	return &firstNonNullValue{base{name: FirstNonNullValueName, field: field}}, nil
}

func (f *firstNonNullValue) Agg(accumulator, input any) (any, error) {
	if accumulator == nil {
		return input, nil
	}
	return accumulator, nil
}

func (f *firstNonNullValue) Retract(_, _ any) (any, error) {
	return nil, f.unsupportedRetract()
}
