package codegen

import (
	"bytes"
	"math"

	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/types"
)

// RecordEqualiser compares two rows of the same declared type.
type RecordEqualiser interface {
	Equal(a, b data.Row) bool
}

type valueEqual func(a, b any) bool

type rowEqualiser struct {
	fields []valueEqual
}

// NewRecordEqualiser returns an equaliser for rows whose fields have the
// given types. Floating point values compare by their bit patterns, so NaN
// equals NaN and 0.0 differs from -0.0. A value not held in the runtime
// representation of its type equals nothing.
func NewRecordEqualiser(fieldTypes []*types.DataType) RecordEqualiser {
	fields := make([]valueEqual, len(fieldTypes))
	for i, t := range fieldTypes {
		fields[i] = equalFor(t)
	}
	return &rowEqualiser{fields: fields}
}

// Equal implements RecordEqualiser.
func (e *rowEqualiser) Equal(a, b data.Row) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.FieldCount() != len(e.fields) || b.FieldCount() != len(e.fields) {
		return false
	}
	for i, eq := range e.fields {
		if !eq(a.Field(i), b.Field(i)) {
			return false
		}
	}
	return true
}

func equalFor(t *types.DataType) valueEqual {
	var eq valueEqual
	switch t.Kind {
	case types.KindDouble, types.KindFloat:
		eq = func(a, b any) bool {
			x, okx := floatBits(a)
			y, oky := floatBits(b)
			return okx && oky && x == y
		}
	case types.KindBytes:
		eq = func(a, b any) bool {
			x, okx := a.([]byte)
			y, oky := b.([]byte)
			return okx && oky && bytes.Equal(x, y)
		}
	case types.KindArray:
		element := equalFor(t.Element)
		eq = func(a, b any) bool {
			x, okx := a.(data.Array)
			y, oky := b.(data.Array)
			if !okx || !oky || x.Size() != y.Size() {
				return false
			}
			for i := 0; i < x.Size(); i++ {
				if !element(x.Element(i), y.Element(i)) {
					return false
				}
			}
			return true
		}
	case types.KindRow:
		nested := NewRecordEqualiser(t.FieldTypes())
		eq = func(a, b any) bool {
			x, okx := a.(data.Row)
			y, oky := b.(data.Row)
			return okx && oky && nested.Equal(x, y)
		}
	case types.KindBigInt:
		eq = typedEqual[int64]
	case types.KindInt:
		eq = typedEqual[int32]
	case types.KindString:
		eq = typedEqual[string]
	case types.KindBoolean:
		eq = typedEqual[bool]
	default:
		eq = func(a, b any) bool { return false }
	}

	return func(a, b any) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return eq(a, b)
	}
}

// typedEqual compares values held as T; values of any other type are
// unequal.
func typedEqual[T comparable](a, b any) bool {
	x, okx := a.(T)
	y, oky := b.(T)
	return okx && oky && x == y
}

func floatBits(v any) (uint64, bool) {
	switch f := v.(type) {
	case float64:
		return math.Float64bits(f), true
	case float32:
		return math.Float64bits(float64(f)), true
	}
	return 0, false
}
