package data

import "github.com/vegasq/mergetree/types"

// Check reports whether value holds the runtime representation of t, the
// one Convert produces: int64 for BIGINT, int32 for INT, float64 for
// DOUBLE, float32 for FLOAT, string, bool, []byte, Array and Row, checked
// recursively. nil is valid for every type.
func Check(t *types.DataType, value interface{}) error {
	if value == nil {
		return nil
	}

	var ok bool
	switch t.Kind {
	case types.KindBigInt:
		_, ok = value.(int64)
	case types.KindInt:
		_, ok = value.(int32)
	case types.KindDouble:
		_, ok = value.(float64)
	case types.KindFloat:
		_, ok = value.(float32)
	case types.KindString:
		_, ok = value.(string)
	case types.KindBoolean:
		_, ok = value.(bool)
	case types.KindBytes:
		_, ok = value.([]byte)
	case types.KindArray:
		arr, isArray := value.(Array)
		if !isArray {
			break
		}
		for i := 0; i < arr.Size(); i++ {
			if err := Check(t.Element, arr.Element(i)); err != nil {
				return Error.New("element %d: %v", i, err)
			}
		}
		return nil
	case types.KindRow:
		row, isRow := value.(Row)
		if !isRow {
			break
		}
		return CheckRow(t, row)
	}
	if !ok {
		return Error.New("value of type %T is not %s", value, t)
	}
	return nil
}

// CheckRow reports whether every field of row matches rowType.
func CheckRow(rowType *types.DataType, row Row) error {
	if row.FieldCount() != rowType.FieldCount() {
		return Error.New("row has %d fields, want %d", row.FieldCount(), rowType.FieldCount())
	}
	for i, field := range rowType.Fields {
		if err := Check(field.Type, row.Field(i)); err != nil {
			return Error.New("field %q: %v", field.Name, err)
		}
	}
	return nil
}
