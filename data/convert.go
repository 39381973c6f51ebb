package data

import (
	"math"
	"reflect"
	"strings"

	"github.com/vegasq/mergetree/types"
)

// FromMap converts a map-shaped row, as produced by the parquet reader, into
// a GenericRow laid out by rowType. Columns missing from the map are absent.
func FromMap(rowType *types.DataType, values map[string]interface{}) (GenericRow, error) {
	row := NewGenericRow(rowType.FieldCount())
	for i, field := range rowType.Fields {
		value, err := Convert(field.Type, values[field.Name])
		if err != nil {
			return nil, Error.New("field %q: %v", field.Name, err)
		}
		row[i] = value
	}
	return row, nil
}

// Convert normalizes a loosely typed value to the runtime representation of
// t. Integers widen or narrow to the declared width, slices become
// GenericArray and maps become GenericRow.
func Convert(t *types.DataType, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		return Convert(t, rv.Elem().Interface())
	}

	switch t.Kind {
	case types.KindBigInt:
		return convertInt(value, math.MinInt64, math.MaxInt64, "BIGINT")
	case types.KindInt:
		n, err := convertInt(value, math.MinInt32, math.MaxInt32, "INT")
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case types.KindDouble:
		f, ok := toFloat64(value)
		if !ok {
			return nil, Error.New("cannot convert %T to DOUBLE", value)
		}
		return f, nil
	case types.KindFloat:
		f, ok := toFloat64(value)
		if !ok {
			return nil, Error.New("cannot convert %T to FLOAT", value)
		}
		return float32(f), nil
	case types.KindString:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
		return nil, Error.New("cannot convert %T to STRING", value)
	case types.KindBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, Error.New("cannot convert %T to BOOLEAN", value)
	case types.KindBytes:
		switch v := value.(type) {
		case []byte:
			return append([]byte(nil), v...), nil
		case string:
			return []byte(v), nil
		}
		return nil, Error.New("cannot convert %T to BYTES", value)
	case types.KindArray:
		return convertArray(t, value)
	case types.KindRow:
		return convertRow(t, value)
	}
	return nil, Error.New("unsupported type %s", t)
}

func convertArray(t *types.DataType, value interface{}) (interface{}, error) {
	if arr, ok := value.(Array); ok {
		value = arrayElements(arr)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, Error.New("cannot convert %T to %s", value, t)
	}

	result := make(GenericArray, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		element, err := Convert(t.Element, rv.Index(i).Interface())
		if err != nil {
			return nil, Error.New("element %d: %v", i, err)
		}
		result[i] = element
	}
	return result, nil
}

func convertRow(t *types.DataType, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		return FromMap(t, v)
	case Row:
		if v.FieldCount() != t.FieldCount() {
			return nil, Error.New("row has %d fields, want %d", v.FieldCount(), t.FieldCount())
		}
		row := NewGenericRow(t.FieldCount())
		for i, field := range t.Fields {
			converted, err := Convert(field.Type, v.Field(i))
			if err != nil {
				return nil, Error.New("field %q: %v", field.Name, err)
			}
			row[i] = converted
		}
		return row, nil
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.Struct:
		return FromMap(t, structFields(rv))
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		values := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values[iter.Key().String()] = iter.Value().Interface()
		}
		return FromMap(t, values)
	}
	return nil, Error.New("cannot convert %T to %s", value, t)
}

// structFields returns the exported fields of a struct keyed by their
// parquet column name, or by field name when untagged.
func structFields(rv reflect.Value) map[string]interface{} {
	rt := rv.Type()
	values := make(map[string]interface{}, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("parquet"), ","); tag != "" && tag != "-" {
			name = tag
		}
		values[name] = rv.Field(i).Interface()
	}
	return values
}

func arrayElements(a Array) []interface{} {
	result := make([]interface{}, a.Size())
	for i := range result {
		result[i] = a.Element(i)
	}
	return result
}

// ToMap converts a row laid out by rowType back into a map, turning nested
// arrays into []interface{} and nested rows into maps.
func ToMap(rowType *types.DataType, row Row) map[string]interface{} {
	result := make(map[string]interface{}, rowType.FieldCount())
	for i, field := range rowType.Fields {
		result[field.Name] = toPlain(field.Type, row.Field(i))
	}
	return result
}

func toPlain(t *types.DataType, value interface{}) interface{} {
	if value == nil {
		return nil
	}
	switch t.Kind {
	case types.KindArray:
		arr, ok := value.(Array)
		if !ok {
			return value
		}
		result := make([]interface{}, arr.Size())
		for i := range result {
			result[i] = toPlain(t.Element, arr.Element(i))
		}
		return result
	case types.KindRow:
		row, ok := value.(Row)
		if !ok {
			return value
		}
		return ToMap(t, row)
	}
	return value
}

// convertInt converts an integer of any width, rejecting values outside
// [lo, hi].
func convertInt(value interface{}, lo, hi int64, typeName string) (int64, error) {
	switch val := value.(type) {
	case uint64:
		if val > uint64(hi) {
			return 0, Error.New("%d is out of range for %s", val, typeName)
		}
	case uint:
		if uint64(val) > uint64(hi) {
			return 0, Error.New("%d is out of range for %s", val, typeName)
		}
	}
	n, ok := toInt64(value)
	if !ok {
		return 0, Error.New("cannot convert %T to %s", value, typeName)
	}
	if n < lo || n > hi {
		return 0, Error.New("%d is out of range for %s", n, typeName)
	}
	return n, nil
}

// toInt64 converts integer values of any width. Unsigned values above
// math.MaxInt64 do not convert.
func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	default:
		return 0, false
	}
}

// toFloat64 converts integer and floating point values.
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint:
		return float64(val), true
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}
