// Package data holds the in-memory row containers merged by aggregators.
//
// Rows and arrays are read-only views; callers copy a GenericRow with Copy
// before changing it. A nil field value is the absence of a value.
package data

import "github.com/zeebo/errs"

// Error is the class of row shape and conversion errors.
var Error = errs.Class("data")

// Row is a fixed-arity structured value.
type Row interface {
	FieldCount() int
	Field(pos int) any
	IsNullAt(pos int) bool
}

// Array is an array-typed field value.
type Array interface {
	Size() int
	Element(pos int) any
	// Row returns the element at pos as a row of numFields fields, or nil
	// when the element is absent or not a row.
	Row(pos, numFields int) Row
}

// GenericRow is a Row backed by a slice of field values.
type GenericRow []any

// NewGenericRow returns a row of arity fields, all absent.
func NewGenericRow(arity int) GenericRow {
	return make(GenericRow, arity)
}

// RowOf builds a row from the given field values.
func RowOf(values ...any) GenericRow {
	return GenericRow(values)
}

// FieldCount implements Row.
func (r GenericRow) FieldCount() int { return len(r) }

// Field implements Row.
func (r GenericRow) Field(pos int) any { return r[pos] }

// IsNullAt implements Row.
func (r GenericRow) IsNullAt(pos int) bool { return r[pos] == nil }

// SetField replaces the value at pos.
func (r GenericRow) SetField(pos int, value any) { r[pos] = value }

// Copy returns a shallow copy of the row.
func (r GenericRow) Copy() GenericRow {
	return append(GenericRow(nil), r...)
}

// GenericArray is an Array backed by a slice of element values.
type GenericArray []any

// ArrayOf builds an array from the given elements.
func ArrayOf(elements ...any) GenericArray {
	return GenericArray(elements)
}

// ArrayOfRows builds an array whose elements are the given rows.
func ArrayOfRows(rows []Row) GenericArray {
	result := make(GenericArray, len(rows))
	for i, row := range rows {
		result[i] = row
	}
	return result
}

// Size implements Array.
func (a GenericArray) Size() int { return len(a) }

// Element implements Array.
func (a GenericArray) Element(pos int) any { return a[pos] }

// Row implements Array.
func (a GenericArray) Row(pos, numFields int) Row {
	row, ok := a[pos].(Row)
	if !ok || row == nil || row.FieldCount() != numFields {
		return nil
	}
	return row
}

// Rows returns every element of a as a row of width fields. It fails when
// an element is absent, is not a row, or has a different width.
func Rows(a Array, width int) ([]Row, error) {
	rows := make([]Row, 0, a.Size())
	for i := 0; i < a.Size(); i++ {
		row := a.Row(i, width)
		if row == nil {
			return nil, Error.New("element %d is %T, want a row of %d fields", i, a.Element(i), width)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
