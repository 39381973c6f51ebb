package types

import (
	"strings"

	"github.com/zeebo/errs"
)

// Error is the class of type declaration errors.
var Error = errs.Class("types")

// Kind identifies the family of a DataType.
type Kind int

const (
	KindBigInt Kind = iota
	KindInt
	KindDouble
	KindFloat
	KindString
	KindBoolean
	KindBytes
	KindArray
	KindRow
)

var kindNames = map[Kind]string{
	KindBigInt:  "BIGINT",
	KindInt:     "INT",
	KindDouble:  "DOUBLE",
	KindFloat:   "FLOAT",
	KindString:  "STRING",
	KindBoolean: "BOOLEAN",
	KindBytes:   "BYTES",
	KindArray:   "ARRAY",
	KindRow:     "ROW",
}

// String returns the type keyword of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Field is a named member of a ROW type.
type Field struct {
	Name string
	Type *DataType
}

// DataType describes the logical type of a field value.
//
// Element is set for ARRAY types and Fields for ROW types.
type DataType struct {
	Kind    Kind
	Element *DataType
	Fields  []Field
}

// BigInt returns the 64-bit integer type.
func BigInt() *DataType { return &DataType{Kind: KindBigInt} }

// Int returns the 32-bit integer type.
func Int() *DataType { return &DataType{Kind: KindInt} }

// Double returns the 64-bit floating point type.
func Double() *DataType { return &DataType{Kind: KindDouble} }

// Float returns the 32-bit floating point type.
func Float() *DataType { return &DataType{Kind: KindFloat} }

// String returns the character string type.
func String() *DataType { return &DataType{Kind: KindString} }

// Boolean returns the boolean type.
func Boolean() *DataType { return &DataType{Kind: KindBoolean} }

// Bytes returns the binary string type.
func Bytes() *DataType { return &DataType{Kind: KindBytes} }

// Array returns an ARRAY type with the given element type.
func Array(element *DataType) *DataType {
	return &DataType{Kind: KindArray, Element: element}
}

// Row returns a ROW type with the given fields.
func Row(fields ...Field) *DataType {
	return &DataType{Kind: KindRow, Fields: fields}
}

// NewField is shorthand for Field{Name: name, Type: t}.
func NewField(name string, t *DataType) Field {
	return Field{Name: name, Type: t}
}

// IsNumeric reports whether the type holds integer or floating point values.
func (t *DataType) IsNumeric() bool {
	switch t.Kind {
	case KindBigInt, KindInt, KindDouble, KindFloat:
		return true
	}
	return false
}

// IsNestedTable reports whether the type is ARRAY<ROW<...>>.
func (t *DataType) IsNestedTable() bool {
	return t.Kind == KindArray && t.Element != nil && t.Element.Kind == KindRow
}

// ElementType returns the element type of an ARRAY, or nil.
func (t *DataType) ElementType() *DataType {
	return t.Element
}

// FieldCount returns the number of fields of a ROW type.
func (t *DataType) FieldCount() int {
	return len(t.Fields)
}

// FieldTypes returns the types of the fields of a ROW type in order.
func (t *DataType) FieldTypes() []*DataType {
	result := make([]*DataType, len(t.Fields))
	for i, f := range t.Fields {
		result[i] = f.Type
	}
	return result
}

// FieldNames returns the names of the fields of a ROW type in order.
func (t *DataType) FieldNames() []string {
	result := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		result[i] = f.Name
	}
	return result
}

// FieldIndex returns the position of the named field, or -1.
func (t *DataType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Equal reports whether two types are structurally identical.
func (t *DataType) Equal(o *DataType) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArray:
		return t.Element.Equal(o.Element)
	case KindRow:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

// String returns the textual form accepted by ParseDataType.
func (t *DataType) String() string {
	switch t.Kind {
	case KindArray:
		return "ARRAY<" + t.Element.String() + ">"
	case KindRow:
		var b strings.Builder
		b.WriteString("ROW<")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(" ")
			b.WriteString(f.Type.String())
		}
		b.WriteString(">")
		return b.String()
	default:
		return t.Kind.String()
	}
}
