package codegen

import (
	"encoding/binary"
	"strings"

	"github.com/zeebo/errs"

	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/types"
)

// Error is the class of projection setup errors.
var Error = errs.Class("codegen")

// BinaryKey is the encoded form of a projected key. Two keys are equal when
// the projected fields are equal, and compare in the order of the fields.
type BinaryKey string

// Compare orders keys by their encoded bytes.
func (k BinaryKey) Compare(o BinaryKey) int {
	return strings.Compare(string(k), string(o))
}

// Projection extracts an ordered subset of a row's fields as a BinaryKey.
type Projection struct {
	names   []string
	indices []int
	types   []*types.DataType
}

// NewProjection returns a projection of the named fields of rowType, in the
// order given.
func NewProjection(rowType *types.DataType, fieldNames []string) (*Projection, error) {
	if rowType.Kind != types.KindRow {
		return nil, Error.New("projection source must be a ROW type, got %s", rowType)
	}
	if len(fieldNames) == 0 {
		return nil, Error.New("projection needs at least one field")
	}

	p := &Projection{names: fieldNames}
	for _, name := range fieldNames {
		idx := rowType.FieldIndex(name)
		if idx < 0 {
			return nil, Error.New("field %q not found in %s", name, rowType)
		}
		p.indices = append(p.indices, idx)
		p.types = append(p.types, rowType.Fields[idx].Type)
	}
	return p, nil
}

// FieldNames returns the projected field names.
func (p *Projection) FieldNames() []string { return p.names }

// Indices returns the positions of the projected fields in the source row.
func (p *Projection) Indices() []int { return p.indices }

// Apply encodes the projected fields of row. The fields must hold the
// runtime representation of their types; callers holding unchecked values
// validate them with data.CheckRow first.
func (p *Projection) Apply(row data.Row) BinaryKey {
	var buf []byte
	for i, idx := range p.indices {
		buf = appendValue(buf, p.types[i], row.Field(idx))
	}
	return BinaryKey(buf)
}

const (
	markerNull    = 0x00
	markerPresent = 0x01
	arrayEnd      = 0x00
	arrayNext     = 0x01
)

// appendValue writes an order-preserving encoding of value. Absent values
// sort before present ones.
func appendValue(buf []byte, t *types.DataType, value any) []byte {
	if value == nil {
		return append(buf, markerNull)
	}
	buf = append(buf, markerPresent)

	switch t.Kind {
	case types.KindBigInt, types.KindInt:
		n, _ := asInt64(value)
		return binary.BigEndian.AppendUint64(buf, uint64(n)^(1<<63))
	case types.KindDouble, types.KindFloat:
		bits, _ := floatBits(value)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		return binary.BigEndian.AppendUint64(buf, bits)
	case types.KindBoolean:
		if b, _ := value.(bool); b {
			return append(buf, 1)
		}
		return append(buf, 0)
	case types.KindString:
		s, _ := value.(string)
		return appendEscaped(buf, []byte(s))
	case types.KindBytes:
		b, _ := value.([]byte)
		return appendEscaped(buf, b)
	case types.KindArray:
		arr, ok := value.(data.Array)
		if ok {
			for i := 0; i < arr.Size(); i++ {
				buf = append(buf, arrayNext)
				buf = appendValue(buf, t.Element, arr.Element(i))
			}
		}
		return append(buf, arrayEnd)
	case types.KindRow:
		row, ok := value.(data.Row)
		for i, f := range t.Fields {
			var v any
			if ok && i < row.FieldCount() {
				v = row.Field(i)
			}
			buf = appendValue(buf, f.Type, v)
		}
		return buf
	}
	return buf
}

// appendEscaped writes b with 0x00 escaped as 0x00 0xFF and terminated by
// 0x00 0x01, keeping byte order and prefix freedom.
func appendEscaped(buf, b []byte) []byte {
	for _, c := range b {
		if c == 0x00 {
			buf = append(buf, 0x00, 0xFF)
			continue
		}
		buf = append(buf, c)
	}
	return append(buf, 0x00, 0x01)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}

// EncodeValue encodes a single value of type t the same way Apply encodes a
// projected field.
func EncodeValue(t *types.DataType, value any) BinaryKey {
	return BinaryKey(appendValue(nil, t, value))
}
