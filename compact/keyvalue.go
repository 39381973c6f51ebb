package compact

import (
	"math"

	"github.com/zeebo/errs"

	"github.com/vegasq/mergetree/codegen"
	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/reader"
	"github.com/vegasq/mergetree/types"
)

// Error is the class of compaction errors.
var Error = errs.Class("compact")

// System columns carried by changelog files next to the table fields.
const (
	SequenceNumberColumn = "_SEQUENCE_NUMBER"
	ValueKindColumn      = "_VALUE_KIND"
)

// Source identifies the row a record was read from.
type Source struct {
	File     string
	Position int64
}

// KeyValue is one changelog record of a primary-key table.
type KeyValue struct {
	Key    codegen.BinaryKey
	Seq    int64
	Kind   data.RowKind
	Value  data.GenericRow
	Source Source
}

// RecordConverter turns rows read from changelog files into KeyValue
// records.
type RecordConverter struct {
	rowType       *types.DataType
	key           *codegen.Projection
	sequenceField int
}

// NewRecordConverter returns a converter for rows of rowType keyed by
// primaryKey. If sequenceField is not empty, that field orders the records
// instead of the _SEQUENCE_NUMBER column.
func NewRecordConverter(rowType *types.DataType, primaryKey []string, sequenceField string) (*RecordConverter, error) {
	if len(primaryKey) == 0 {
		return nil, Error.New("primary key is required")
	}
	key, err := codegen.NewProjection(rowType, primaryKey)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	sequenceIndex := -1
	if sequenceField != "" {
		sequenceIndex = rowType.FieldIndex(sequenceField)
		if sequenceIndex < 0 {
			return nil, Error.New("sequence field %q does not exist", sequenceField)
		}
		switch t := rowType.Fields[sequenceIndex].Type; t.Kind {
		case types.KindBigInt, types.KindInt:
		default:
			return nil, Error.New("sequence field %q must be BIGINT or INT, got %s", sequenceField, t)
		}
	}

	return &RecordConverter{rowType: rowType, key: key, sequenceField: sequenceIndex}, nil
}

// RowType returns the type of the table rows.
func (c *RecordConverter) RowType() *types.DataType { return c.rowType }

// Convert builds the record of row read at source. A missing _VALUE_KIND is
// an insert. Records without a sequence value sort first.
func (c *RecordConverter) Convert(source Source, row map[string]interface{}) (KeyValue, error) {
	value, err := data.FromMap(c.rowType, row)
	if err != nil {
		return KeyValue{}, Error.New("%s at %d: %w", source.File, source.Position, err)
	}

	kind, err := valueKind(row[ValueKindColumn])
	if err != nil {
		return KeyValue{}, Error.New("%s at %d: %w", source.File, source.Position, err)
	}

	var rawSeq interface{} = row[SequenceNumberColumn]
	if c.sequenceField >= 0 {
		rawSeq = value[c.sequenceField]
	}
	seq := int64(math.MinInt64)
	if rawSeq != nil {
		converted, err := data.Convert(types.BigInt(), rawSeq)
		if err != nil {
			return KeyValue{}, Error.New("%s at %d: sequence: %w", source.File, source.Position, err)
		}
		seq = converted.(int64)
	}

	return KeyValue{
		Key:    c.key.Apply(value),
		Seq:    seq,
		Kind:   kind,
		Value:  value,
		Source: source,
	}, nil
}

func valueKind(v interface{}) (data.RowKind, error) {
	switch kind := v.(type) {
	case nil:
		return data.Insert, nil
	case string:
		return data.ParseRowKind(kind)
	case []byte:
		return data.ParseRowKind(string(kind))
	case int32:
		return data.RowKindFromByte(byte(kind))
	case int64:
		return data.RowKindFromByte(byte(kind))
	}
	return 0, Error.New("unsupported %s value %T", ValueKindColumn, v)
}

// Reader returns a reader of the records of file. Each batch skips the
// positions dv deletes, drops rows failing where, and converts the rest.
// dv and where may be nil.
func (c *RecordConverter) Reader(file string, rows reader.RecordReader[map[string]interface{}], dv reader.DeletionVector, where func(map[string]interface{}) bool) reader.RecordReader[KeyValue] {
	return reader.MapReader(rows, func(batch reader.PositionIterator[map[string]interface{}]) reader.PositionIterator[KeyValue] {
		positioned := reader.WithPositions(reader.ApplyDeletionVector(batch, dv))
		if where != nil {
			positioned = reader.Filter(positioned, func(p reader.Positioned[map[string]interface{}]) bool {
				return where(p.Record)
			})
		}
		return reader.TryTransform(positioned, func(p reader.Positioned[map[string]interface{}]) (KeyValue, error) {
			return c.Convert(Source{File: file, Position: p.Position}, p.Record)
		})
	})
}
