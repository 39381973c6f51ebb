package compact

import (
	"github.com/vegasq/mergetree/aggregate"
	"github.com/vegasq/mergetree/data"
)

// MergeFunction folds the records of one key, in sequence order, into a
// single record.
type MergeFunction interface {
	// Reset prepares the function for a new key.
	Reset()
	// Add folds the next record of the key.
	Add(kv KeyValue) error
	// Result returns the merged record, or false if nothing was added since
	// the last Reset.
	Result() (KeyValue, bool)
}

// MergeFunctionFactory creates a MergeFunction per compaction.
type MergeFunctionFactory func() MergeFunction

// AggregateField binds the aggregator of one table field.
type AggregateField struct {
	Name       string
	Aggregator aggregate.FieldAggregator
	// IgnoreRetract leaves the field unchanged on -U and -D records.
	IgnoreRetract bool
}

// AggregateMergeFunction merges records field by field with aggregators.
type AggregateMergeFunction struct {
	fields               []AggregateField
	removeRecordOnDelete bool

	row     data.GenericRow
	latest  KeyValue
	added   bool
	deleted bool
}

// NewAggregateMergeFunction returns a merge function for rows laid out as
// fields. With removeRecordOnDelete a -D record drops the whole row instead
// of being retracted field by field.
func NewAggregateMergeFunction(fields []AggregateField, removeRecordOnDelete bool) *AggregateMergeFunction {
	return &AggregateMergeFunction{
		fields:               fields,
		removeRecordOnDelete: removeRecordOnDelete,
		row:                  data.NewGenericRow(len(fields)),
	}
}

// Reset implements MergeFunction.
func (m *AggregateMergeFunction) Reset() {
	m.row = data.NewGenericRow(len(m.fields))
	m.latest = KeyValue{}
	m.added = false
	m.deleted = false
}

// Add implements MergeFunction.
func (m *AggregateMergeFunction) Add(kv KeyValue) error {
	if len(kv.Value) != len(m.fields) {
		return Error.New("record has %d fields, want %d", len(kv.Value), len(m.fields))
	}

	m.latest = kv
	m.added = true

	if m.removeRecordOnDelete && kv.Kind == data.Delete {
		m.row = data.NewGenericRow(len(m.fields))
		m.deleted = true
		return nil
	}
	m.deleted = false

	row := m.row.Copy()
	for i, field := range m.fields {
		var (
			value any
			err   error
		)
		switch {
		case kv.Kind.IsAdd():
			value, err = field.Aggregator.Agg(row[i], kv.Value[i])
		case field.IgnoreRetract:
			continue
		default:
			value, err = field.Aggregator.Retract(row[i], kv.Value[i])
		}
		if err != nil {
			return Error.New("field %q of %s record at %s:%d: %w", field.Name, kv.Kind, kv.Source.File, kv.Source.Position, err)
		}
		row[i] = value
	}
	m.row = row
	return nil
}

// Result implements MergeFunction. The merged record carries the key and
// sequence number of the latest record. It is an insert, or a delete when
// the latest record removed the row.
func (m *AggregateMergeFunction) Result() (KeyValue, bool) {
	if !m.added {
		return KeyValue{}, false
	}
	result := m.latest
	result.Value = m.row.Copy()
	result.Kind = data.Insert
	if m.deleted {
		result.Kind = data.Delete
	}
	return result, true
}
