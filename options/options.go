// Package options loads table definitions and their merge options.
//
// A table is described in YAML:
//
//	name: orders
//	primary-key: [order_id]
//	fields:
//	  - name: order_id
//	    type: BIGINT
//	  - name: items
//	    type: ARRAY<ROW<sku STRING, qty BIGINT>>
//	options:
//	  merge-engine: aggregation
//	  fields.items.aggregate-function: nested_update
//	  fields.items.nested-key: sku
package options

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/errs"
	"gopkg.in/yaml.v3"

	"github.com/vegasq/mergetree/aggregate"
	"github.com/vegasq/mergetree/compact"
	"github.com/vegasq/mergetree/types"
)

// Error is the class of table configuration errors.
var Error = errs.Class("options")

// Option keys.
const (
	MergeEngine                     = "merge-engine"
	DefaultAggregateFunction        = "fields.default-aggregate-function"
	AggregationRemoveRecordOnDelete = "aggregation.remove-record-on-delete"
	SequenceField                   = "sequence.field"

	fieldsPrefix             = "fields."
	aggregateFunctionSuffix  = ".aggregate-function"
	ignoreRetractSuffix      = ".ignore-retract"
	nestedKeySuffix          = ".nested-key"
	distinctSuffix           = ".distinct"
	listAggDelimiterSuffix   = ".list-agg-delimiter"
	aggregationMergeEngine   = "aggregation"
	defaultAggregateFunction = aggregate.LastNonNullValueName
)

var fieldSuffixes = []string{
	aggregateFunctionSuffix,
	ignoreRetractSuffix,
	nestedKeySuffix,
	distinctSuffix,
	listAggDelimiterSuffix,
}

// Field declares a table column.
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Table is a primary-key table definition.
type Table struct {
	Name       string            `yaml:"name"`
	PrimaryKey []string          `yaml:"primary-key"`
	Fields     []Field           `yaml:"fields"`
	Options    map[string]string `yaml:"options"`

	rowType *types.DataType
}

// Load reads and validates the table definition at path.
func Load(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	table, err := Parse(content)
	if err != nil {
		return nil, Error.New("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes and validates a YAML table definition.
func Parse(content []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(content, &table); err != nil {
		return nil, Error.Wrap(err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks the schema and every option, and resolves the row type.
func (t *Table) Validate() error {
	if t.Name == "" {
		return Error.New("table name is required")
	}
	if len(t.Fields) == 0 {
		return Error.New("table %q has no fields", t.Name)
	}

	fields := make([]types.Field, 0, len(t.Fields))
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return Error.New("table %q has a field without a name", t.Name)
		}
		if seen[f.Name] {
			return Error.New("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		dataType, err := types.ParseDataType(f.Type)
		if err != nil {
			return Error.New("field %q: %w", f.Name, err)
		}
		fields = append(fields, types.NewField(f.Name, dataType))
	}
	t.rowType = types.Row(fields...)

	if len(t.PrimaryKey) == 0 {
		return Error.New("table %q has no primary key", t.Name)
	}
	for _, key := range t.PrimaryKey {
		if !seen[key] {
			return Error.New("primary key field %q does not exist", key)
		}
	}

	if engine := t.Options[MergeEngine]; engine != aggregationMergeEngine {
		return Error.New("%s must be %q, got %q", MergeEngine, aggregationMergeEngine, engine)
	}

	for _, key := range t.optionKeys() {
		if err := t.validateOption(key, seen); err != nil {
			return err
		}
	}

	if _, err := t.aggregateFields(); err != nil {
		return err
	}
	if _, err := t.RecordConverter(); err != nil {
		return err
	}
	return nil
}

func (t *Table) optionKeys() []string {
	keys := make([]string, 0, len(t.Options))
	for key := range t.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) validateOption(key string, fields map[string]bool) error {
	switch key {
	case MergeEngine, SequenceField, DefaultAggregateFunction:
		return nil
	case AggregationRemoveRecordOnDelete:
		_, err := t.Bool(key)
		return err
	}

	if !strings.HasPrefix(key, fieldsPrefix) {
		return Error.New("unknown option %q", key)
	}
	for _, suffix := range fieldSuffixes {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		field := strings.TrimSuffix(strings.TrimPrefix(key, fieldsPrefix), suffix)
		if !fields[field] {
			return Error.New("option %q refers to unknown field %q", key, field)
		}
		if suffix == ignoreRetractSuffix || suffix == distinctSuffix {
			_, err := t.Bool(key)
			return err
		}
		return nil
	}
	return Error.New("unknown option %q", key)
}

// Bool returns a boolean option. Unset options are false.
func (t *Table) Bool(key string) (bool, error) {
	value, ok := t.Options[key]
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, Error.New("option %q: invalid boolean %q", key, value)
	}
	return b, nil
}

// RowType returns the row type of the table. It is nil until Validate
// succeeds.
func (t *Table) RowType() *types.DataType { return t.rowType }

// AggregateFunction returns the aggregate function name of field.
func (t *Table) AggregateFunction(field string) string {
	for _, key := range t.PrimaryKey {
		if key == field {
			return aggregate.PrimaryKeyName
		}
	}
	if name, ok := t.Options[fieldsPrefix+field+aggregateFunctionSuffix]; ok {
		return name
	}
	if name, ok := t.Options[DefaultAggregateFunction]; ok {
		return name
	}
	return defaultAggregateFunction
}

// FieldOptions returns the aggregator settings of field.
func (t *Table) FieldOptions(field string) aggregate.FieldOptions {
	opts := aggregate.FieldOptions{
		ListAggDelimiter: t.Options[fieldsPrefix+field+listAggDelimiterSuffix],
	}
	if nestedKey := t.Options[fieldsPrefix+field+nestedKeySuffix]; nestedKey != "" {
		for _, key := range strings.Split(nestedKey, ",") {
			opts.NestedKey = append(opts.NestedKey, strings.TrimSpace(key))
		}
	}
	opts.Distinct, _ = t.Bool(fieldsPrefix + field + distinctSuffix)
	return opts
}

func (t *Table) aggregateFields() ([]compact.AggregateField, error) {
	fields := make([]compact.AggregateField, 0, len(t.rowType.Fields))
	for _, f := range t.rowType.Fields {
		agg, err := aggregate.New(t.AggregateFunction(f.Name), f.Name, f.Type, t.FieldOptions(f.Name))
		if err != nil {
			return nil, Error.Wrap(err)
		}
		ignoreRetract, err := t.Bool(fieldsPrefix + f.Name + ignoreRetractSuffix)
		if err != nil {
			return nil, err
		}
		fields = append(fields, compact.AggregateField{
			Name:          f.Name,
			Aggregator:    agg,
			IgnoreRetract: ignoreRetract,
		})
	}
	return fields, nil
}

// MergeFunctionFactory returns a factory of merge functions aggregating the
// table fields as configured.
func (t *Table) MergeFunctionFactory() (compact.MergeFunctionFactory, error) {
	if t.rowType == nil {
		return nil, Error.New("table %q is not validated", t.Name)
	}
	removeRecordOnDelete, err := t.Bool(AggregationRemoveRecordOnDelete)
	if err != nil {
		return nil, err
	}
	fields, err := t.aggregateFields()
	if err != nil {
		return nil, err
	}

	return func() compact.MergeFunction {
		return compact.NewAggregateMergeFunction(fields, removeRecordOnDelete)
	}, nil
}

// RecordConverter returns the converter of changelog rows of the table.
func (t *Table) RecordConverter() (*compact.RecordConverter, error) {
	if t.rowType == nil {
		return nil, Error.New("table %q is not validated", t.Name)
	}
	conv, err := compact.NewRecordConverter(t.rowType, t.PrimaryKey, t.Options[SequenceField])
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return conv, nil
}
