package aggregate

import (
	"github.com/vegasq/mergetree/codegen"
	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/types"
)

// NestedUpdateName is the registered name of NestedUpdate.
const NestedUpdateName = "nested_update"

// NestedUpdate merges a field holding a nested table, ARRAY<ROW<...>>.
//
// With a nested key, elements are upserted by key: a later element replaces
// an earlier one with the same key, keeping the earlier element's position,
// and retraction removes elements by key alone. Without a key, Agg appends
// every element, duplicates included, and Retract removes every element
// equal to a retracted one.
type NestedUpdate struct {
	base
	nestedType *types.DataType

	// exactly one of keyProjection and elementEqualiser is set
	keyProjection    *codegen.Projection
	elementEqualiser codegen.RecordEqualiser
}

// NewNestedUpdate creates a nested_update aggregator for a field of type
// dataType, which must be ARRAY<ROW<...>>. An empty nestedKey selects full
// row equality.
func NewNestedUpdate(field string, dataType *types.DataType, nestedKey []string) (*NestedUpdate, error) {
	n := &NestedUpdate{base: base{name: NestedUpdateName, field: field}}
	if !dataType.IsNestedTable() {
		return nil, n.wrongType(dataType, "ARRAY<ROW<...>>")
	}

	nestedType := dataType.ElementType()
	n.nestedType = nestedType

	if len(nestedKey) == 0 {
		n.elementEqualiser = codegen.NewRecordEqualiser(nestedType.FieldTypes())
		return n, nil
	}

	projection, err := codegen.NewProjection(nestedType, nestedKey)
	if err != nil {
		return nil, ErrConfig.New("field %q: invalid nested key: %v", field, err)
	}
	n.keyProjection = projection
	return n, nil
}

func newNestedUpdate(field string, dataType *types.DataType, opts FieldOptions) (FieldAggregator, error) {
	agg, err := NewNestedUpdate(field, dataType, opts.NestedKey)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// Keyed reports whether elements are identified by a nested key.
func (n *NestedUpdate) Keyed() bool {
	return n.keyProjection != nil
}

// Agg implements FieldAggregator.
func (n *NestedUpdate) Agg(accumulator, input any) (any, error) {
	if result, ok := shortcut(accumulator, input); ok {
		return result, nil
	}

	acc, err := n.rows(accumulator)
	if err != nil {
		return nil, err
	}
	in, err := n.rows(input)
	if err != nil {
		return nil, err
	}

	rows := make([]data.Row, 0, len(acc)+len(in))
	rows = append(rows, acc...)
	rows = append(rows, in...)

	if n.keyProjection != nil {
		rows = n.upsert(rows)
	}
	return data.ArrayOfRows(rows), nil
}

// Retract implements FieldAggregator.
func (n *NestedUpdate) Retract(accumulator, retracted any) (any, error) {
	if accumulator == nil || retracted == nil {
		return accumulator, nil
	}

	acc, err := n.rows(accumulator)
	if err != nil {
		return nil, err
	}
	ret, err := n.rows(retracted)
	if err != nil {
		return nil, err
	}

	if n.keyProjection == nil {
		return data.ArrayOfRows(n.removeEqual(acc, ret)), nil
	}

	removed := make(map[codegen.BinaryKey]struct{}, len(ret))
	for _, row := range ret {
		removed[n.keyProjection.Apply(row)] = struct{}{}
	}

	kept := n.upsert(acc)
	result := kept[:0]
	for _, row := range kept {
		if _, ok := removed[n.keyProjection.Apply(row)]; !ok {
			result = append(result, row)
		}
	}
	return data.ArrayOfRows(result), nil
}

// upsert keeps one row per key, at the position where the key first
// appeared, holding the last row seen for it.
func (n *NestedUpdate) upsert(rows []data.Row) []data.Row {
	index := make(map[codegen.BinaryKey]int, len(rows))
	result := make([]data.Row, 0, len(rows))
	for _, row := range rows {
		key := n.keyProjection.Apply(row)
		if i, ok := index[key]; ok {
			result[i] = row
			continue
		}
		index[key] = len(result)
		result = append(result, row)
	}
	return result
}

// removeEqual drops every row of acc equal to any row of retracted.
func (n *NestedUpdate) removeEqual(acc, retracted []data.Row) []data.Row {
	result := make([]data.Row, 0, len(acc))
next:
	for _, row := range acc {
		for _, r := range retracted {
			if n.elementEqualiser.Equal(row, r) {
				continue next
			}
		}
		result = append(result, row)
	}
	return result
}

func (n *NestedUpdate) rows(value any) ([]data.Row, error) {
	arr, ok := value.(data.Array)
	if !ok {
		return nil, n.wrongShape(value, "an array")
	}
	rows, err := data.Rows(arr, n.nestedType.FieldCount())
	if err != nil {
		return nil, ErrConfig.New("field %q (%s): %v", n.field, n.name, err)
	}
	// Keys and equality read fields by their declared representation.
	for i, row := range rows {
		if err := data.CheckRow(n.nestedType, row); err != nil {
			return nil, ErrConfig.New("field %q (%s): element %d: %v", n.field, n.name, i, err)
		}
	}
	return rows, nil
}
