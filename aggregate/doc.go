// Package aggregate implements per-field merge policies for the aggregation
// merge engine.
//
// When several versions of one primary key are merged, every field is folded
// through a FieldAggregator chosen by name in the table options:
//
//	agg, err := aggregate.New("nested_update", "items", itemsType, aggregate.FieldOptions{
//	    NestedKey: []string{"sku"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	acc, err := agg.Agg(nil, firstVersion)   // acc == firstVersion
//	acc, err = agg.Agg(acc, secondVersion)   // merged
//	acc, err = agg.Retract(acc, deleteImage) // undo a contribution
//
// # Absence
//
// A nil value means "no value". For every aggregator Agg(nil, x) == x,
// Agg(x, nil) == x, Retract(nil, x) == nil and Retract(x, nil) == x, except
// where the policy itself is about absence (last_value, primary-key) and for
// collect with distinct, which also deduplicates a lone operand.
//
// # Errors
//
// Declared type incompatibilities are detected by New and reported as
// ErrConfig. A runtime value of the wrong shape is also ErrConfig: the field
// was declared with an incompatible function and the enclosing merge must
// stop. Aggregators that cannot undo a contribution return
// ErrUnsupportedRetract from Retract.
//
// # Registered Functions
//
//   - primary-key, last_value, last_non_null_value, first_non_null_value
//   - sum, product, max, min
//   - listagg, bool_and, bool_or
//   - collect, nested_update
package aggregate
