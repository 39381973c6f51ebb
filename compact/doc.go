// Package compact merges the changelog records of a primary-key table.
//
// Records are read as KeyValue values, sorted by key and sequence number,
// and every group of records sharing a key is folded by a MergeFunction
// into one row. AggregateMergeFunction folds each field through its
// aggregate.FieldAggregator: inserts and update-afters through Agg,
// update-befores and deletes through Retract.
package compact
