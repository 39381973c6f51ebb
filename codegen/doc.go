// Package codegen provides the row equality and key projection capabilities
// the aggregators and the compactor are built on.
//
// Both are specialized once per declared row type: NewRecordEqualiser and
// NewProjection resolve field types and positions up front, so the per-row
// work is a straight walk over precomputed comparators.
//
// Projected keys are BinaryKey values: detached strings whose byte order
// matches the logical order of the projected fields, so they can be used as
// map keys and sorted with a plain string comparison.
package codegen
