package reader

import "github.com/zeebo/errs"

// Error is the class of reader I/O errors.
var Error = errs.Class("reader")

// RecordIterator is a single-pass sequence of records.
type RecordIterator[T any] interface {
	// Next returns the next record. ok is false once the sequence is
	// exhausted, and stays false on every later call. A non-nil err is an
	// I/O failure.
	Next() (record T, ok bool, err error)

	// ReleaseBatch releases the storage backing the records returned so far.
	// Those records must not be used afterwards.
	ReleaseBatch()
}

// PositionIterator is a RecordIterator that knows the row position of the
// record it returns next.
type PositionIterator[T any] interface {
	RecordIterator[T]

	// RowPosition returns the position, within the source file, of the
	// record the next call to Next will return. It does not consume a
	// record.
	RowPosition() int64
}

// Transform returns an iterator applying fn to every record of source.
// fn is never called once source is exhausted.
func Transform[T, R any](source PositionIterator[T], fn func(T) R) PositionIterator[R] {
	return TryTransform(source, func(record T) (R, error) {
		return fn(record), nil
	})
}

// TryTransform is Transform with a fallible fn. An error from fn is returned
// by Next.
func TryTransform[T, R any](source PositionIterator[T], fn func(T) (R, error)) PositionIterator[R] {
	return &transformPositionIterator[T, R]{
		transformIterator: transformIterator[T, R]{source: source, fn: fn},
		positions:         source,
	}
}

// Filter returns an iterator that skips the records of source failing
// predicate. Its RowPosition is always the position of the next record
// source will return, which is past any skipped records.
func Filter[T any](source PositionIterator[T], predicate func(T) bool) PositionIterator[T] {
	return &filterPositionIterator[T]{
		filterIterator: filterIterator[T]{source: source, predicate: predicate},
		positions:      source,
	}
}

// TransformRecords is Transform for iterators without positions.
func TransformRecords[T, R any](source RecordIterator[T], fn func(T) R) RecordIterator[R] {
	return &transformIterator[T, R]{source: source, fn: func(record T) (R, error) {
		return fn(record), nil
	}}
}

// FilterRecords is Filter for iterators without positions.
func FilterRecords[T any](source RecordIterator[T], predicate func(T) bool) RecordIterator[T] {
	return &filterIterator[T]{source: source, predicate: predicate}
}

type transformIterator[T, R any] struct {
	source RecordIterator[T]
	fn     func(T) (R, error)
}

func (t *transformIterator[T, R]) Next() (R, bool, error) {
	var zero R
	record, ok, err := t.source.Next()
	if err != nil || !ok {
		return zero, false, err
	}
	result, err := t.fn(record)
	if err != nil {
		return zero, false, err
	}
	return result, true, nil
}

func (t *transformIterator[T, R]) ReleaseBatch() {
	t.source.ReleaseBatch()
}

type transformPositionIterator[T, R any] struct {
	transformIterator[T, R]
	positions PositionIterator[T]
}

func (t *transformPositionIterator[T, R]) RowPosition() int64 {
	return t.positions.RowPosition()
}

type filterIterator[T any] struct {
	source    RecordIterator[T]
	predicate func(T) bool
}

func (f *filterIterator[T]) Next() (T, bool, error) {
	for {
		record, ok, err := f.source.Next()
		if err != nil || !ok {
			return record, false, err
		}
		if f.predicate(record) {
			return record, true, nil
		}
	}
}

func (f *filterIterator[T]) ReleaseBatch() {
	f.source.ReleaseBatch()
}

type filterPositionIterator[T any] struct {
	filterIterator[T]
	positions PositionIterator[T]
}

func (f *filterPositionIterator[T]) RowPosition() int64 {
	return f.positions.RowPosition()
}

// Positioned is a record paired with the row position it was read at.
type Positioned[T any] struct {
	Position int64
	Record   T
}

// WithPositions captures the position of every record of source. It must
// wrap source before any Filter, whose position runs ahead of the records
// it returns.
func WithPositions[T any](source PositionIterator[T]) PositionIterator[Positioned[T]] {
	return &positionCapture[T]{source: source}
}

type positionCapture[T any] struct {
	source PositionIterator[T]
}

func (p *positionCapture[T]) RowPosition() int64 {
	return p.source.RowPosition()
}

func (p *positionCapture[T]) Next() (Positioned[T], bool, error) {
	position := p.source.RowPosition()
	record, ok, err := p.source.Next()
	if err != nil || !ok {
		return Positioned[T]{}, false, err
	}
	return Positioned[T]{Position: position, Record: record}, true, nil
}

func (p *positionCapture[T]) ReleaseBatch() {
	p.source.ReleaseBatch()
}

// Collect drains it into a slice. It does not release the batch.
func Collect[T any](it RecordIterator[T]) ([]T, error) {
	var records []T
	for {
		record, ok, err := it.Next()
		if err != nil {
			return records, err
		}
		if !ok {
			return records, nil
		}
		records = append(records, record)
	}
}
