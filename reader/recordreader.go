package reader

import "github.com/zeebo/errs"

// RecordReader reads a file batch by batch.
type RecordReader[T any] interface {
	// ReadBatch returns the next batch. ok is false at the end of input.
	// The previous batch should be released before reading the next one.
	ReadBatch() (batch PositionIterator[T], ok bool, err error)

	// Close releases the underlying file.
	Close() error
}

// ForEachRemaining calls fn for every remaining record of r, releasing each
// batch once it is drained.
func ForEachRemaining[T any](r RecordReader[T], fn func(T) error) error {
	return ForEachRemainingWithPosition(r, func(_ int64, record T) error {
		return fn(record)
	})
}

// ForEachRemainingWithPosition is ForEachRemaining that also passes the row
// position of each record. The position is read before each Next, so batches
// that skip records, such as Filter, report the first candidate instead;
// wrap the raw batch with WithPositions before filtering when exact
// positions are needed.
func ForEachRemainingWithPosition[T any](r RecordReader[T], fn func(position int64, record T) error) error {
	for {
		batch, ok, err := r.ReadBatch()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		err = drain(batch, fn)
		batch.ReleaseBatch()
		if err != nil {
			return err
		}
	}
}

func drain[T any](batch PositionIterator[T], fn func(int64, T) error) error {
	for {
		position := batch.RowPosition()
		record, ok, err := batch.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(position, record); err != nil {
			return err
		}
	}
}

// MapReader decorates every batch of r with wrap. Positions are kept as
// long as wrap preserves them, which Transform and Filter do.
func MapReader[T, R any](r RecordReader[T], wrap func(PositionIterator[T]) PositionIterator[R]) RecordReader[R] {
	return &mappedReader[T, R]{source: r, wrap: wrap}
}

type mappedReader[T, R any] struct {
	source RecordReader[T]
	wrap   func(PositionIterator[T]) PositionIterator[R]
}

func (m *mappedReader[T, R]) ReadBatch() (PositionIterator[R], bool, error) {
	batch, ok, err := m.source.ReadBatch()
	if err != nil || !ok {
		return nil, false, err
	}
	return m.wrap(batch), true, nil
}

func (m *mappedReader[T, R]) Close() error {
	return m.source.Close()
}

// CloseAll closes every reader, combining the errors.
func CloseAll[T any](readers ...RecordReader[T]) error {
	var group errs.Group
	for _, r := range readers {
		group.Add(r.Close())
	}
	return group.Err()
}
