package reader

// SliceIterator iterates over an in-memory batch. Positions start at the
// offset given to NewSliceIterator.
type SliceIterator[T any] struct {
	records []T
	offset  int64
	next    int
}

// NewSliceIterator returns an iterator over records whose first record sits
// at position offset.
func NewSliceIterator[T any](offset int64, records ...T) *SliceIterator[T] {
	return &SliceIterator[T]{records: records, offset: offset}
}

// Next implements RecordIterator.
func (s *SliceIterator[T]) Next() (T, bool, error) {
	if s.next >= len(s.records) {
		var zero T
		return zero, false, nil
	}
	record := s.records[s.next]
	s.next++
	return record, true, nil
}

// RowPosition implements PositionIterator.
func (s *SliceIterator[T]) RowPosition() int64 {
	return s.offset + int64(s.next)
}

// ReleaseBatch implements RecordIterator. In-memory batches own nothing.
func (s *SliceIterator[T]) ReleaseBatch() {}

// SliceReader is a RecordReader over in-memory batches. Positions continue
// across batches the way they do within a single file.
type SliceReader[T any] struct {
	batches [][]T
	offset  int64
	closed  bool
}

// NewSliceReader returns a reader yielding each of batches in turn.
func NewSliceReader[T any](batches ...[]T) *SliceReader[T] {
	return &SliceReader[T]{batches: batches}
}

// ReadBatch implements RecordReader.
func (s *SliceReader[T]) ReadBatch() (PositionIterator[T], bool, error) {
	if s.closed {
		return nil, false, Error.New("read from closed reader")
	}
	if len(s.batches) == 0 {
		return nil, false, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]

	it := NewSliceIterator(s.offset, batch...)
	s.offset += int64(len(batch))
	return it, true, nil
}

// Close implements RecordReader.
func (s *SliceReader[T]) Close() error {
	s.closed = true
	return nil
}
