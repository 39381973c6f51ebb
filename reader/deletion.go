package reader

// DeletionVector marks row positions of a file as deleted.
type DeletionVector interface {
	IsDeleted(position int64) bool
}

// ApplyDeletionVector returns an iterator that skips the records of source
// whose position dv marks as deleted. A nil dv returns source unchanged.
func ApplyDeletionVector[T any](source PositionIterator[T], dv DeletionVector) PositionIterator[T] {
	if dv == nil {
		return source
	}
	return &deletionIterator[T]{source: source, dv: dv}
}

type deletionIterator[T any] struct {
	source PositionIterator[T]
	dv     DeletionVector
}

func (d *deletionIterator[T]) Next() (T, bool, error) {
	for {
		position := d.source.RowPosition()
		record, ok, err := d.source.Next()
		if err != nil || !ok {
			return record, false, err
		}
		if !d.dv.IsDeleted(position) {
			return record, true, nil
		}
	}
}

func (d *deletionIterator[T]) RowPosition() int64 {
	return d.source.RowPosition()
}

func (d *deletionIterator[T]) ReleaseBatch() {
	d.source.ReleaseBatch()
}
