package deletionvector

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/zeebo/errs"
)

// Error is the class of deletion vector errors.
var Error = errs.Class("deletion vector")

// magicNumber prefixes serialized vectors.
const magicNumber uint32 = 1581511376

// Vector is the set of deleted row positions of one file.
type Vector struct {
	bitmap *roaring.Bitmap
}

// New returns an empty vector.
func New() *Vector {
	return &Vector{bitmap: roaring.New()}
}

// Delete marks position as deleted. Positions must fit in 32 bits.
func (v *Vector) Delete(position int64) error {
	if position < 0 || position > math.MaxUint32 {
		return Error.New("position %d out of range", position)
	}
	v.bitmap.Add(uint32(position))
	return nil
}

// IsDeleted reports whether position is deleted. A nil vector deletes
// nothing.
func (v *Vector) IsDeleted(position int64) bool {
	if v == nil || position < 0 || position > math.MaxUint32 {
		return false
	}
	return v.bitmap.Contains(uint32(position))
}

// Cardinality returns the number of deleted positions.
func (v *Vector) Cardinality() int64 {
	if v == nil {
		return 0
	}
	return int64(v.bitmap.GetCardinality())
}

// IsEmpty reports whether no position is deleted.
func (v *Vector) IsEmpty() bool {
	return v.Cardinality() == 0
}

// Merge adds every position deleted in other.
func (v *Vector) Merge(other *Vector) {
	if other == nil {
		return
	}
	v.bitmap.Or(other.bitmap)
}

// Positions returns the deleted positions in ascending order.
func (v *Vector) Positions() []int64 {
	if v == nil {
		return nil
	}
	positions := make([]int64, 0, v.bitmap.GetCardinality())
	it := v.bitmap.Iterator()
	for it.HasNext() {
		positions = append(positions, int64(it.Next()))
	}
	return positions
}

// MarshalBinary encodes the vector as a magic number followed by the
// portable roaring serialization.
func (v *Vector) MarshalBinary() ([]byte, error) {
	bitmap, err := v.bitmap.ToBytes()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	data := make([]byte, 4, 4+len(bitmap))
	binary.BigEndian.PutUint32(data, magicNumber)
	return append(data, bitmap...), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return Error.New("serialized vector too short: %d bytes", len(data))
	}
	if magic := binary.BigEndian.Uint32(data); magic != magicNumber {
		return Error.New("invalid magic number %d", magic)
	}
	bitmap := roaring.New()
	if err := bitmap.UnmarshalBinary(data[4:]); err != nil {
		return Error.Wrap(err)
	}
	v.bitmap = bitmap
	return nil
}

// Builder collects deleted positions for many files.
type Builder struct {
	vectors map[string]*Vector
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{vectors: make(map[string]*Vector)}
}

// Delete marks position of file as deleted.
func (b *Builder) Delete(file string, position int64) error {
	v, ok := b.vectors[file]
	if !ok {
		v = New()
		b.vectors[file] = v
	}
	if err := v.Delete(position); err != nil {
		return Error.New("%s: %w", file, err)
	}
	return nil
}

// Files returns the files with at least one deletion, sorted.
func (b *Builder) Files() []string {
	files := make([]string, 0, len(b.vectors))
	for file := range b.vectors {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Vector returns the vector of file, or nil if nothing was deleted in it.
func (b *Builder) Vector(file string) *Vector {
	return b.vectors[file]
}
